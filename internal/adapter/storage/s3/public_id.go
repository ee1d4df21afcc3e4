package s3

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicID derives the store id of an image url: the path segments after
// "upload", minus a leading version segment, with the extension stripped.
//
//	https://cdn.example.com/demo/image/upload/v1712/listings/abc.jpg -> listings/abc
//	http://localhost:9000/estate-media/upload/listings/abc.png       -> listings/abc
func PublicID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	idx := -1
	for i, seg := range segments {
		if seg == uploadSegment {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false
	}

	rest := segments[idx+1:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return "", false
	}

	id := stripExt(strings.Join(rest, "/"))
	if id == "" || strings.HasSuffix(id, "/") {
		return "", false
	}
	return id, true
}

func stripExt(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}
