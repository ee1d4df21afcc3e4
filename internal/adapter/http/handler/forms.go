package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
)

const (
	imagesField     = "images"
	multipartMemory = 8 << 20
)

// UploadOptions bounds and places multipart uploads.
type UploadOptions struct {
	TmpDir   string
	MaxBytes int64
}

// listingForm is a parsed create or update request. Cleanup removes any
// temp file the media store did not consume.
type listingForm struct {
	Fields     domain.ListingFields
	LocalPaths []string
}

func (f *listingForm) Cleanup() {
	for _, p := range f.LocalPaths {
		_ = os.Remove(p)
	}
}

type listingPayload struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *json.Number     `json:"price"`
	Category    *string          `json:"category"`
	Location    *string          `json:"location"`
	Geometry    *domain.Geometry `json:"geometry"`
}

// parseListingRequest accepts multipart/form-data with up to
// domain.MaxListingImages "images" parts, or a plain JSON body without
// images.
func parseListingRequest(w http.ResponseWriter, r *http.Request, opts UploadOptions) (*listingForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var p listingPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: Invalid request body", domain.ErrInvalidInput)
		}
		fields := domain.ListingFields{
			Title:       p.Title,
			Description: p.Description,
			Category:    p.Category,
			Location:    p.Location,
			Geometry:    p.Geometry,
		}
		if p.Price != nil {
			price, err := parsePrice(p.Price.String())
			if err != nil {
				return nil, err
			}
			fields.Price = &price
		}
		return &listingForm{Fields: fields}, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: Upload too large", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: Invalid multipart form", domain.ErrInvalidInput)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	fields, err := formFields(r.MultipartForm)
	if err != nil {
		return nil, err
	}

	files := r.MultipartForm.File[imagesField]
	if len(files) > domain.MaxListingImages {
		return nil, fmt.Errorf("%w: At most %d images are allowed", domain.ErrInvalidInput, domain.MaxListingImages)
	}

	form := &listingForm{Fields: fields}
	for _, fh := range files {
		path, err := saveTemp(fh, opts.TmpDir)
		if err != nil {
			form.Cleanup()
			return nil, err
		}
		form.LocalPaths = append(form.LocalPaths, path)
	}
	return form, nil
}

func formFields(form *multipart.Form) (domain.ListingFields, error) {
	var fields domain.ListingFields
	value := func(key string) *string {
		if vs, ok := form.Value[key]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}

	fields.Title = value("title")
	fields.Description = value("description")
	fields.Category = value("category")
	fields.Location = value("location")

	if raw := value("price"); raw != nil && strings.TrimSpace(*raw) != "" {
		price, err := parsePrice(*raw)
		if err != nil {
			return fields, err
		}
		fields.Price = &price
	}
	if raw := value("geometry"); raw != nil && strings.TrimSpace(*raw) != "" {
		var g domain.Geometry
		if err := json.Unmarshal([]byte(*raw), &g); err != nil {
			return fields, fmt.Errorf("%w: Invalid geometry", domain.ErrInvalidInput)
		}
		fields.Geometry = &g
	}
	return fields, nil
}

func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: Price must be a number", domain.ErrInvalidInput)
	}
	return price, nil
}

func saveTemp(fh *multipart.FileHeader, dir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "upload-*"+strings.ToLower(filepath.Ext(fh.Filename)))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return dst.Name(), nil
}
