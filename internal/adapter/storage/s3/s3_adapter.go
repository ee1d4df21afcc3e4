package s3

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	uploadSegment = "upload"
	listingFolder = "listings"

	maxConcurrentTransfers = 5
)

// objectStore is the subset of *minio.Client used here.
type objectStore interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Options configures the S3-compatible media store.
type Options struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// MediaStorage implements domain.MediaStorage. Failures are logged and
// turned into nil/false results.
type MediaStorage struct {
	store   objectStore
	bucket  string
	baseURL string
	logger  *logger.Logger
}

// NewMediaStorage connects to the store and makes sure the bucket exists.
func NewMediaStorage(ctx context.Context, opts Options, log *logger.Logger) (*MediaStorage, error) {
	log.Info("Initializing S3 media storage",
		zap.String("endpoint", opts.Endpoint),
		zap.String("bucket", opts.Bucket),
		zap.Bool("use_ssl", opts.UseSSL))

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", opts.Endpoint, err)
	}

	if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errBucketExists := client.BucketExists(ctx, opts.Bucket)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", opts.Bucket, err, errBucketExists)
		}
		log.Info("Bucket already exists", zap.String("bucket", opts.Bucket))
	} else {
		log.Info("Bucket created", zap.String("bucket", opts.Bucket))
	}

	baseURL := opts.PublicBaseURL
	if baseURL == "" {
		baseURL = client.EndpointURL().String()
	}
	return newMediaStorage(client, opts.Bucket, baseURL, log), nil
}

func newMediaStorage(store objectStore, bucket, baseURL string, log *logger.Logger) *MediaStorage {
	return &MediaStorage{
		store:   store,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.Named("MediaStorage"),
	}
}

// Upload stores the file under the listings folder. The local file is
// removed whatever the outcome.
func (s *MediaStorage) Upload(ctx context.Context, localPath string) *domain.UploadResult {
	defer s.removeLocal(localPath)

	ext := strings.ToLower(filepath.Ext(localPath))
	objectKey := path.Join(uploadSegment, listingFolder, uuid.New().String()+ext)

	opts := minio.PutObjectOptions{}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		opts.ContentType = contentType
	}

	info, err := s.store.FPutObject(ctx, s.bucket, objectKey, localPath, opts)
	if err != nil {
		s.logger.Error("Upload failed", zap.String("object_key", objectKey), zap.Error(err))
		return nil
	}

	url := fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, objectKey)
	s.logger.Info("Image uploaded", zap.String("url", url), zap.Int64("size_bytes", info.Size))
	return &domain.UploadResult{URL: url}
}

func (s *MediaStorage) removeLocal(localPath string) {
	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Failed to remove temp file", zap.String("path", localPath), zap.Error(err))
	}
}

// Delete removes every object stored under the public id derived from url.
// It reports false when nothing was removed.
func (s *MediaStorage) Delete(ctx context.Context, url string) bool {
	publicID, ok := PublicID(url)
	if !ok {
		s.logger.Warn("Cannot derive public id from url", zap.String("url", url))
		return false
	}
	target := path.Join(uploadSegment, publicID)

	removed := 0
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range s.store.ListObjects(listCtx, s.bucket, minio.ListObjectsOptions{Prefix: target, Recursive: true}) {
		if obj.Err != nil {
			s.logger.Error("Listing objects failed", zap.String("public_id", publicID), zap.Error(obj.Err))
			return false
		}
		if stripExt(obj.Key) != target {
			continue
		}
		if err := s.store.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			s.logger.Error("Remove object failed", zap.String("object_key", obj.Key), zap.Error(err))
			return false
		}
		removed++
	}

	if removed == 0 {
		s.logger.Warn("No stored object matched url", zap.String("url", url))
		return false
	}
	s.logger.Info("Image deleted", zap.String("public_id", publicID))
	return true
}

// UploadBatch uploads concurrently and keeps input order, skipping failures.
func (s *MediaStorage) UploadBatch(ctx context.Context, localPaths []string) []string {
	results := make([]*domain.UploadResult, len(localPaths))

	var g errgroup.Group
	g.SetLimit(maxConcurrentTransfers)
	for i, p := range localPaths {
		g.Go(func() error {
			results[i] = s.Upload(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	urls := make([]string, 0, len(results))
	for _, r := range results {
		if r != nil {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// DeleteBatch deletes concurrently and returns the urls that failed.
func (s *MediaStorage) DeleteBatch(ctx context.Context, urls []string) []string {
	ok := make([]bool, len(urls))

	var g errgroup.Group
	g.SetLimit(maxConcurrentTransfers)
	for i, u := range urls {
		g.Go(func() error {
			ok[i] = s.Delete(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	var failed []string
	for i, u := range urls {
		if !ok[i] {
			failed = append(failed, u)
		}
	}
	return failed
}
