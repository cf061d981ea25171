package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wonny/loancore/pkg/config"
)

// ObjectStore is the MinIO/S3-compatible storage backend
type ObjectStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewObjectStore creates an object storage backend from config.
// prefix scopes all keys (e.g. "<base>/inputs").
func NewObjectStore(cfg config.StorageConfig, prefix string) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &ObjectStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// NewObjectStoreWithClient wraps an existing client (tests)
func NewObjectStoreWithClient(client *minio.Client, bucket, prefix string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *ObjectStore) key(path string) string {
	path = strings.Trim(strings.ReplaceAll(path, "\\", "/"), "/")
	if s.prefix == "" {
		return path
	}
	if path == "" {
		return s.prefix
	}
	return s.prefix + "/" + path
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}

// Read returns the object contents
func (s *ObjectStore) Read(ctx context.Context, path string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(path), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", path, err)
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read object %s: %w", path, err)
	}
	return content, nil
}

// Write stores content at path
func (s *ObjectStore) Write(ctx context.Context, path string, content []byte) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		s.key(path),
		bytes.NewReader(content),
		int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)
	if err != nil {
		return fmt.Errorf("put object %s: %w", path, err)
	}
	return nil
}

// Exists reports whether an object exists at path
func (s *ObjectStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.key(path), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object %s: %w", path, err)
	}
	return true, nil
}

// List returns objects under prefix
func (s *ObjectStore) List(ctx context.Context, prefix string, recursive bool) ([]FileInfo, error) {
	listPrefix := s.key(prefix)
	if listPrefix != "" {
		listPrefix += "/"
	}

	var files []FileInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix,
		Recursive: recursive,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		rel := strings.TrimPrefix(obj.Key, s.prefix+"/")
		if s.prefix == "" {
			rel = obj.Key
		}
		files = append(files, FileInfo{
			Path:        rel,
			Size:        obj.Size,
			IsDirectory: strings.HasSuffix(obj.Key, "/"),
			Modified:    obj.LastModified,
		})
	}
	return files, nil
}

// Mkdir is a no-op for object stores (prefixes are implicit)
func (s *ObjectStore) Mkdir(_ context.Context, _ string) error {
	return nil
}
