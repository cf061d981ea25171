package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested path does not exist.
var ErrNotFound = errors.New("storage: path not found")

// Area is a logical storage area with its own root/prefix
type Area string

const (
	AreaInputs      Area = "inputs"
	AreaOutputs     Area = "outputs"
	AreaOutputShare Area = "output_share"
	AreaArchive     Area = "archive"
)

// FileInfo is file metadata returned by List
type FileInfo struct {
	Path        string
	Size        int64
	IsDirectory bool
	Modified    time.Time
}

// Backend abstracts the storage collaborator. The pipeline core is
// agnostic to whether this is local disk or remote object storage.
// ⭐ SSOT: 파일 I/O는 모두 이 인터페이스를 통해서만
type Backend interface {
	// Read returns the file contents. ErrNotFound when absent.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores content at path, creating parents as needed.
	Write(ctx context.Context, path string, content []byte) error

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns files under prefix.
	List(ctx context.Context, prefix string, recursive bool) ([]FileInfo, error)

	// Mkdir creates a directory (no-op for object stores).
	Mkdir(ctx context.Context, path string) error
}
