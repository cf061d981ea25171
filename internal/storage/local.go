package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local is the local-filesystem storage backend
type Local struct {
	basePath string
}

// NewLocal creates a local backend rooted at basePath
func NewLocal(basePath string) (*Local, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create base path: %w", err)
	}
	return &Local{basePath: abs}, nil
}

// resolve maps a storage path to an absolute path inside basePath.
// 디렉터리 탈출 방지
func (l *Local) resolve(path string) (string, error) {
	normalized := strings.TrimLeft(strings.ReplaceAll(path, "\\", "/"), "/")
	resolved := filepath.Join(l.basePath, filepath.FromSlash(normalized))
	if resolved != l.basePath && !strings.HasPrefix(resolved, l.basePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q is outside base directory", path)
	}
	return resolved, nil
}

// Read returns the file contents
func (l *Local) Read(_ context.Context, path string) ([]byte, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}

// Write stores content at path
func (l *Local) Write(_ context.Context, path string, content []byte) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", path, err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a file exists at path
func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	full, err := l.resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// List returns files under prefix
func (l *Local) List(_ context.Context, prefix string, recursive bool) ([]FileInfo, error) {
	full, err := l.resolve(prefix)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return nil, nil
	}

	var files []FileInfo
	if recursive {
		err = filepath.Walk(full, func(p string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if info.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(l.basePath, p)
			if relErr != nil {
				return relErr
			}
			files = append(files, FileInfo{
				Path:     filepath.ToSlash(rel),
				Size:     info.Size(),
				Modified: info.ModTime(),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", prefix, err)
		}
		return files, nil
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		rel, relErr := filepath.Rel(l.basePath, filepath.Join(full, entry.Name()))
		if relErr != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:        filepath.ToSlash(rel),
			Size:        info.Size(),
			IsDirectory: entry.IsDir(),
			Modified:    info.ModTime(),
		})
	}
	return files, nil
}

// Mkdir creates a directory
func (l *Local) Mkdir(_ context.Context, path string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0o755)
}
