package storage

import (
	"context"
	"path"
	"strings"
)

// Scoped returns a backend rooted at prefix inside inner. 테넌트별
// 입력 폴더 분리용
func Scoped(inner Backend, prefix string) Backend {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return inner
	}
	return &scoped{inner: inner, prefix: prefix}
}

type scoped struct {
	inner  Backend
	prefix string
}

func (s *scoped) join(p string) string {
	return path.Join(s.prefix, p)
}

func (s *scoped) Read(ctx context.Context, p string) ([]byte, error) {
	return s.inner.Read(ctx, s.join(p))
}

func (s *scoped) Write(ctx context.Context, p string, content []byte) error {
	return s.inner.Write(ctx, s.join(p), content)
}

func (s *scoped) Exists(ctx context.Context, p string) (bool, error) {
	return s.inner.Exists(ctx, s.join(p))
}

func (s *scoped) Mkdir(ctx context.Context, p string) error {
	return s.inner.Mkdir(ctx, s.join(p))
}

// List rewrites returned paths relative to the scope so callers never
// see the prefix.
func (s *scoped) List(ctx context.Context, prefix string, recursive bool) ([]FileInfo, error) {
	files, err := s.inner.List(ctx, s.join(prefix), recursive)
	if err != nil {
		return nil, err
	}
	out := make([]FileInfo, 0, len(files))
	for _, f := range files {
		f.Path = strings.TrimPrefix(strings.TrimPrefix(f.Path, s.prefix), "/")
		out = append(out, f)
	}
	return out, nil
}
