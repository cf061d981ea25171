package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/wonny/loancore/internal/storage"
)

// StageInputs copies the input folder from a remote backend to a local
// scratch directory so the ingest phases read from disk. The cleanup
// func removes the scratch dir and is safe to call always.
// MinIO 입력일 때만 필요 — local backend는 그대로 사용
func StageInputs(ctx context.Context, from storage.Backend, dir string) (storage.Backend, func(), error) {
	scratch, err := os.MkdirTemp("", "loancore-inputs-")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(scratch) }

	local, err := storage.NewLocal(scratch)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	files, err := from.List(ctx, dir, true)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to list staged inputs: %w", err)
	}
	for _, f := range files {
		if f.IsDirectory {
			continue
		}
		content, err := from.Read(ctx, f.Path)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to stage %s: %w", f.Path, err)
		}
		if err := local.Write(ctx, f.Path, content); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	return local, cleanup, nil
}
