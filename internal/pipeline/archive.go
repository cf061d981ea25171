package pipeline

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/wonny/loancore/internal/storage"
)

// ArchiveRun snapshots one run's inputs and outputs under
// archive/{run_id}/input and archive/{run_id}/output. Best-effort by
// contract: the executor logs failures but the run outcome stands.
func ArchiveRun(ctx context.Context, runID string, inputs, outputs, archive storage.Backend, inputDir, outputPrefix string) error {
	if err := copyTree(ctx, inputs, archive, inputDir, path.Join(runID, "input")); err != nil {
		return fmt.Errorf("failed to archive inputs: %w", err)
	}
	if err := copyTree(ctx, outputs, archive, outputPrefix, path.Join(runID, "output")); err != nil {
		return fmt.Errorf("failed to archive outputs: %w", err)
	}
	return nil
}

func copyTree(ctx context.Context, from, to storage.Backend, srcPrefix, dstPrefix string) error {
	files, err := from.List(ctx, srcPrefix, true)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.IsDirectory {
			continue
		}
		content, err := from.Read(ctx, f.Path)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(f.Path, srcPrefix), "/")
		if err := to.Write(ctx, path.Join(dstPrefix, rel), content); err != nil {
			return err
		}
	}
	return nil
}
