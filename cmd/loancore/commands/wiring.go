package commands

import (
	"fmt"

	"github.com/wonny/loancore/internal/pipeline"
	"github.com/wonny/loancore/internal/rules"
	"github.com/wonny/loancore/internal/storage"
	"github.com/wonny/loancore/pkg/config"
	"github.com/wonny/loancore/pkg/database"
	"github.com/wonny/loancore/pkg/logger"
)

// buildService wires the run service from config: database-backed run
// store, per-area storage backends and the executor factory.
// ⭐ SSOT: 파이프라인 조립은 이 함수에서만
func buildService(cfg *config.Config, db *database.DB, log *logger.Logger) (*pipeline.Service, error) {
	store := pipeline.NewRepository(db.Pool)

	inputs, err := storage.ForArea(cfg.Storage, storage.AreaInputs)
	if err != nil {
		return nil, fmt.Errorf("inputs storage: %w", err)
	}
	if cfg.Pipeline.InputPrefix != "" {
		inputs = storage.Scoped(inputs, cfg.Pipeline.InputPrefix)
	}
	outputs, err := storage.ForArea(cfg.Storage, storage.AreaOutputs)
	if err != nil {
		return nil, fmt.Errorf("outputs storage: %w", err)
	}
	share, err := storage.ForArea(cfg.Storage, storage.AreaOutputShare)
	if err != nil {
		return nil, fmt.Errorf("output share storage: %w", err)
	}
	archive, err := storage.ForArea(cfg.Storage, storage.AreaArchive)
	if err != nil {
		return nil, fmt.Errorf("archive storage: %w", err)
	}

	thresholds, err := rules.DefaultThresholds()
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}

	remoteInputs := cfg.Storage.Type == "minio"
	newExecutor := func() *pipeline.Executor {
		return pipeline.NewExecutor(store, inputs, outputs, share, archive, thresholds, remoteInputs, log)
	}

	return pipeline.NewService(store, newExecutor, log), nil
}
