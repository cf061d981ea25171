package storage

import (
	"fmt"
	"strings"

	"github.com/wonny/loancore/pkg/config"
)

// ForArea returns the storage backend for a logical area.
// ⭐ SSOT: backend 선택(local vs minio)은 이 함수에서만
func ForArea(cfg config.StorageConfig, area Area) (Backend, error) {
	switch cfg.Type {
	case "local":
		var base string
		switch area {
		case AreaOutputs:
			base = cfg.OutputDir
		case AreaOutputShare:
			base = cfg.OutputShareDir
		case AreaArchive:
			base = cfg.ArchiveDir
		default:
			base = cfg.InputDir
		}
		return NewLocal(base)

	case "minio":
		return NewObjectStore(cfg, joinPrefix(cfg.BasePrefix, string(area)))
	}

	return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
}

func joinPrefix(prefix, suffix string) string {
	prefix = strings.Trim(prefix, "/")
	suffix = strings.Trim(suffix, "/")
	if prefix == "" {
		return suffix
	}
	if suffix == "" {
		return prefix
	}
	return prefix + "/" + suffix
}
