package storage

import (
	"context"
	"fmt"

	"github.com/jeraldtan21/cts/internal/config"
)

// NewImageStoreFromConfig creates the ImageStore selected by cfg.Type.
func NewImageStoreFromConfig(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	switch cfg.Type {
	case config.StorageFilesystem:
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem storage requires STORAGE_ROOT to be set")
		}
		store, err := NewFileSystemStore(cfg.Root)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires S3_BUCKET to be set")
		}
		store, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
