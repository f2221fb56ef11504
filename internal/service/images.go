package service

import (
	"context"
	"log"

	"github.com/jeraldtan21/cts/internal/storage"
	"github.com/jeraldtan21/cts/pkg/errors"
)

// replaceImage stores img, hands its reference to persist and then removes
// oldRef. If persist fails the new image is removed instead. Failing to
// remove the old image is only logged.
func replaceImage(ctx context.Context, store storage.ImageStore, logger *log.Logger,
	category string, img storage.Image, oldRef string, persist func(ref string) error) (string, error) {

	ref, err := store.Save(ctx, category, img)
	if err != nil {
		return "", errors.StorageError("failed to store image", err)
	}

	if err := persist(ref); err != nil {
		if delErr := store.Delete(context.Background(), ref); delErr != nil {
			logger.Printf("Failed to remove orphaned image %s: %v", ref, delErr)
		}
		return "", err
	}

	if oldRef != "" && oldRef != ref {
		if err := store.Delete(ctx, oldRef); err != nil {
			logger.Printf("Failed to remove previous image %s: %v", oldRef, err)
		}
	}
	return ref, nil
}
