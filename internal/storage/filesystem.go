package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// uploadsDir is the first segment of every filesystem reference and the URL
// prefix the router serves them under.
const uploadsDir = "uploads"

// FileSystemStore writes images below <root>/uploads/<category>/.
// References look like "uploads/profiles/<uuid>.png".
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates the uploads directory under root if needed.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	for _, category := range []string{CategoryProfiles, CategoryComputers} {
		if err := os.MkdirAll(filepath.Join(root, uploadsDir, category), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}
	return &FileSystemStore{root: root}, nil
}

// UploadsDir is the directory served at /uploads/.
func (s *FileSystemStore) UploadsDir() string {
	return filepath.Join(s.root, uploadsDir)
}

func (s *FileSystemStore) Save(ctx context.Context, category string, img Image) (string, error) {
	if err := validCategory(category); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := path.Join(uploadsDir, category, newName(img))
	if err := writeFileAtomic(filepath.Join(s.root, filepath.FromSlash(ref)), img.Data); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *FileSystemStore) Delete(ctx context.Context, ref string) error {
	clean, err := cleanRef(ref)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean))); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// cleanRef rejects references that would escape the uploads directory.
func cleanRef(ref string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(ref, "/"))
	if !strings.HasPrefix(clean, uploadsDir+"/") || strings.Contains(clean, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, ref)
	}
	return clean, nil
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place.
func writeFileAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set image permissions: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to move image into place: %w", err)
	}

	success = true
	return nil
}
