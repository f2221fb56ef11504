// Package storage keeps uploaded images for identities and computers.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Categories group stored images by owner type.
const (
	CategoryProfiles  = "profiles"
	CategoryComputers = "computers"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type: only jpeg, png and gif are accepted")
	ErrEmptyImage       = errors.New("image is empty")
	ErrInvalidPath      = errors.New("invalid image path")
	ErrUnknownCategory  = errors.New("unknown image category")
)

// allowedTypes maps accepted content types to file extensions.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Image is an upload whose content type was sniffed from its bytes.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// NewImage detects the type of data. The client-supplied content type is
// never trusted.
func NewImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}

	detected := mimetype.Detect(data)
	for contentType, ext := range allowedTypes {
		if detected.Is(contentType) {
			return Image{Data: data, ContentType: contentType, Extension: ext}, nil
		}
	}
	return Image{}, fmt.Errorf("%w (got %s)", ErrUnsupportedImage, detected.String())
}

// ImageStore persists images and returns the reference saved on the owning
// record.
type ImageStore interface {
	Save(ctx context.Context, category string, img Image) (string, error)
	// Delete removes a stored image. Deleting a missing image is not an error.
	Delete(ctx context.Context, ref string) error
}

func validCategory(category string) error {
	if category != CategoryProfiles && category != CategoryComputers {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return nil
}

func newName(img Image) string {
	return uuid.NewString() + img.Extension
}
