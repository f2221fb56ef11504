package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/jeraldtan21/cts/internal/storage"
	"github.com/jeraldtan21/cts/pkg/errors"
	"github.com/jeraldtan21/cts/pkg/validation"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// imageField is the multipart field carrying uploads.
const imageField = "image"

// dataField carries the JSON payload of a multipart create request.
const dataField = "data"

// decodeJSON checks the body against schema and decodes it into dst.
func decodeJSON(ctx context.Context, r *http.Request, schema validation.Schema, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody+1))
	if err != nil {
		return errors.BadRequestError("failed to read request body")
	}
	if len(body) > maxJSONBody {
		return errors.PayloadTooLargeError(maxJSONBody)
	}
	return decodePayload(ctx, body, schema, dst)
}

func decodePayload(ctx context.Context, body []byte, schema validation.Schema, dst interface{}) error {
	problems, err := validation.Payload(ctx, schema, body)
	if err != nil {
		return errors.InvalidJSONError(err)
	}
	if len(problems) > 0 {
		details := make(map[string]string, len(problems))
		for _, p := range problems {
			field, msg, found := strings.Cut(p, ": ")
			if !found {
				field, msg = "body", p
			}
			if _, seen := details[field]; !seen {
				details[field] = msg
			}
		}
		return errors.ValidationErrorWithDetails("validation failed", details)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errors.InvalidJSONError(err)
	}
	return nil
}

// readImage reads the multipart image field, limited to maxBytes.
func readImage(w http.ResponseWriter, r *http.Request, maxBytes int64) (storage.Image, error) {
	// Allow for multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+64<<10)

	file, _, err := r.FormFile(imageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return storage.Image{}, errors.PayloadTooLargeError(maxBytes)
		}
		return storage.Image{}, errors.BadRequestError("multipart field 'image' is required")
	}
	defer file.Close()
	return readImageFile(file, maxBytes)
}

// decodeCreate decodes a create request. A JSON body is handled like
// decodeJSON. A multipart/form-data body carries the same JSON in the
// "data" field and may add an "image" file, which is returned when present.
func decodeCreate(ctx context.Context, w http.ResponseWriter, r *http.Request, schema validation.Schema, dst interface{}, maxBytes int64) (*storage.Image, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return nil, decodeJSON(ctx, r, schema, dst)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+maxJSONBody+64<<10)
	if err := r.ParseMultipartForm(maxJSONBody); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.PayloadTooLargeError(maxBytes)
		}
		return nil, errors.BadRequestError("invalid multipart form")
	}

	payload := r.FormValue(dataField)
	if payload == "" {
		return nil, errors.BadRequestError("multipart field 'data' is required")
	}
	if len(payload) > maxJSONBody {
		return nil, errors.PayloadTooLargeError(maxJSONBody)
	}
	if err := decodePayload(ctx, []byte(payload), schema, dst); err != nil {
		return nil, err
	}

	file, _, err := r.FormFile(imageField)
	if stderrors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.BadRequestError("failed to read uploaded image")
	}
	defer file.Close()

	img, err := readImageFile(file, maxBytes)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func readImageFile(file io.Reader, maxBytes int64) (storage.Image, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return storage.Image{}, errors.BadRequestError("failed to read uploaded image")
	}
	if int64(len(data)) > maxBytes {
		return storage.Image{}, errors.PayloadTooLargeError(maxBytes)
	}

	img, err := storage.NewImage(data)
	if err != nil {
		return storage.Image{}, errors.ValidationError(err.Error())
	}
	return img, nil
}
