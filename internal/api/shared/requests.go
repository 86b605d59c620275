package shared

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/eralens-api/internal/domain"
)

// Global validator instance for reuse
var validate = validator.New()

// ImageFormField is the multipart form field carrying the source photograph.
const ImageFormField = "image"

// Sentinel errors for image uploads.
var (
	// ErrImageTooLarge is returned when the upload exceeds the configured size cap.
	ErrImageTooLarge = errors.New("uploaded image exceeds the size limit")

	// ErrMissingImage is returned when the request carries no usable image upload.
	ErrMissingImage = errors.New("request carries no image upload")

	// ErrUnsupportedImage is returned when the upload is not a supported image type.
	ErrUnsupportedImage = errors.New("uploaded image type is not supported")
)

// allowedImageTypes lists the source MIME types accepted as photograph input.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}

	// Otherwise, use the struct validator
	return validate.Struct(v)
}

// ReadImageUpload extracts the source photograph from a multipart request.
// The request body is capped at maxBytes before parsing. The MIME type is
// sniffed from the payload rather than trusted from the client headers.
func ReadImageUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (domain.ImageInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, _, err := r.FormFile(ImageFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return domain.ImageInput{}, ErrImageTooLarge
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return domain.ImageInput{}, ErrMissingImage
		default:
			return domain.ImageInput{}, fmt.Errorf("failed to read image upload: %w", err)
		}
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.ImageInput{}, ErrImageTooLarge
		}
		return domain.ImageInput{}, fmt.Errorf("failed to read image upload: %w", err)
	}

	if len(data) == 0 {
		return domain.ImageInput{}, ErrMissingImage
	}

	mimeType := http.DetectContentType(data)
	if !allowedImageTypes[mimeType] {
		return domain.ImageInput{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, mimeType)
	}

	return domain.ImageInput{Data: data, MIMEType: mimeType}, nil
}
