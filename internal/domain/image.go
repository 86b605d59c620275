package domain

// ImageInput is the single source payload shared by every job in a run.
// It is immutable for the run's lifetime; Data must not be modified after
// the run is created.
type ImageInput struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// Validate checks that the input carries data and a MIME type.
func (i ImageInput) Validate() error {
	if len(i.Data) == 0 {
		return ErrEmptyImage
	}
	if i.MIMEType == "" {
		return ErrEmptyImageMIMEType
	}
	return nil
}

// ImageResult is the opaque artifact produced by a successful transform or
// by page composition. Data is treated as immutable once the result is
// written; consumers share the byte slice rather than copying it.
type ImageResult struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// Validate checks that the result carries data and a MIME type.
func (r *ImageResult) Validate() error {
	if r == nil {
		return ErrNilResult
	}
	if len(r.Data) == 0 {
		return ErrEmptyImage
	}
	if r.MIMEType == "" {
		return ErrEmptyImageMIMEType
	}
	return nil
}
