package evidence

import (
	"context"

	"github.com/rxwx/Ghostwriter/richtext"
)

// ImageSource bridges the evidence Service to the editor plugin's uploader
// contract: a stored record becomes the attributes of the image node the
// editor inserts.
type ImageSource struct {
	svc Service
}

// NewImageSource wraps svc for use as a richtext.Uploader.
func NewImageSource(svc Service) *ImageSource {
	return &ImageSource{svc: svc}
}

// Upload stores the file as evidence and maps the resolved record onto image
// node attributes: the public URL as src, the friendly name as alt and title.
func (s *ImageSource) Upload(ctx context.Context, file richtext.File) (richtext.ImageAttrs, error) {
	record, err := s.svc.UploadAndResolve(ctx, Upload{
		Filename:  file.Name,
		MediaType: file.MediaType,
		Data:      file.Data,
	})
	if err != nil {
		return richtext.ImageAttrs{}, err
	}

	return richtext.ImageAttrs{
		Src:   record.URL,
		Alt:   record.FriendlyName,
		Title: record.FriendlyName,
	}, nil
}
