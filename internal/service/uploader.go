package service

import "context"

// FileUploader stores a local file under the given kind (audio, image or
// metadata) and returns a durable URL. Implemented by pkg/cloudinary.
type FileUploader interface {
	UploadFile(ctx context.Context, localPath, kind string) (string, error)
}
