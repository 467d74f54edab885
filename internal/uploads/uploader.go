package uploads

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/taskforge/task-manager-api/internal/config"
)

// Uploader sends a local file to an external image store and returns the
// durable URL.
type Uploader interface {
	Upload(ctx context.Context, filePath string) (string, error)
}

// CloudinaryUploader is the Cloudinary-backed Uploader.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader creates an Uploader from config, or nil when no
// Cloudinary credentials are configured.
func NewCloudinaryUploader(cfg *config.Config) (*CloudinaryUploader, error) {
	if cfg.CloudinaryCloudName == "" {
		return nil, nil
	}

	client, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryUploader{
		client: client,
		folder: "task-manager",
	}, nil
}

// Upload pushes the file to Cloudinary and removes the local copy on
// success.
func (u *CloudinaryUploader) Upload(ctx context.Context, filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("no file path provided for upload")
	}

	result, err := u.client.Upload.Upload(ctx, filePath, uploader.UploadParams{
		Folder:       u.folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}

	os.Remove(filePath)

	return result.SecureURL, nil
}
