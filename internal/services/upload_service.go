package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadService pushes reward tier images to Cloudinary and returns the
// hosted HTTPS URL.
type UploadService struct {
	cld *cloudinary.Cloudinary
}

func NewUploadService(cloudinaryURL string) (*UploadService, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary URL is required")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &UploadService{cld: cld}, nil
}

func (s *UploadService) UploadImage(ctx context.Context, file multipart.File, folder string) (string, error) {
	publicID := fmt.Sprintf("%s/%d", folder, time.Now().UnixNano())

	truePtr := true
	falsePtr := false
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		UseFilename:    &truePtr,
		UniqueFilename: &truePtr,
		Overwrite:      &falsePtr,
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	url := result.SecureURL
	if url == "" {
		url = strings.Replace(result.URL, "http://", "https://", 1)
	}
	return url, nil
}
