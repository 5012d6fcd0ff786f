package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodshare/backend/config"
)

// ErrInvalidImage marks payloads that cannot be decoded or whose container
// format cannot be sniffed.
var ErrInvalidImage = errors.New("invalid image payload")

// ImageService stores inline-submitted recipe images. Files always land
// under the local media root; when an S3 configuration is present they are
// mirrored there as well.
type ImageService struct {
	mediaRoot string
	s3Config  *config.S3Config
}

func NewImageService(mediaRoot string, s3Config *config.S3Config) *ImageService {
	return &ImageService{
		mediaRoot: mediaRoot,
		s3Config:  s3Config,
	}
}

// DecodeAndStore accepts a data-URI-like string, strips everything up to and
// including the last comma, base64-decodes the remainder, sniffs the image
// container format and writes the bytes under a freshly generated name with
// an extension matching the sniffed format. It returns the stored path.
func (s *ImageService) DecodeAndStore(ctx context.Context, payload string) (string, error) {
	if i := strings.LastIndex(payload, ","); i >= 0 {
		payload = payload[i+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	fileName := uuid.New().String() + "." + format
	dir := filepath.Join(s.mediaRoot, "recipes", "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	storedPath := filepath.Join(dir, fileName)
	if err := os.WriteFile(storedPath, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	if s.s3Config != nil {
		if err := s.uploadToS3(ctx, raw, "recipes/images/"+fileName, "image/"+format); err != nil {
			// The local copy is authoritative; the mirror can lag.
			log.Printf("[ImageService] Failed to mirror image to S3: %v", err)
		}
	}
	return storedPath, nil
}

// uploadToS3 mirrors image data to the configured bucket.
func (s *ImageService) uploadToS3(ctx context.Context, data []byte, key, contentType string) error {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// PublicImagePath rewrites an internal storage path to the short public
// path: the last four path segments joined with '/', with a leading '/'.
func PublicImagePath(stored string) string {
	if stored == "" {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(stored, "/"), "/")
	if len(parts) > 4 {
		parts = parts[len(parts)-4:]
	}
	return "/" + strings.Join(parts, "/")
}
