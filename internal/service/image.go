package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/platefeed/backend/config"
)

// ImageService stores uploaded recipe images under the static media dir,
// keyed by a generated filename, and mirrors them to S3 when a bucket is
// configured.
type ImageService struct {
	mediaDir string
	s3Config *config.S3Config
}

func NewImageService(mediaDir string, s3Config *config.S3Config) (*ImageService, error) {
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &ImageService{
		mediaDir: mediaDir,
		s3Config: s3Config,
	}, nil
}

// SaveBase64 decodes a base64 data URL (or bare base64 payload) and
// stores the image, returning the URL to persist on the recipe.
func (s *ImageService) SaveBase64(ctx context.Context, data string) (string, error) {
	if data == "" {
		return "", nil
	}

	payload := data
	ext := ".png"
	if strings.HasPrefix(data, "data:") {
		header, rest, found := strings.Cut(data, ",")
		if !found {
			return "", fmt.Errorf("malformed image data URL")
		}
		payload = rest
		switch {
		case strings.Contains(header, "image/jpeg"):
			ext = ".jpg"
		case strings.Contains(header, "image/gif"):
			ext = ".gif"
		}
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	fileName := uuid.New().String() + ext
	localPath := filepath.Join(s.mediaDir, fileName)
	if err := os.WriteFile(localPath, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	if s.s3Config != nil {
		url, err := s.uploadToS3(ctx, raw, "recipes/"+fileName, ext)
		if err != nil {
			// Keep the local copy as the source of truth when S3 misbehaves
			log.Printf("[ImageService] S3 upload failed, serving local copy: %v", err)
		} else {
			return url, nil
		}
	}

	return "/" + filepath.ToSlash(localPath), nil
}

func (s *ImageService) uploadToS3(ctx context.Context, data []byte, key, ext string) (string, error) {
	contentType := "image/png"
	switch ext {
	case ".jpg":
		contentType = "image/jpeg"
	case ".gif":
		contentType = "image/gif"
	}

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}
