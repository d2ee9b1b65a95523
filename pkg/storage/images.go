package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"stay-nest/pkg/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

var ErrStorageDisabled = errors.New("image storage is not configured")

type UploadedImage struct {
	URL      string
	PublicID string
}

// ImageStore uploads and removes property images on the image host.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*UploadedImage, error)
	Destroy(ctx context.Context, publicID string) error
}

type cloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    *zap.Logger
}

// NewImageStore returns a Cloudinary backed store, or a disabled store when
// credentials are missing.
func NewImageStore(config utils.CloudinaryConfig, log *zap.Logger) (ImageStore, error) {
	if config.CloudName == "" || config.APIKey == "" || config.APISecret == "" {
		log.Warn("Cloudinary credentials missing, image uploads disabled")
		return disabledStore{}, nil
	}

	cld, err := cloudinary.NewFromParams(config.CloudName, config.APIKey, config.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}

	return &cloudinaryStore{
		cld:    cld,
		folder: config.Folder,
		log:    log.With(zap.String("storage", "cloudinary")),
	}, nil
}

func (s *cloudinaryStore) Upload(ctx context.Context, file io.Reader, filename string) (*UploadedImage, error) {
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "image",
	})
	if err != nil {
		s.log.Error("Image upload failed", zap.Error(err), zap.String("filename", filename))
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	if resp.Error.Message != "" {
		s.log.Error("Image upload rejected", zap.String("reason", resp.Error.Message), zap.String("filename", filename))
		return nil, fmt.Errorf("upload %s: %s", filename, resp.Error.Message)
	}

	s.log.Info("Image uploaded", zap.String("public_id", resp.PublicID))
	return &UploadedImage{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (s *cloudinaryStore) Destroy(ctx context.Context, publicID string) error {
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("destroy %s: %s", publicID, resp.Error.Message)
	}

	s.log.Info("Image destroyed", zap.String("public_id", publicID), zap.String("result", resp.Result))
	return nil
}

type disabledStore struct{}

func (disabledStore) Upload(context.Context, io.Reader, string) (*UploadedImage, error) {
	return nil, ErrStorageDisabled
}

// Destroy is a no-op so deletes still succeed without an image host.
func (disabledStore) Destroy(context.Context, string) error {
	return nil
}
