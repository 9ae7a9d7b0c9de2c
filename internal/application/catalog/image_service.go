package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/brightcart/backend/internal/domain/catalog"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allowedImageContentTypes is the whitelist of MIME types accepted for
// product images. Anything else is rejected before a presigned URL is
// ever handed out.
var allowedImageContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectStorageService defines the interface for object storage
// operations. The infrastructure layer implements it against any
// S3-compatible backend.
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file.
	// Returns the upload URL and expiration time
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file.
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ImageServiceConfig holds configuration for the image service
type ImageServiceConfig struct {
	// UploadURLExpiry is the duration for which upload URLs are valid
	UploadURLExpiry time.Duration
	// DownloadURLExpiry is the duration for which download URLs are valid
	DownloadURLExpiry time.Duration
}

// DefaultImageServiceConfig returns the default configuration
func DefaultImageServiceConfig() ImageServiceConfig {
	return ImageServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// ImageService handles product image uploads. Clients upload directly
// to object storage via presigned URLs; the server only hands out URLs
// and records the key once the upload is confirmed.
type ImageService struct {
	productRepo    catalog.ProductRepository
	storageService ObjectStorageService
	config         ImageServiceConfig
	logger         *zap.Logger
}

// NewImageService creates a new image service
func NewImageService(
	productRepo catalog.ProductRepository,
	storageService ObjectStorageService,
	logger *zap.Logger,
) *ImageService {
	return &ImageService{
		productRepo:    productRepo,
		storageService: storageService,
		config:         DefaultImageServiceConfig(),
		logger:         logger,
	}
}

// SetConfig sets the service configuration
func (s *ImageService) SetConfig(config ImageServiceConfig) {
	s.config = config
}

// RequestImageUploadInput contains input for requesting an image upload
type RequestImageUploadInput struct {
	ProductID   uuid.UUID
	ContentType string
}

// ImageUploadDTO carries the presigned upload target
type ImageUploadDTO struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ImageURLDTO carries a presigned download URL
type ImageURLDTO struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RequestUpload validates the request and returns a presigned upload URL
// for a fresh storage key. Nothing is recorded on the product until the
// upload is confirmed.
func (s *ImageService) RequestUpload(ctx context.Context, input RequestImageUploadInput) (*ImageUploadDTO, error) {
	if _, err := s.findProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	ext, ok := allowedImageContentTypes[strings.ToLower(strings.TrimSpace(input.ContentType))]
	if !ok {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed for product images", input.ContentType))
	}

	storageKey := buildImageKey(input.ProductID, ext)

	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(ctx, storageKey, input.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate upload URL",
			zap.String("product_id", input.ProductID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &ImageUploadDTO{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmUpload verifies the object landed in storage and records the
// key on the product. The previous image, if any, is deleted best effort.
func (s *ImageService) ConfirmUpload(ctx context.Context, productID uuid.UUID, storageKey string) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	// The key must be one this service issued for this product, so a
	// caller cannot point the product at someone else's object.
	if !strings.HasPrefix(storageKey, imageKeyPrefix(productID)) {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key does not belong to this product")
	}

	exists, err := s.storageService.ObjectExists(ctx, storageKey)
	if err != nil {
		s.logger.Error("Failed to verify upload", zap.String("storage_key", storageKey), zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND",
			"File not found in storage. Please upload the file first.")
	}

	previousKey := product.ImageKey
	product.SetImageKey(storageKey)

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to record product image", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to record product image")
	}

	if previousKey != "" && previousKey != storageKey {
		if err := s.storageService.DeleteObject(ctx, previousKey); err != nil {
			s.logger.Warn("Failed to delete previous product image",
				zap.String("storage_key", previousKey),
				zap.Error(err))
		}
	}

	s.logger.Info("Product image updated",
		zap.String("product_id", productID.String()),
		zap.String("storage_key", storageKey))

	return toProductDTO(product), nil
}

// GetImageURL returns a presigned download URL for the product's image
func (s *ImageService) GetImageURL(ctx context.Context, productID uuid.UUID) (*ImageURLDTO, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.ImageKey == "" {
		return nil, shared.NewDomainError("IMAGE_NOT_FOUND", "Product has no image")
	}

	url, expiresAt, err := s.storageService.GenerateDownloadURL(ctx, product.ImageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate download URL",
			zap.String("storage_key", product.ImageKey),
			zap.Error(err))
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}

	return &ImageURLDTO{URL: url, ExpiresAt: expiresAt}, nil
}

// DeleteImage removes the product's image from storage and clears the key
func (s *ImageService) DeleteImage(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.ImageKey == "" {
		return nil, shared.NewDomainError("IMAGE_NOT_FOUND", "Product has no image")
	}

	previousKey := product.ImageKey
	product.SetImageKey("")

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to clear product image", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to clear product image")
	}

	if err := s.storageService.DeleteObject(ctx, previousKey); err != nil {
		s.logger.Warn("Failed to delete product image object",
			zap.String("storage_key", previousKey),
			zap.Error(err))
	}

	return toProductDTO(product), nil
}

func (s *ImageService) findProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		s.logger.Error("Failed to find product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find product")
	}
	return product, nil
}

func imageKeyPrefix(productID uuid.UUID) string {
	return path.Join("products", productID.String()) + "/"
}

func buildImageKey(productID uuid.UUID, ext string) string {
	return path.Join("products", productID.String(), uuid.New().String()+ext)
}
