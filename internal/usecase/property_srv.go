package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"stay-nest/internal/data/entity"
	"stay-nest/internal/data/repository"
	"stay-nest/internal/dto/request"
	"stay-nest/internal/dto/response"
	"stay-nest/pkg/apperror"
	"stay-nest/pkg/cache"
	"stay-nest/pkg/storage"
	"stay-nest/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCurrency = "INR"

// ImageUpload is one file of a multipart image upload.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

type PropertyService interface {
	// Public endpoints
	ListProperties(ctx context.Context, req *request.PropertyListRequest) (*response.PaginatedResponse[response.PropertyResponse], error)
	GetProperty(ctx context.Context, propertyID string) (*response.PropertyResponse, error)

	// Owner endpoints
	CreateProperty(ctx context.Context, principal entity.Principal, req *request.CreatePropertyRequest) (*response.PropertyResponse, error)
	GetMyProperties(ctx context.Context, principal entity.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PropertyResponse], error)
	UpdateProperty(ctx context.Context, principal entity.Principal, propertyID string, req *request.UpdatePropertyRequest) (*response.PropertyResponse, error)
	DeleteProperty(ctx context.Context, principal entity.Principal, propertyID string) error
	UploadImages(ctx context.Context, principal entity.Principal, propertyID string, files []ImageUpload) (*response.PropertyResponse, error)
	DeleteImage(ctx context.Context, principal entity.Principal, propertyID, imageID string) (*response.PropertyResponse, error)

	// Favorites
	ToggleFavorite(ctx context.Context, principal entity.Principal, propertyID string) (*response.FavoriteResponse, error)
	GetFavorites(ctx context.Context, principal entity.Principal) ([]response.PropertyResponse, error)
}

type propertyService struct {
	repo   *repository.Repository
	cache  cache.PropertyCache
	images storage.ImageStore
	log    *zap.Logger
}

func NewPropertyService(repo *repository.Repository, propertyCache cache.PropertyCache, images storage.ImageStore, log *zap.Logger) PropertyService {
	return &propertyService{
		repo:   repo,
		cache:  propertyCache,
		images: images,
		log:    log.With(zap.String("service", "property")),
	}
}

func (s *propertyService) ListProperties(ctx context.Context, req *request.PropertyListRequest) (*response.PaginatedResponse[response.PropertyResponse], error) {
	for _, amenity := range req.Amenities {
		if !entity.IsAmenity(amenity) {
			return nil, apperror.Validation("unknown amenity %q", amenity)
		}
	}

	filter := repository.PropertyFilter{
		Location:  req.Location,
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		Bedrooms:  req.Bedrooms,
		Bathrooms: req.Bathrooms,
		Amenities: req.Amenities,
		SortBy:    req.SortBy,
	}

	properties, err := s.repo.Property.List(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list properties", zap.Error(err))
		return nil, apperror.Internal("failed to get properties", err)
	}

	total, err := s.repo.Property.Count(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count properties", zap.Error(err))
		return nil, apperror.Internal("failed to get properties", err)
	}

	s.log.Debug("Properties listed",
		zap.Int("count", len(properties)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
	)

	return response.NewPaginatedResponse(response.PropertiesToResponse(properties), req.Page, req.Limit(), total), nil
}

func (s *propertyService) GetProperty(ctx context.Context, propertyID string) (*response.PropertyResponse, error) {
	id, err := uuid.Parse(propertyID)
	if err != nil {
		return nil, apperror.Validation("invalid property ID format %s", propertyID)
	}

	views, err := s.repo.Property.IncrementViews(ctx, id)
	if err != nil {
		s.log.Error("Failed to increment views", zap.Error(err), zap.String("property_id", propertyID))
		return nil, apperror.Internal("failed to get property", err)
	}
	if views == 0 {
		s.cache.Invalidate(ctx, id)
		return nil, apperror.NotFound("Property not found")
	}

	property, ok := s.cache.Get(ctx, id)
	if !ok {
		property, err = s.repo.Property.FindByID(ctx, id)
		if err != nil {
			s.log.Error("Failed to find property", zap.Error(err), zap.String("property_id", propertyID))
			return nil, apperror.Internal("failed to get property", err)
		}
		if property == nil {
			return nil, apperror.NotFound("Property not found")
		}
		s.cache.Set(ctx, property)
	}

	resp := response.PropertyToResponse(property)
	resp.Views = views
	return &resp, nil
}

func (s *propertyService) CreateProperty(ctx context.Context, principal entity.Principal, req *request.CreatePropertyRequest) (*response.PropertyResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create property validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	property := &entity.Property{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID:        principal.UserID,
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		Address:        req.Address,
		Price:          toPrice(req.Price),
		MaxGuests:      req.MaxGuests,
		Amenities:      req.Amenities,
		Specifications: toSpecifications(req.Specifications),
		Images:         []entity.Image{},
		Rules:          req.Rules,
		Status:         entity.PropertyStatusAvailable,
	}

	if err := s.repo.Property.Create(ctx, property); err != nil {
		s.log.Error("Failed to create property", zap.Error(err), zap.String("owner_id", principal.UserID.String()))
		return nil, apperror.Internal("failed to create property", err)
	}

	s.log.Info("Property created",
		zap.String("property_id", property.ID.String()),
		zap.String("owner_id", principal.UserID.String()),
		zap.Int("max_guests", property.MaxGuests),
	)

	resp := response.PropertyToResponse(property)
	return &resp, nil
}

func (s *propertyService) GetMyProperties(ctx context.Context, principal entity.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PropertyResponse], error) {
	properties, err := s.repo.Property.FindByOwner(ctx, principal.UserID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get owner properties", zap.Error(err), zap.String("owner_id", principal.UserID.String()))
		return nil, apperror.Internal("failed to get properties", err)
	}

	total, err := s.repo.Property.CountByOwner(ctx, principal.UserID)
	if err != nil {
		return nil, apperror.Internal("failed to count properties", err)
	}

	return response.NewPaginatedResponse(response.PropertiesToResponse(properties), req.Page, req.Limit(), total), nil
}

func (s *propertyService) UpdateProperty(ctx context.Context, principal entity.Principal, propertyID string, req *request.UpdatePropertyRequest) (*response.PropertyResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update property validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	property, err := s.findOwned(ctx, principal, propertyID, "update")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		property.Title = *req.Title
	}
	if req.Description != nil {
		property.Description = *req.Description
	}
	if req.Location != nil {
		property.Location = *req.Location
	}
	if req.Address != nil {
		property.Address = *req.Address
	}
	if req.Price != nil {
		property.Price = toPrice(*req.Price)
	}
	if req.MaxGuests != nil {
		property.MaxGuests = *req.MaxGuests
	}
	if req.Amenities != nil {
		property.Amenities = *req.Amenities
	}
	if req.Specifications != nil {
		property.Specifications = toSpecifications(*req.Specifications)
	}
	if req.Rules != nil {
		property.Rules = req.Rules
	}
	if req.Status != nil {
		property.Status = entity.PropertyStatus(*req.Status)
	}
	property.UpdatedAt = time.Now()

	if err := s.repo.Property.Update(ctx, property); err != nil {
		s.log.Error("Failed to update property", zap.Error(err), zap.String("property_id", propertyID))
		return nil, apperror.Internal("failed to update property", err)
	}

	s.cache.Invalidate(ctx, property.ID)

	s.log.Info("Property updated", zap.String("property_id", propertyID))

	resp := response.PropertyToResponse(property)
	return &resp, nil
}

func (s *propertyService) DeleteProperty(ctx context.Context, principal entity.Principal, propertyID string) error {
	property, err := s.findOwned(ctx, principal, propertyID, "delete")
	if err != nil {
		return err
	}

	if err := removeProperty(ctx, s.repo, s.images, s.cache, s.log, property); err != nil {
		return err
	}

	s.log.Info("Property deleted",
		zap.String("property_id", propertyID),
		zap.String("owner_id", principal.UserID.String()),
	)
	return nil
}

func (s *propertyService) UploadImages(ctx context.Context, principal entity.Principal, propertyID string, files []ImageUpload) (*response.PropertyResponse, error) {
	if len(files) == 0 {
		return nil, apperror.Validation("Please upload at least one image")
	}

	property, err := s.findOwned(ctx, principal, propertyID, "upload images for")
	if err != nil {
		return nil, err
	}

	if len(property.Images)+len(files) > entity.MaxPropertyImages {
		return nil, apperror.Validation("A property can have at most %d images", entity.MaxPropertyImages)
	}

	uploaded := make([]entity.Image, 0, len(files))
	for _, file := range files {
		img, err := s.images.Upload(ctx, file.Content, file.Filename)
		if err != nil {
			s.rollbackUploads(ctx, uploaded)
			if errors.Is(err, storage.ErrStorageDisabled) {
				return nil, apperror.Validation("Image uploads are not available")
			}
			s.log.Error("Failed to upload image", zap.Error(err), zap.String("property_id", propertyID))
			return nil, apperror.Internal("failed to upload images", err)
		}

		uploaded = append(uploaded, entity.Image{
			ID:       uuid.New(),
			URL:      img.URL,
			PublicID: img.PublicID,
			IsMain:   len(property.Images) == 0 && len(uploaded) == 0,
		})
	}

	images := append(property.Images, uploaded...)
	if err := s.repo.Property.UpdateImages(ctx, property.ID, images); err != nil {
		s.rollbackUploads(ctx, uploaded)
		s.log.Error("Failed to save property images", zap.Error(err), zap.String("property_id", propertyID))
		return nil, apperror.Internal("failed to upload images", err)
	}
	property.Images = images

	s.cache.Invalidate(ctx, property.ID)

	s.log.Info("Property images uploaded",
		zap.String("property_id", propertyID),
		zap.Int("uploaded", len(uploaded)),
		zap.Int("total", len(images)),
	)

	resp := response.PropertyToResponse(property)
	return &resp, nil
}

func (s *propertyService) DeleteImage(ctx context.Context, principal entity.Principal, propertyID, imageID string) (*response.PropertyResponse, error) {
	imageUUID, err := uuid.Parse(imageID)
	if err != nil {
		return nil, apperror.Validation("invalid image ID format %s", imageID)
	}

	property, err := s.findOwned(ctx, principal, propertyID, "delete images of")
	if err != nil {
		return nil, err
	}

	var (
		removed   *entity.Image
		remaining = make([]entity.Image, 0, len(property.Images))
	)
	for i := range property.Images {
		if property.Images[i].ID == imageUUID {
			removed = &property.Images[i]
			continue
		}
		remaining = append(remaining, property.Images[i])
	}
	if removed == nil {
		return nil, apperror.NotFound("Image not found")
	}

	if removed.IsMain && len(remaining) > 0 {
		remaining[0].IsMain = true
	}

	if err := s.images.Destroy(ctx, removed.PublicID); err != nil {
		s.log.Warn("Failed to destroy image", zap.Error(err), zap.String("public_id", removed.PublicID))
	}

	if err := s.repo.Property.UpdateImages(ctx, property.ID, remaining); err != nil {
		s.log.Error("Failed to save property images", zap.Error(err), zap.String("property_id", propertyID))
		return nil, apperror.Internal("failed to delete image", err)
	}
	property.Images = remaining

	s.cache.Invalidate(ctx, property.ID)

	s.log.Info("Property image deleted",
		zap.String("property_id", propertyID),
		zap.String("image_id", imageID),
	)

	resp := response.PropertyToResponse(property)
	return &resp, nil
}

func (s *propertyService) ToggleFavorite(ctx context.Context, principal entity.Principal, propertyID string) (*response.FavoriteResponse, error) {
	property, err := s.findProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	favorited, err := s.repo.Property.ToggleFavorite(ctx, property.ID, principal.UserID)
	if err != nil {
		s.log.Error("Failed to toggle favorite", zap.Error(err), zap.String("property_id", propertyID))
		return nil, apperror.Internal("failed to update favorites", err)
	}

	s.cache.Invalidate(ctx, property.ID)

	s.log.Info("Favorite toggled",
		zap.String("property_id", propertyID),
		zap.String("user_id", principal.UserID.String()),
		zap.Bool("favorited", favorited),
	)

	return &response.FavoriteResponse{PropertyID: property.ID.String(), Favorited: favorited}, nil
}

func (s *propertyService) GetFavorites(ctx context.Context, principal entity.Principal) ([]response.PropertyResponse, error) {
	properties, err := s.repo.Property.FindFavoritesByUser(ctx, principal.UserID)
	if err != nil {
		s.log.Error("Failed to get favorites", zap.Error(err), zap.String("user_id", principal.UserID.String()))
		return nil, apperror.Internal("failed to get favorites", err)
	}

	return response.PropertiesToResponse(properties), nil
}

// ==================== HELPER METHODS ====================

func (s *propertyService) findProperty(ctx context.Context, propertyID string) (*entity.Property, error) {
	id, err := uuid.Parse(propertyID)
	if err != nil {
		return nil, apperror.Validation("invalid property ID format %s", propertyID)
	}

	property, err := s.repo.Property.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find property", zap.Error(err), zap.String("property_id", propertyID))
		return nil, apperror.Internal("failed to get property", err)
	}
	if property == nil {
		return nil, apperror.NotFound("Property not found")
	}
	return property, nil
}

func (s *propertyService) findOwned(ctx context.Context, principal entity.Principal, propertyID, action string) (*entity.Property, error) {
	property, err := s.findProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	if !property.IsOwnedBy(principal.UserID) {
		s.log.Warn("Non-owner property access",
			zap.String("property_id", propertyID),
			zap.String("user_id", principal.UserID.String()),
			zap.String("action", action),
		)
		return nil, apperror.Forbidden("Not authorized to %s this property", action)
	}
	return property, nil
}

func (s *propertyService) rollbackUploads(ctx context.Context, images []entity.Image) {
	for _, img := range images {
		if err := s.images.Destroy(ctx, img.PublicID); err != nil {
			s.log.Warn("Failed to roll back uploaded image", zap.Error(err), zap.String("public_id", img.PublicID))
		}
	}
}

func toPrice(req request.PriceRequest) entity.Price {
	price := entity.Price{
		Amount:   req.Amount,
		Currency: req.Currency,
		Period:   entity.PricePeriod(req.Period),
	}
	if price.Currency == "" {
		price.Currency = defaultCurrency
	}
	if price.Period == "" {
		price.Period = entity.PricePeriodDaily
	}
	return price
}

func toSpecifications(req request.SpecificationsRequest) entity.Specifications {
	spec := entity.Specifications{
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Area:        req.Area,
		Floor:       req.Floor,
		TotalFloors: req.TotalFloors,
		Furnishing:  entity.Furnishing(req.Furnishing),
	}
	if spec.Furnishing == "" {
		spec.Furnishing = entity.FurnishingNone
	}
	return spec
}

// removeProperty destroys the hosted images, then the property row. Image
// failures are logged and skipped.
func removeProperty(
	ctx context.Context,
	repo *repository.Repository,
	images storage.ImageStore,
	propertyCache cache.PropertyCache,
	log *zap.Logger,
	property *entity.Property,
) error {
	for _, img := range property.Images {
		if err := images.Destroy(ctx, img.PublicID); err != nil {
			log.Warn("Failed to destroy property image",
				zap.Error(err),
				zap.String("property_id", property.ID.String()),
				zap.String("public_id", img.PublicID),
			)
		}
	}

	if err := repo.Property.Delete(ctx, property.ID); err != nil {
		log.Error("Failed to delete property", zap.Error(err), zap.String("property_id", property.ID.String()))
		return apperror.Internal("failed to delete property", err)
	}

	propertyCache.Invalidate(ctx, property.ID)
	return nil
}
