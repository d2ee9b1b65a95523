package adaptor

import (
	"mime/multipart"
	"net/http"
	"strings"

	"stay-nest/internal/dto/request"
	"stay-nest/internal/usecase"
	"stay-nest/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	maxImageBytes  = 5 << 20
	maxUploadBytes = 6 * maxImageBytes
)

type PropertyHandler struct {
	service usecase.PropertyService
	log     *zap.Logger
}

func NewPropertyHandler(service usecase.PropertyService, log *zap.Logger) *PropertyHandler {
	return &PropertyHandler{
		service: service,
		log:     log.With(zap.String("handler", "property")),
	}
}

// ListProperties handles GET /api/properties (public)
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := &request.PropertyListRequest{
		PaginatedRequest: *paginationFromQuery(r, utils.DefaultPerPage),
		Location:         strings.TrimSpace(query.Get("location")),
		MinPrice:         utils.ParseOptionalFloat(query.Get("minPrice")),
		MaxPrice:         utils.ParseOptionalFloat(query.Get("maxPrice")),
		Bedrooms:         utils.ParseOptionalInt(query.Get("bedrooms")),
		Bathrooms:        utils.ParseOptionalInt(query.Get("bathrooms")),
		Amenities:        utils.SplitCSV(query.Get("amenities")),
		SortBy:           query.Get("sortBy"),
	}

	properties, err := h.service.ListProperties(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list properties")
		return
	}

	utils.ResponseSuccess(w, "success", properties)
}

// GetProperty handles GET /api/properties/{id} (public)
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	property, err := h.service.GetProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get property")
		return
	}

	utils.ResponseSuccess(w, "success", property)
}

// CreateProperty handles POST /api/properties (protected)
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.CreatePropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	property, err := h.service.CreateProperty(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create property")
		return
	}

	utils.ResponseCreated(w, "Property created", property)
}

// GetMyProperties handles GET /api/properties/my-properties (protected)
func (h *PropertyHandler) GetMyProperties(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	properties, err := h.service.GetMyProperties(r.Context(), principal, paginationFromQuery(r, utils.DefaultPerPage))
	if err != nil {
		handleServiceError(w, h.log, err, "get my properties")
		return
	}

	utils.ResponseSuccess(w, "success", properties)
}

// UpdateProperty handles PATCH /api/properties/{id} (owner)
func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.UpdatePropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	property, err := h.service.UpdateProperty(r.Context(), principal, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update property")
		return
	}

	utils.ResponseSuccess(w, "Property updated", property)
}

// DeleteProperty handles DELETE /api/properties/{id} (owner)
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProperty(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete property")
		return
	}

	utils.ResponseSuccess(w, "Property deleted", nil)
}

// UploadImages handles POST /api/properties/{id}/images (owner, multipart "images")
func (h *PropertyHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		utils.ResponseBadRequest(w, "Invalid multipart form", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["images"]
	uploads := make([]usecase.ImageUpload, 0, len(headers))
	for _, header := range headers {
		if header.Size > maxImageBytes {
			utils.ResponseBadRequest(w, "Each image must be 5MB or smaller", nil)
			return
		}
		if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
			utils.ResponseBadRequest(w, "Only image files are allowed", nil)
			return
		}

		file, err := header.Open()
		if err != nil {
			h.log.Error("Failed to open uploaded file", zap.Error(err), zap.String("filename", header.Filename))
			utils.ResponseBadRequest(w, "Could not read uploaded file", nil)
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(file)

		uploads = append(uploads, usecase.ImageUpload{Filename: header.Filename, Content: file})
	}

	property, err := h.service.UploadImages(r.Context(), principal, chi.URLParam(r, "id"), uploads)
	if err != nil {
		handleServiceError(w, h.log, err, "upload images")
		return
	}

	utils.ResponseSuccess(w, "Images uploaded", property)
}

// DeleteImage handles DELETE /api/properties/{id}/images/{imageId} (owner)
func (h *PropertyHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	property, err := h.service.DeleteImage(r.Context(), principal, chi.URLParam(r, "id"), chi.URLParam(r, "imageId"))
	if err != nil {
		handleServiceError(w, h.log, err, "delete image")
		return
	}

	utils.ResponseSuccess(w, "Image deleted", property)
}

// ToggleFavorite handles PATCH /api/properties/{id}/favorite (protected)
func (h *PropertyHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	favorite, err := h.service.ToggleFavorite(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "toggle favorite")
		return
	}

	utils.ResponseSuccess(w, "success", favorite)
}

// GetFavorites handles GET /api/properties/favorites (protected)
func (h *PropertyHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	favorites, err := h.service.GetFavorites(r.Context(), principal)
	if err != nil {
		handleServiceError(w, h.log, err, "get favorites")
		return
	}

	utils.ResponseSuccess(w, "success", favorites)
}
