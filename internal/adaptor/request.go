package adaptor

import (
	"net/http"

	"stay-nest/internal/data/entity"
	"stay-nest/internal/dto/request"
	"stay-nest/pkg/utils"

	"github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into dst and runs the struct's
// validation tags. It writes the 400 response itself and returns false when
// the request cannot proceed.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}

	return true
}

func requirePrincipal(w http.ResponseWriter, r *http.Request) (entity.Principal, bool) {
	principal, ok := utils.GetPrincipal(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
	}
	return principal, ok
}

func paginationFromQuery(r *http.Request, defaultPerPage int) *request.PaginatedRequest {
	query := r.URL.Query()
	return request.NewPaginatedRequest(
		utils.ParseInt(query.Get("page"), 1),
		utils.ParseInt(query.Get("limit"), defaultPerPage),
		defaultPerPage,
	)
}
