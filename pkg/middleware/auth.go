package middleware

import (
	"net/http"
	"strings"

	"stay-nest/internal/data/entity"
	"stay-nest/internal/data/repository"
	"stay-nest/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auth validates the bearer JWT and the session it is bound to, then places
// the caller's principal on the request context. A token query parameter is
// accepted for clients that cannot set headers, such as browser websockets.
func Auth(sessionRepo repository.SessionRepository, jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token
			token, ok := bearerToken(r)
			if !ok {
				utils.ResponseUnauthorized(w, "Not authorized, no token")
				return
			}

			claims, err := utils.ParseToken(jwtSecret, token)
			if err != nil {
				logger.Warn("Invalid access token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Not authorized, token failed")
				return
			}

			// ParseToken guarantees both IDs are valid UUIDs.
			sessionToken := uuid.MustParse(claims.ID)
			userID := uuid.MustParse(claims.Subject)

			// Find valid session
			session, err := sessionRepo.FindValidSession(r.Context(), sessionToken)
			if err != nil {
				logger.Error("Failed to validate session", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if session == nil || session.UserID != userID {
				logger.Warn("Invalid or expired session", zap.String("user_id", userID.String()))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			principal := entity.Principal{
				UserID: userID,
				Role:   entity.UserRole(claims.Role),
			}
			ctx := utils.SetPrincipal(r.Context(), principal)
			ctx = utils.SetTokenContext(ctx, sessionToken.String())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin rejects callers whose account is not an admin. The role is re-read
// from the user store so a demotion takes effect before the token expires.
func Admin(userRepo repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Principal set by Auth
			principal, ok := utils.GetPrincipal(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			// 2. Current role from the store
			user, err := userRepo.FindByID(r.Context(), principal.UserID)
			if err != nil {
				logger.Error("Admin check: failed to get user",
					zap.Error(err), zap.String("user_id", principal.UserID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			// 3. Check if admin
			if user == nil || user.Role != entity.RoleAdmin {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", principal.UserID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			principal.Role = user.Role
			next.ServeHTTP(w, r.WithContext(utils.SetPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}
