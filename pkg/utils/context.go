package utils

import (
	"context"

	"stay-nest/internal/data/entity"

	"github.com/google/uuid"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	TokenKey     contextKey = "token"
)

// SetPrincipal stores the authenticated caller on the request context.
func SetPrincipal(ctx context.Context, principal entity.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}

// GetPrincipal returns the authenticated caller placed by the auth middleware.
func GetPrincipal(ctx context.Context) (entity.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(entity.Principal)
	if !ok || principal.UserID == uuid.Nil {
		return entity.Principal{}, false
	}
	return principal, true
}

func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok && token != ""
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}
