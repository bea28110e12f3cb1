package requestctx

import (
	"context"

	"github.com/google/uuid"

	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/auth"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/service"
	"github.com/MatheusLuisLorscheiter/pdv-food-iogar/internal/tenant"
)

type ctxKey string

const (
	claimsKey ctxKey = "auth_claims"
	handleKey ctxKey = "tenant_handle"
)

// WithClaims injeta as claims completas no contexto.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	if ctx == nil || claims == nil {
		return ctx
	}
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims retorna as claims armazenadas no contexto.
func GetClaims(ctx context.Context) *auth.Claims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// WithHandle injeta o handle do datastore do tenant no contexto.
func WithHandle(ctx context.Context, handle *tenant.Handle) context.Context {
	if ctx == nil || handle == nil {
		return ctx
	}
	return context.WithValue(ctx, handleKey, handle)
}

// Handle retorna o handle do tenant resolvido para a requisição.
func Handle(ctx context.Context) *tenant.Handle {
	if ctx == nil {
		return nil
	}
	handle, _ := ctx.Value(handleKey).(*tenant.Handle)
	return handle
}

// UserID recupera o usuário autenticado do contexto.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	claims := GetClaims(ctx)
	if claims == nil || claims.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// Actor deriva o contexto de ator dos claims: operador mais vínculo de
// filial/caixa embutido no token.
func Actor(ctx context.Context) (service.Actor, bool) {
	claims := GetClaims(ctx)
	if claims == nil || claims.UserID == uuid.Nil {
		return service.Actor{}, false
	}
	return service.Actor{
		StaffID:       claims.UserID,
		BranchID:      claims.BranchID,
		TillSessionID: claims.TillSessionID,
	}, true
}
