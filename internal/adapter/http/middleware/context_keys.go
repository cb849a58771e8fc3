package middleware

import (
	"context"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
)

// ContextKey is a private type for request-scoped values.
type ContextKey string

const (
	PrincipalCtxKey = ContextKey("principal")
	RequestIDCtxKey = ContextKey("request_id")
)

// PrincipalFromContext returns the principal set by Auth, or nil on public routes.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(PrincipalCtxKey).(*domain.Principal)
	return p
}

func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalCtxKey, p)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDCtxKey).(string)
	return id
}
