package middleware

import (
	"context"
	"net/http"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
)

// PrincipalResolver turns an Authorization header into a principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, authHeader string) (*domain.Principal, error)
}

// ErrorWriter renders err as the JSON error response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

type principalHolderKey struct{}

type principalHolder struct {
	principal *domain.Principal
}

func withPrincipalHolder(ctx context.Context, h *principalHolder) context.Context {
	return context.WithValue(ctx, principalHolderKey{}, h)
}

// Auth rejects the request unless the resolver yields a principal.
func Auth(resolver PrincipalResolver, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeErr(w, r, err)
				return
			}
			if h, ok := r.Context().Value(principalHolderKey{}).(*principalHolder); ok {
				h.principal = p
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
