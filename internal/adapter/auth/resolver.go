// Package auth turns a bearer credential into a domain.Principal.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"go.uber.org/zap"
)

// TokenVerifier validates a raw token against the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Principal, error)
}

// Resolver extracts the bearer token from an Authorization header and verifies it.
type Resolver struct {
	verifier TokenVerifier
	timeout  time.Duration
	logger   *logger.Logger
}

func NewResolver(verifier TokenVerifier, timeout time.Duration, log *logger.Logger) *Resolver {
	return &Resolver{
		verifier: verifier,
		timeout:  timeout,
		logger:   log.Named("PrincipalResolver"),
	}
}

// Resolve returns the caller's principal. A missing or malformed header, a rejected token and a
// token without email all yield domain.ErrUnauthenticated; a verifier timeout yields
// domain.ErrUnavailable.
func (r *Resolver) Resolve(ctx context.Context, authHeader string) (*domain.Principal, error) {
	token, ok := bearerToken(authHeader)
	if !ok {
		return nil, fmt.Errorf("%w: no token provided", domain.ErrUnauthenticated)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	p, err := r.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			r.logger.Error("Token verification timed out", zap.Error(err))
			return nil, fmt.Errorf("%w: identity provider timed out", domain.ErrUnavailable)
		}
		r.logger.Warn("Token verification failed", zap.Error(err))
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	if p == nil || p.Email == "" {
		r.logger.Warn("Verified token carries no email")
		return nil, fmt.Errorf("%w: token has no email", domain.ErrUnauthenticated)
	}
	return p, nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
