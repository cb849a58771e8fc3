package usecase

import (
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
)

// EnsureOwner fails with domain.ErrForbidden unless p owns crop. Emails compare exactly.
func EnsureOwner(p *domain.Principal, crop *domain.Crop) error {
	if p == nil || !crop.IsOwnedBy(p.Email) {
		return domain.ErrForbidden
	}
	return nil
}
