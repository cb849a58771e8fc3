package usecase

import (
	"context"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
)

// SentInterest is one of the caller's interests joined with its crop.
type SentInterest struct {
	InterestID string
	CropID     string
	CropName   string
	OwnerName  string
	Quantity   int64
	TotalPrice float64
	Status     domain.InterestStatus
	Message    string
	CreatedAt  time.Time
}

// ListMyInterests flattens every interest p has sent, across all crops. Nothing is cached; the
// totals are computed from the current price.
func (uc *CropUsecase) ListMyInterests(ctx context.Context, p *domain.Principal) ([]SentInterest, error) {
	crops, err := uc.repo.Find(ctx, domain.CropFilter{InterestUserEmail: p.Email})
	if err != nil {
		return nil, err
	}

	out := make([]SentInterest, 0, len(crops))
	for _, c := range crops {
		ownerName := c.Owner.Name
		if ownerName == "" {
			ownerName = "Unknown"
		}
		for _, in := range c.Interests {
			if in.UserEmail != p.Email {
				continue
			}
			createdAt := in.CreatedAt
			if createdAt.IsZero() {
				createdAt = c.CreatedAt
			}
			out = append(out, SentInterest{
				InterestID: in.ID,
				CropID:     c.ID,
				CropName:   c.Name,
				OwnerName:  ownerName,
				Quantity:   in.Quantity,
				TotalPrice: float64(in.Quantity) * c.PricePerUnit,
				Status:     in.Status,
				Message:    in.Message,
				CreatedAt:  createdAt,
			})
		}
	}
	return out, nil
}

// ListMyCrops returns the crops p owns, newest first.
func (uc *CropUsecase) ListMyCrops(ctx context.Context, p *domain.Principal) ([]*domain.Crop, error) {
	return uc.repo.Find(ctx, domain.CropFilter{OwnerEmail: p.Email})
}
