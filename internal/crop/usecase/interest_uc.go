package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxInterestQuantity keeps quantities exactly representable as float64.
const maxInterestQuantity = 1 << 53

// CreateInterestInput is a buyer's bid. Quantity arrives as a number and must be a whole
// count of at least one unit.
type CreateInterestInput struct {
	Quantity float64
	Message  string
	UserName string
}

// DecisionResult reports the outcome of an adjudication.
type DecisionResult struct {
	Status            domain.InterestStatus
	RemainingQuantity float64
}

// CreateInterest records p's interest in a crop. A buyer may hold one interest per crop in any
// status, and owners cannot bid on their own listing.
func (uc *CropUsecase) CreateInterest(ctx context.Context, p *domain.Principal, cropID string, in CreateInterestInput) (*domain.Interest, error) {
	crop, err := uc.repo.FindByID(ctx, cropID)
	if err != nil {
		return nil, err
	}
	if crop.IsOwnedBy(p.Email) {
		return nil, fmt.Errorf("%w: owners cannot send interest on their own crop", domain.ErrInvalidOperation)
	}

	q := in.Quantity
	if math.IsNaN(q) || q < 1 || q != math.Trunc(q) || q > maxInterestQuantity {
		return nil, fmt.Errorf("%w: quantity must be a whole number >= 1", domain.ErrInvalidInput)
	}
	if crop.InterestFrom(p.Email) != nil {
		return nil, domain.ErrDuplicateInterest
	}

	userName := in.UserName
	if userName == "" {
		userName = p.Name
	}
	interest := &domain.Interest{
		ID:        primitive.NewObjectID().Hex(),
		CropID:    crop.ID,
		UserEmail: p.Email,
		UserName:  userName,
		Quantity:  int64(q),
		Message:   in.Message,
		Status:    domain.InterestPending,
		CreatedAt: uc.now(),
	}

	if err := uc.repo.AppendInterest(ctx, crop.ID, interest); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race with a concurrent bid from the same buyer or a delete.
			uc.logger.Warn("Interest append conflicted", zap.String("crop_id", crop.ID), zap.String("user_email", p.Email))
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InterestsCreatedTotal.Inc()
	}
	uc.publish(ctx, domain.SubjectInterestCreated, map[string]interface{}{
		"cropId":     crop.ID,
		"interestId": interest.ID,
		"ownerEmail": crop.Owner.Email,
		"userEmail":  interest.UserEmail,
		"quantity":   interest.Quantity,
	})
	uc.logger.Info("Interest created",
		zap.String("crop_id", crop.ID), zap.String("interest_id", interest.ID), zap.String("user_email", p.Email))
	return interest, nil
}

// DecideInterest lets the crop owner accept or reject a pending interest. Accepting subtracts the
// interest quantity from the crop, clamping at zero.
func (uc *CropUsecase) DecideInterest(ctx context.Context, p *domain.Principal, cropID, interestID string, status domain.InterestStatus) (*DecisionResult, error) {
	if !status.IsDecision() {
		return nil, fmt.Errorf("%w: invalid status", domain.ErrInvalidInput)
	}

	crop, err := uc.repo.FindByID(ctx, cropID)
	if err != nil {
		return nil, err
	}
	if err := EnsureOwner(p, crop); err != nil {
		uc.logger.Warn("Adjudication forbidden", zap.String("crop_id", cropID), zap.String("caller", p.Email))
		return nil, err
	}
	interest := crop.FindInterest(interestID)
	if interest == nil {
		return nil, domain.ErrInterestNotFound
	}
	if interest.Status != domain.InterestPending {
		return nil, fmt.Errorf("%w: action already taken", domain.ErrInvalidOperation)
	}

	decision := domain.InterestDecision{
		CropID:           crop.ID,
		InterestID:       interest.ID,
		Status:           status,
		ExpectedQuantity: crop.Quantity,
		DecidedAt:        uc.now(),
	}
	remaining := crop.Quantity
	if status == domain.InterestAccepted {
		remaining = crop.RemainingAfter(interest.Quantity)
		decision.NewQuantity = &remaining
	}

	if err := uc.repo.DecideInterest(ctx, decision); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.logger.Warn("Adjudication lost a race",
				zap.String("crop_id", cropID), zap.String("interest_id", interestID))
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.InterestDecisionsTotal.WithLabelValues(string(status)).Inc()
	}
	subject := domain.SubjectInterestRejected
	if status == domain.InterestAccepted {
		subject = domain.SubjectInterestAccepted
	}
	uc.publish(ctx, subject, map[string]interface{}{
		"cropId":            crop.ID,
		"interestId":        interest.ID,
		"userEmail":         interest.UserEmail,
		"quantity":          interest.Quantity,
		"remainingQuantity": remaining,
	})
	uc.logger.Info("Interest decided",
		zap.String("crop_id", cropID), zap.String("interest_id", interestID),
		zap.String("status", string(status)), zap.Float64("remaining", remaining))
	return &DecisionResult{Status: status, RemainingQuantity: remaining}, nil
}
