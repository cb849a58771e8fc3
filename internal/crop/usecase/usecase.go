// Package usecase holds the crop listing and interest lifecycle rules.
package usecase

import (
	"context"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/metrics"
	"go.uber.org/zap"
)

// DefaultListLimit caps the public crop listing.
const DefaultListLimit = 50

// CropUsecase implements listing CRUD, the interest lifecycle and the per-user views.
type CropUsecase struct {
	repo      domain.CropRepository
	publisher domain.EventPublisher
	storage   domain.ImageStorage
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
	now       func() time.Time
}

// NewCropUsecase wires the usecase. storage and mm may be nil.
func NewCropUsecase(repo domain.CropRepository, publisher domain.EventPublisher, storage domain.ImageStorage, mm *metrics.MetricsManager, log *logger.Logger) *CropUsecase {
	return &CropUsecase{
		repo:      repo,
		publisher: publisher,
		storage:   storage,
		metrics:   mm,
		logger:    log.Named("CropUsecase"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// publish never fails the caller; the mutation is already committed.
func (uc *CropUsecase) publish(ctx context.Context, subject string, data map[string]interface{}) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
