// Package memory is an in-process CropRepository with the same conditional-write semantics as
// the MongoDB store. It backs STORE_DRIVER=memory and the lifecycle tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CropRepository keeps crops in a map guarded by a single mutex. Every method works on copies,
// so no caller ever holds a reference into the stored state.
type CropRepository struct {
	mu    sync.RWMutex
	crops map[string]*domain.Crop
	now   func() time.Time
}

func NewCropRepository() *CropRepository {
	return &CropRepository{
		crops: make(map[string]*domain.Crop),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *CropRepository) Create(ctx context.Context, crop *domain.Crop) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	crop.ID = primitive.NewObjectID().Hex()
	if crop.Interests == nil {
		crop.Interests = []domain.Interest{}
	}
	r.crops[crop.ID] = crop.Clone()
	return nil
}

func (r *CropRepository) FindByID(ctx context.Context, id string) (*domain.Crop, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.crops[id]
	if !ok {
		return nil, domain.ErrCropNotFound
	}
	return c.Clone(), nil
}

func (r *CropRepository) Find(ctx context.Context, filter domain.CropFilter) ([]*domain.Crop, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Crop, 0, len(r.crops))
	for _, c := range r.crops {
		if filter.OwnerEmail != "" && c.Owner.Email != filter.OwnerEmail {
			continue
		}
		if filter.InterestUserEmail != "" && c.InterestFrom(filter.InterestUserEmail) == nil {
			continue
		}
		out = append(out, c.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *CropRepository) Update(ctx context.Context, id string, patch domain.CropPatch) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.crops[id]
	if !ok {
		return domain.ErrCropNotFound
	}
	patch.Apply(c)
	c.UpdatedAt = r.now()
	return nil
}

func (r *CropRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.crops[id]; !ok {
		return domain.ErrCropNotFound
	}
	delete(r.crops, id)
	return nil
}

func (r *CropRepository) AppendInterest(ctx context.Context, cropID string, interest *domain.Interest) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.crops[cropID]
	if !ok || c.InterestFrom(interest.UserEmail) != nil {
		return domain.ErrConflict
	}
	c.Interests = append(c.Interests, *interest)
	return nil
}

func (r *CropRepository) DecideInterest(ctx context.Context, d domain.InterestDecision) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.crops[d.CropID]
	if !ok {
		return domain.ErrConflict
	}
	in := c.FindInterest(d.InterestID)
	if in == nil || in.Status != domain.InterestPending {
		return domain.ErrConflict
	}
	if d.NewQuantity != nil && c.Quantity != d.ExpectedQuantity {
		return domain.ErrConflict
	}

	decidedAt := d.DecidedAt
	in.Status = d.Status
	in.DecidedAt = &decidedAt
	if d.NewQuantity != nil {
		c.Quantity = *d.NewQuantity
	}
	c.UpdatedAt = r.now()
	return nil
}

func (r *CropRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
