package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, r *CropRepository, owner string, qty float64, createdAt time.Time) *domain.Crop {
	t.Helper()
	c := &domain.Crop{Name: "Potato", Quantity: qty, PricePerUnit: 5, Owner: domain.Owner{Email: owner}, CreatedAt: createdAt}
	require.NoError(t, r.Create(context.Background(), c))
	return c
}

func TestCreateAndFindReturnCopies(t *testing.T) {
	r := NewCropRepository()
	c := seed(t, r, "owner@example.com", 10, time.Now())
	require.NotEmpty(t, c.ID)

	got, err := r.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	got.Quantity = 0

	again, err := r.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, again.Quantity)
}

func TestFindByIDMissing(t *testing.T) {
	_, err := NewCropRepository().FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrCropNotFound)
}

func TestFindFiltersAndOrdersNewestFirst(t *testing.T) {
	r := NewCropRepository()
	base := time.Now()
	old := seed(t, r, "a@example.com", 1, base.Add(-time.Hour))
	mid := seed(t, r, "b@example.com", 1, base.Add(-time.Minute))
	newest := seed(t, r, "a@example.com", 1, base)

	all, err := r.Find(context.Background(), domain.CropFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{newest.ID, mid.ID, old.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	mine, err := r.Find(context.Background(), domain.CropFilter{OwnerEmail: "a@example.com"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	limited, err := r.Find(context.Background(), domain.CropFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, newest.ID, limited[0].ID)

	require.NoError(t, r.AppendInterest(context.Background(), mid.ID, &domain.Interest{ID: "i1", UserEmail: "buyer@example.com"}))
	withBids, err := r.Find(context.Background(), domain.CropFilter{InterestUserEmail: "buyer@example.com"})
	require.NoError(t, err)
	require.Len(t, withBids, 1)
	assert.Equal(t, mid.ID, withBids[0].ID)
}

func TestAppendInterestRejectsDuplicateEmailAndMissingCrop(t *testing.T) {
	r := NewCropRepository()
	c := seed(t, r, "owner@example.com", 10, time.Now())
	ctx := context.Background()

	require.NoError(t, r.AppendInterest(ctx, c.ID, &domain.Interest{ID: "i1", UserEmail: "b@example.com"}))
	assert.ErrorIs(t, r.AppendInterest(ctx, c.ID, &domain.Interest{ID: "i2", UserEmail: "b@example.com"}), domain.ErrConflict)
	assert.ErrorIs(t, r.AppendInterest(ctx, "gone", &domain.Interest{ID: "i3", UserEmail: "c@example.com"}), domain.ErrConflict)
}

func TestDecideInterestIsConditional(t *testing.T) {
	r := NewCropRepository()
	c := seed(t, r, "owner@example.com", 10, time.Now())
	ctx := context.Background()
	require.NoError(t, r.AppendInterest(ctx, c.ID, &domain.Interest{ID: "i1", UserEmail: "b@example.com", Quantity: 4, Status: domain.InterestPending}))
	require.NoError(t, r.AppendInterest(ctx, c.ID, &domain.Interest{ID: "i2", UserEmail: "d@example.com", Quantity: 1, Status: domain.InterestPending}))

	six := 6.0
	accept := domain.InterestDecision{CropID: c.ID, InterestID: "i1", Status: domain.InterestAccepted, ExpectedQuantity: 10, NewQuantity: &six, DecidedAt: time.Now()}
	require.NoError(t, r.DecideInterest(ctx, accept))
	assert.ErrorIs(t, r.DecideInterest(ctx, accept), domain.ErrConflict, "already decided")

	stale := domain.InterestDecision{CropID: c.ID, InterestID: "i2", Status: domain.InterestAccepted, ExpectedQuantity: 10, NewQuantity: &six, DecidedAt: time.Now()}
	assert.ErrorIs(t, r.DecideInterest(ctx, stale), domain.ErrConflict, "quantity moved")

	got, err := r.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, got.Quantity)
	assert.Equal(t, domain.InterestAccepted, got.FindInterest("i1").Status)
	assert.NotNil(t, got.FindInterest("i1").DecidedAt)
	assert.Equal(t, domain.InterestPending, got.FindInterest("i2").Status)
}

func TestUpdateAndDelete(t *testing.T) {
	r := NewCropRepository()
	c := seed(t, r, "owner@example.com", 10, time.Now())
	ctx := context.Background()
	name := "Onion"

	require.NoError(t, r.Update(ctx, c.ID, domain.CropPatch{Name: &name}))
	got, _ := r.FindByID(ctx, c.ID)
	assert.Equal(t, "Onion", got.Name)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, r.Delete(ctx, c.ID))
	assert.ErrorIs(t, r.Delete(ctx, c.ID), domain.ErrCropNotFound)
	assert.ErrorIs(t, r.Update(ctx, c.ID, domain.CropPatch{Name: &name}), domain.ErrCropNotFound)
}

func TestCancelledContextIsUnavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCropRepository().FindByID(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
