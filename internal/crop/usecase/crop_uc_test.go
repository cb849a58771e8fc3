package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/repository/memory"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	seller = &domain.Principal{UserID: "u-seller", Email: "seller@example.com", Name: "Seller"}
	buyerA = &domain.Principal{UserID: "u-a", Email: "a@example.com", Name: "Buyer A"}
	buyerB = &domain.Principal{UserID: "u-b", Email: "b@example.com", Name: "Buyer B"}
)

func validCropInput() CreateCropInput {
	return CreateCropInput{
		Name: "Potato", Type: "Vegetable", PricePerUnit: 5, Unit: "kg", Quantity: 10,
		Description: "Fresh", Location: "Hooghly", Image: "https://img.example.com/p.png",
		Owner: &OwnerInput{OwnerEmail: seller.Email},
	}
}

func newMemoryUsecase(t *testing.T) (*CropUsecase, *recordingPublisher, *metrics.MetricsManager) {
	t.Helper()
	pub := &recordingPublisher{}
	mm := metrics.NewMetricsManager("test")
	return NewCropUsecase(memory.NewCropRepository(), pub, nil, mm, logger.NewNop()), pub, mm
}

func TestCreateCrop(t *testing.T) {
	uc, pub, mm := newMemoryUsecase(t)

	crop, err := uc.CreateCrop(context.Background(), seller, validCropInput())
	require.NoError(t, err)
	assert.NotEmpty(t, crop.ID)
	assert.Equal(t, domain.CropStatusPending, crop.Status)
	assert.Equal(t, "Seller", crop.Owner.Name)
	assert.Equal(t, "u-seller", crop.Owner.UserID)
	assert.Empty(t, crop.Interests)
	assert.Equal(t, []string{domain.SubjectCropCreated}, pub.Subjects())
	assert.Equal(t, 1.0, testutil.ToFloat64(mm.CropsCreatedTotal))
}

func TestCreateCrop_RequiredFields(t *testing.T) {
	uc, _, _ := newMemoryUsecase(t)
	cases := map[string]func(*CreateCropInput){
		"name is required":         func(in *CreateCropInput) { in.Name = "" },
		"pricePerUnit is required": func(in *CreateCropInput) { in.PricePerUnit = 0 },
		"quantity is required":     func(in *CreateCropInput) { in.Quantity = 0 },
		"owner is required":        func(in *CreateCropInput) { in.Owner = nil },
		"pricePerUnit must be":     func(in *CreateCropInput) { in.PricePerUnit = -3 },
		"quantity must be":         func(in *CreateCropInput) { in.Quantity = -1 },
	}
	for msg, mutate := range cases {
		t.Run(msg, func(t *testing.T) {
			in := validCropInput()
			mutate(&in)
			_, err := uc.CreateCrop(context.Background(), seller, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), msg)
		})
	}
}

func TestCreateCrop_OwnerMustBeCaller(t *testing.T) {
	uc, _, _ := newMemoryUsecase(t)
	in := validCropInput()
	in.Owner.OwnerEmail = "someone-else@example.com"
	_, err := uc.CreateCrop(context.Background(), seller, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListCropsUsesLimit(t *testing.T) {
	repo := new(MockCropRepository)
	repo.On("Find", mock.Anything, domain.CropFilter{Limit: DefaultListLimit}).Return([]*domain.Crop{}, nil)
	uc := NewCropUsecase(repo, nil, nil, nil, logger.NewNop())

	crops, err := uc.ListCrops(context.Background())
	require.NoError(t, err)
	assert.Empty(t, crops)
	repo.AssertExpectations(t)
}

func TestUpdateCrop(t *testing.T) {
	uc, pub, _ := newMemoryUsecase(t)
	ctx := context.Background()
	crop, err := uc.CreateCrop(ctx, seller, validCropInput())
	require.NoError(t, err)

	price := 7.0
	assert.ErrorIs(t, uc.UpdateCrop(ctx, buyerA, crop.ID, domain.CropPatch{PricePerUnit: &price}), domain.ErrForbidden)
	assert.ErrorIs(t, uc.UpdateCrop(ctx, seller, crop.ID, domain.CropPatch{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.UpdateCrop(ctx, seller, "missing", domain.CropPatch{PricePerUnit: &price}), domain.ErrNotFound)

	require.NoError(t, uc.UpdateCrop(ctx, seller, crop.ID, domain.CropPatch{PricePerUnit: &price}))
	got, err := uc.GetCrop(ctx, crop.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.PricePerUnit)
	assert.Equal(t, seller.Email, got.Owner.Email)
	assert.Contains(t, pub.Subjects(), domain.SubjectCropUpdated)
}

func TestDeleteCrop(t *testing.T) {
	uc, pub, mm := newMemoryUsecase(t)
	ctx := context.Background()
	crop, err := uc.CreateCrop(ctx, seller, validCropInput())
	require.NoError(t, err)

	assert.ErrorIs(t, uc.DeleteCrop(ctx, buyerA, crop.ID), domain.ErrForbidden)
	require.NoError(t, uc.DeleteCrop(ctx, seller, crop.ID))
	_, err = uc.GetCrop(ctx, crop.ID)
	assert.ErrorIs(t, err, domain.ErrCropNotFound)
	assert.Contains(t, pub.Subjects(), domain.SubjectCropDeleted)
	assert.Equal(t, 1.0, testutil.ToFloat64(mm.CropsDeletedTotal))
}

func TestDeleteCrop_RepositoryError(t *testing.T) {
	repo := new(MockCropRepository)
	crop := &domain.Crop{ID: "c1", Owner: domain.Owner{Email: seller.Email}}
	repo.On("FindByID", mock.Anything, "c1").Return(crop, nil)
	repo.On("Delete", mock.Anything, "c1").Return(domain.ErrRepository)
	uc := NewCropUsecase(repo, nil, nil, nil, logger.NewNop())

	assert.ErrorIs(t, uc.DeleteCrop(context.Background(), seller, "c1"), domain.ErrRepository)
}

func TestUploadCropImage(t *testing.T) {
	store := new(MockImageStorage)
	store.On("Upload", mock.Anything, "p.png", "image/png", mock.Anything, int64(3)).
		Return("http://minio:9000/crop-images/images/x.png", nil)
	repo := memory.NewCropRepository()
	uc := NewCropUsecase(repo, nil, store, nil, logger.NewNop())
	ctx := context.Background()

	crop, err := uc.CreateCrop(ctx, seller, validCropInput())
	require.NoError(t, err)

	_, err = uc.UploadCropImage(ctx, buyerA, crop.ID, "p.png", "image/png", strings.NewReader("png"), 3)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.UploadCropImage(ctx, seller, crop.ID, "p.txt", "text/plain", strings.NewReader("txt"), 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	url, err := uc.UploadCropImage(ctx, seller, crop.ID, "p.png", "image/png", strings.NewReader("png"), 3)
	require.NoError(t, err)
	got, _ := repo.FindByID(ctx, crop.ID)
	assert.Equal(t, url, got.Image)
	store.AssertNumberOfCalls(t, "Upload", 1)
}

func TestUploadCropImage_NoStorage(t *testing.T) {
	uc, _, _ := newMemoryUsecase(t)
	_, err := uc.UploadCropImage(context.Background(), seller, "c1", "p.png", "image/png", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("nats down")}
	uc := NewCropUsecase(memory.NewCropRepository(), pub, nil, nil, logger.NewNop())
	_, err := uc.CreateCrop(context.Background(), seller, validCropInput())
	assert.NoError(t, err)
}

func TestEnsureOwner(t *testing.T) {
	crop := &domain.Crop{Owner: domain.Owner{Email: seller.Email}}
	assert.NoError(t, EnsureOwner(seller, crop))
	assert.ErrorIs(t, EnsureOwner(buyerA, crop), domain.ErrForbidden)
	assert.ErrorIs(t, EnsureOwner(&domain.Principal{Email: "SELLER@example.com"}, crop), domain.ErrForbidden)
	assert.ErrorIs(t, EnsureOwner(nil, crop), domain.ErrForbidden)
}
