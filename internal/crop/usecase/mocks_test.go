package usecase

import (
	"context"
	"io"
	"sync"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/stretchr/testify/mock"
)

type MockCropRepository struct{ mock.Mock }

func (m *MockCropRepository) Create(ctx context.Context, crop *domain.Crop) error {
	args := m.Called(ctx, crop)
	return args.Error(0)
}
func (m *MockCropRepository) FindByID(ctx context.Context, id string) (*domain.Crop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Crop), args.Error(1)
}
func (m *MockCropRepository) Find(ctx context.Context, filter domain.CropFilter) ([]*domain.Crop, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Crop), args.Error(1)
}
func (m *MockCropRepository) Update(ctx context.Context, id string, patch domain.CropPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}
func (m *MockCropRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockCropRepository) AppendInterest(ctx context.Context, cropID string, interest *domain.Interest) error {
	args := m.Called(ctx, cropID, interest)
	return args.Error(0)
}
func (m *MockCropRepository) DecideInterest(ctx context.Context, decision domain.InterestDecision) error {
	args := m.Called(ctx, decision)
	return args.Error(0)
}
func (m *MockCropRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockImageStorage struct{ mock.Mock }

func (m *MockImageStorage) Upload(ctx context.Context, fileName, contentType string, data io.Reader, size int64) (string, error) {
	args := m.Called(ctx, fileName, contentType, data, size)
	return args.String(0), args.Error(1)
}

// recordingPublisher captures published subjects.
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (r *recordingPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	return r.err
}

func (r *recordingPublisher) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.subjects...)
}
