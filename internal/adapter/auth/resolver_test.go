package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Principal), args.Error(1)
}

func TestResolve_MissingOrMalformedHeader(t *testing.T) {
	v := new(MockVerifier)
	r := NewResolver(v, time.Second, logger.NewNop())

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "bearer abc", "Bearer a b"} {
		_, err := r.Resolve(context.Background(), h)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, h)
	}
	v.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestResolve_VerifierRejects(t *testing.T) {
	v := new(MockVerifier)
	v.On("Verify", mock.Anything, "forged").Return(nil, errors.New("signature invalid"))
	r := NewResolver(v, time.Second, logger.NewNop())

	_, err := r.Resolve(context.Background(), "Bearer forged")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "invalid token")
	v.AssertExpectations(t)
}

func TestResolve_TokenWithoutEmail(t *testing.T) {
	v := new(MockVerifier)
	v.On("Verify", mock.Anything, "tok").Return(&domain.Principal{UserID: "u1"}, nil)
	r := NewResolver(v, time.Second, logger.NewNop())

	_, err := r.Resolve(context.Background(), "Bearer tok")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolve_Timeout(t *testing.T) {
	v := new(MockVerifier)
	v.On("Verify", mock.Anything, "slow").Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.DeadlineExceeded)
	r := NewResolver(v, 10*time.Millisecond, logger.NewNop())

	_, err := r.Resolve(context.Background(), "Bearer slow")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestResolve_Success(t *testing.T) {
	v := new(MockVerifier)
	want := &domain.Principal{UserID: "u1", Email: "farmer@example.com", Name: "Farmer"}
	v.On("Verify", mock.Anything, "good").Return(want, nil)
	r := NewResolver(v, time.Second, logger.NewNop())

	got, err := r.Resolve(context.Background(), "Bearer good")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
