package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means the caller presented no credential or an invalid one.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the caller is authenticated but not allowed to act on the resource.
	ErrForbidden = errors.New("not authorized")
	// ErrNotFound is the parent of every missing-entity error.
	ErrNotFound         = errors.New("not found")
	ErrCropNotFound     = fmt.Errorf("crop %w", ErrNotFound)
	ErrInterestNotFound = fmt.Errorf("interest %w", ErrNotFound)
	// ErrInvalidInput indicates a missing or malformed field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidOperation is a business-rule violation such as bidding on one's own crop.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrConflict means a conditional write matched nothing because the state moved underneath us.
	ErrConflict = errors.New("conflict")
	// ErrDuplicateInterest is returned when the buyer already has an interest on the crop.
	ErrDuplicateInterest = fmt.Errorf("%w: you have already sent an interest for this crop", ErrConflict)
	// ErrUnavailable covers timeouts and unreachable collaborators.
	ErrUnavailable = errors.New("service unavailable")
	// ErrRepository indicates a generic persistence failure.
	ErrRepository = errors.New("repository error")
)
