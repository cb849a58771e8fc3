package domain

import (
	"context"
	"io"
)

// CropRepository is the listing store. It exclusively owns persisted crop and interest state;
// every mutation of an interest happens as part of a single write on its parent crop.
type CropRepository interface {
	// Create inserts the crop and sets crop.ID.
	Create(ctx context.Context, crop *Crop) error
	// FindByID returns ErrCropNotFound when no crop has the id.
	FindByID(ctx context.Context, id string) (*Crop, error)
	// Find returns matching crops, newest first.
	Find(ctx context.Context, filter CropFilter) ([]*Crop, error)
	// Update applies the whitelisted patch. Returns ErrCropNotFound when nothing matched.
	Update(ctx context.Context, id string, patch CropPatch) error
	// Delete removes the crop with all of its interests.
	Delete(ctx context.Context, id string) error
	// AppendInterest atomically pushes the interest unless the crop is gone or already holds an
	// interest from the same email. Returns ErrConflict when nothing was modified.
	AppendInterest(ctx context.Context, cropID string, interest *Interest) error
	// DecideInterest applies the decision as one conditional write. Returns ErrConflict when the
	// preconditions no longer hold.
	DecideInterest(ctx context.Context, decision InterestDecision) error
	// Ping checks connectivity.
	Ping(ctx context.Context) error
}

// EventPublisher delivers domain events. Failures never roll back the mutation that produced them.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// ImageStorage stores listing images and returns a public URL.
type ImageStorage interface {
	Upload(ctx context.Context, fileName, contentType string, data io.Reader, size int64) (string, error)
}

// Event subjects.
const (
	SubjectCropCreated      = "crop.created"
	SubjectCropUpdated      = "crop.updated"
	SubjectCropDeleted      = "crop.deleted"
	SubjectInterestCreated  = "interest.created"
	SubjectInterestAccepted = "interest.accepted"
	SubjectInterestRejected = "interest.rejected"
)
