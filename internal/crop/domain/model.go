package domain

import (
	"fmt"
	"math"
	"time"
)

// CropStatus is the moderation status of a listing. It is independent of interest state.
type CropStatus string

const (
	CropStatusPending CropStatus = "pending"
)

// InterestStatus is the lifecycle state of a buyer interest.
type InterestStatus string

const (
	InterestPending  InterestStatus = "pending"
	InterestAccepted InterestStatus = "accepted"
	InterestRejected InterestStatus = "rejected"
)

// IsValid checks if the status is one of the defined constants.
func (s InterestStatus) IsValid() bool {
	switch s {
	case InterestPending, InterestAccepted, InterestRejected:
		return true
	}
	return false
}

// IsDecision reports whether s is a terminal status an owner may choose.
func (s InterestStatus) IsDecision() bool {
	return s == InterestAccepted || s == InterestRejected
}

// Principal is the authenticated caller, keyed by email.
type Principal struct {
	UserID string
	Email  string
	Name   string
}

// Owner is the listing owner as embedded in a crop.
type Owner struct {
	UserID string
	Email  string
	Name   string
}

// Crop is a sellable lot of produce. Interests are owned by the crop and live and die with it.
type Crop struct {
	ID           string
	Name         string
	Type         string
	PricePerUnit float64
	Unit         string
	Quantity     float64
	Description  string
	Location     string
	Image        string
	Owner        Owner
	Status       CropStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Interests    []Interest
}

// Interest is a buyer's bid for part of a crop's quantity.
type Interest struct {
	ID        string
	CropID    string
	UserEmail string
	UserName  string
	Quantity  int64
	Message   string
	Status    InterestStatus
	CreatedAt time.Time
	DecidedAt *time.Time
}

// IsOwnedBy compares owner email exactly.
func (c *Crop) IsOwnedBy(email string) bool {
	return email != "" && c.Owner.Email == email
}

// FindInterest returns the interest with the given id, or nil.
func (c *Crop) FindInterest(id string) *Interest {
	for i := range c.Interests {
		if c.Interests[i].ID == id {
			return &c.Interests[i]
		}
	}
	return nil
}

// InterestFrom returns the interest sent by email in any status, or nil.
func (c *Crop) InterestFrom(email string) *Interest {
	for i := range c.Interests {
		if c.Interests[i].UserEmail == email {
			return &c.Interests[i]
		}
	}
	return nil
}

// RemainingAfter is the quantity left once q units are taken. Oversubscription clamps to zero.
func (c *Crop) RemainingAfter(q int64) float64 {
	return math.Max(0, c.Quantity-float64(q))
}

// Clone returns a deep copy so callers never share interest slices.
func (c *Crop) Clone() *Crop {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Interests != nil {
		cp.Interests = make([]Interest, len(c.Interests))
		for i, in := range c.Interests {
			cp.Interests[i] = in
			if in.DecidedAt != nil {
				t := *in.DecidedAt
				cp.Interests[i].DecidedAt = &t
			}
		}
	}
	return &cp
}

// CropFilter narrows Find. Zero values mean "no constraint".
type CropFilter struct {
	OwnerEmail        string
	InterestUserEmail string
	Limit             int64
}

// InterestDecision is the conditional write applied when an owner adjudicates an interest.
// The write matches only while the interest is still pending and, when NewQuantity is set,
// while the crop quantity still equals ExpectedQuantity.
type InterestDecision struct {
	CropID           string
	InterestID       string
	Status           InterestStatus
	ExpectedQuantity float64
	NewQuantity      *float64
	DecidedAt        time.Time
}

// CropPatch lists the fields an owner may change. Nil means unchanged.
type CropPatch struct {
	Name         *string
	Type         *string
	PricePerUnit *float64
	Unit         *string
	Quantity     *float64
	Description  *string
	Location     *string
	Image        *string
}

// IsEmpty reports whether the patch changes nothing.
func (p CropPatch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.PricePerUnit == nil && p.Unit == nil &&
		p.Quantity == nil && p.Description == nil && p.Location == nil && p.Image == nil
}

// Validate rejects patches that would break crop invariants.
func (p CropPatch) Validate() error {
	if p.IsEmpty() {
		return fmt.Errorf("%w: no updatable fields provided", ErrInvalidInput)
	}
	strs := map[string]*string{
		"name": p.Name, "type": p.Type, "unit": p.Unit,
		"description": p.Description, "location": p.Location, "image": p.Image,
	}
	for field, v := range strs {
		if v != nil && *v == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidInput, field)
		}
	}
	if p.PricePerUnit != nil && !(*p.PricePerUnit > 0) {
		return fmt.Errorf("%w: pricePerUnit must be positive", ErrInvalidInput)
	}
	if p.Quantity != nil && !(*p.Quantity >= 0) {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	return nil
}

// Apply copies the set fields of p onto c.
func (p CropPatch) Apply(c *Crop) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.PricePerUnit != nil {
		c.PricePerUnit = *p.PricePerUnit
	}
	if p.Unit != nil {
		c.Unit = *p.Unit
	}
	if p.Quantity != nil {
		c.Quantity = *p.Quantity
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
}
