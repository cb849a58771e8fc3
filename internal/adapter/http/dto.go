package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/usecase"
)

// JSON field names follow the documents the web client already consumes.

type ownerDTO struct {
	OwnerID    string `json:"ownerId,omitempty"`
	OwnerEmail string `json:"ownerEmail"`
	OwnerName  string `json:"ownerName"`
}

type interestDTO struct {
	ID        string     `json:"_id"`
	CropID    string     `json:"cropId"`
	UserEmail string     `json:"userEmail"`
	UserName  string     `json:"userName"`
	Quantity  int64      `json:"quantity"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	DecidedAt *time.Time `json:"decidedAt,omitempty"`
}

type cropDTO struct {
	ID           string        `json:"_id"`
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	PricePerUnit float64       `json:"pricePerUnit"`
	Unit         string        `json:"unit"`
	Quantity     float64       `json:"quantity"`
	Description  string        `json:"description"`
	Location     string        `json:"location"`
	Image        string        `json:"image"`
	Owner        ownerDTO      `json:"owner"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty"`
	Interests    []interestDTO `json:"interests"`
}

type sentInterestDTO struct {
	ID         string    `json:"_id"`
	CropID     string    `json:"cropId"`
	CropName   string    `json:"cropName"`
	OwnerName  string    `json:"ownerName"`
	Quantity   int64     `json:"quantity"`
	TotalPrice float64   `json:"totalPrice"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toInterestDTO(in *domain.Interest) interestDTO {
	return interestDTO{
		ID:        in.ID,
		CropID:    in.CropID,
		UserEmail: in.UserEmail,
		UserName:  in.UserName,
		Quantity:  in.Quantity,
		Message:   in.Message,
		Status:    string(in.Status),
		CreatedAt: in.CreatedAt,
		DecidedAt: in.DecidedAt,
	}
}

func toCropDTO(c *domain.Crop) cropDTO {
	dto := cropDTO{
		ID:           c.ID,
		Name:         c.Name,
		Type:         c.Type,
		PricePerUnit: c.PricePerUnit,
		Unit:         c.Unit,
		Quantity:     c.Quantity,
		Description:  c.Description,
		Location:     c.Location,
		Image:        c.Image,
		Owner:        ownerDTO{OwnerID: c.Owner.UserID, OwnerEmail: c.Owner.Email, OwnerName: c.Owner.Name},
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt,
		Interests:    make([]interestDTO, 0, len(c.Interests)),
	}
	if !c.UpdatedAt.IsZero() {
		u := c.UpdatedAt
		dto.UpdatedAt = &u
	}
	for i := range c.Interests {
		dto.Interests = append(dto.Interests, toInterestDTO(&c.Interests[i]))
	}
	return dto
}

func toCropDTOs(crops []*domain.Crop) []cropDTO {
	out := make([]cropDTO, 0, len(crops))
	for _, c := range crops {
		out = append(out, toCropDTO(c))
	}
	return out
}

func toSentInterestDTOs(in []usecase.SentInterest) []sentInterestDTO {
	out := make([]sentInterestDTO, 0, len(in))
	for _, s := range in {
		out = append(out, sentInterestDTO{
			ID:         s.InterestID,
			CropID:     s.CropID,
			CropName:   s.CropName,
			OwnerName:  s.OwnerName,
			Quantity:   s.Quantity,
			TotalPrice: s.TotalPrice,
			Status:     string(s.Status),
			Message:    s.Message,
			CreatedAt:  s.CreatedAt,
		})
	}
	return out
}

// flexNumber accepts a JSON number or a numeric string.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*n = flexNumber(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", v)
		}
		*n = flexNumber(f)
	default:
		return fmt.Errorf("expected a number, got %s", string(b))
	}
	return nil
}

func (n *flexNumber) float() *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}

type createCropRequest struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	PricePerUnit flexNumber `json:"pricePerUnit"`
	Unit         string     `json:"unit"`
	Quantity     flexNumber `json:"quantity"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	Image        string     `json:"image"`
	Owner        *ownerDTO  `json:"owner"`
}

func (req createCropRequest) toInput() usecase.CreateCropInput {
	in := usecase.CreateCropInput{
		Name:         req.Name,
		Type:         req.Type,
		PricePerUnit: float64(req.PricePerUnit),
		Unit:         req.Unit,
		Quantity:     float64(req.Quantity),
		Description:  req.Description,
		Location:     req.Location,
		Image:        req.Image,
	}
	if req.Owner != nil {
		in.Owner = &usecase.OwnerInput{OwnerEmail: req.Owner.OwnerEmail, OwnerName: req.Owner.OwnerName}
	}
	return in
}

// updateCropRequest lists the only fields an owner may change.
type updateCropRequest struct {
	Name         *string     `json:"name"`
	Type         *string     `json:"type"`
	PricePerUnit *flexNumber `json:"pricePerUnit"`
	Unit         *string     `json:"unit"`
	Quantity     *flexNumber `json:"quantity"`
	Description  *string     `json:"description"`
	Location     *string     `json:"location"`
	Image        *string     `json:"image"`
}

func (req updateCropRequest) toPatch() domain.CropPatch {
	return domain.CropPatch{
		Name:         req.Name,
		Type:         req.Type,
		PricePerUnit: req.PricePerUnit.float(),
		Unit:         req.Unit,
		Quantity:     req.Quantity.float(),
		Description:  req.Description,
		Location:     req.Location,
		Image:        req.Image,
	}
}

type createInterestRequest struct {
	Quantity flexNumber `json:"quantity"`
	Message  string     `json:"message"`
	UserName string     `json:"userName"`
}

type decideInterestRequest struct {
	Status string `json:"status"`
}

type createCropResponse struct {
	Message    string `json:"message"`
	InsertedID string `json:"insertedId"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createInterestResponse struct {
	OK       bool        `json:"ok"`
	Interest interestDTO `json:"interest"`
}

type decideInterestResponse struct {
	OK                bool    `json:"ok"`
	Status            string  `json:"status"`
	RemainingQuantity float64 `json:"remainingQuantity"`
}

type imageResponse struct {
	Image string `json:"image"`
}
