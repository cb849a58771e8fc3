package mongodb

import (
	"fmt"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// cropDocument is the stored shape of a crop. Field names match the documents already in the
// Krishi-Setu collection.
type cropDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Type         string             `bson:"type"`
	PricePerUnit decimal            `bson:"pricePerUnit"`
	Unit         string             `bson:"unit"`
	Quantity     decimal            `bson:"quantity"`
	Description  string             `bson:"description"`
	Location     string             `bson:"location"`
	Image        string             `bson:"image"`
	Owner        ownerDocument      `bson:"owner"`
	Status       string             `bson:"status"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty"`
	Interests    []interestDocument `bson:"interests"`
}

type ownerDocument struct {
	OwnerID    string `bson:"ownerId"`
	OwnerEmail string `bson:"ownerEmail"`
	OwnerName  string `bson:"ownerName"`
}

type interestDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	CropID    string             `bson:"cropId"`
	UserEmail string             `bson:"userEmail"`
	UserName  string             `bson:"userName"`
	Quantity  wholeNumber        `bson:"quantity"`
	Message   string             `bson:"message"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
	DecidedAt *time.Time         `bson:"decidedAt,omitempty"`
}

func fromDomainCrop(c *domain.Crop) (*cropDocument, error) {
	doc := &cropDocument{
		Name:         c.Name,
		Type:         c.Type,
		PricePerUnit: decimal(c.PricePerUnit),
		Unit:         c.Unit,
		Quantity:     decimal(c.Quantity),
		Description:  c.Description,
		Location:     c.Location,
		Image:        c.Image,
		Owner: ownerDocument{
			OwnerID:    c.Owner.UserID,
			OwnerEmail: c.Owner.Email,
			OwnerName:  c.Owner.Name,
		},
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Interests: make([]interestDocument, 0, len(c.Interests)),
	}
	if c.ID != "" {
		id, err := primitive.ObjectIDFromHex(c.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid crop id %q", domain.ErrInvalidInput, c.ID)
		}
		doc.ID = id
	}
	for i := range c.Interests {
		in, err := fromDomainInterest(&c.Interests[i])
		if err != nil {
			return nil, err
		}
		doc.Interests = append(doc.Interests, *in)
	}
	return doc, nil
}

func fromDomainInterest(in *domain.Interest) (*interestDocument, error) {
	id, err := primitive.ObjectIDFromHex(in.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid interest id %q", domain.ErrInvalidInput, in.ID)
	}
	return &interestDocument{
		ID:        id,
		CropID:    in.CropID,
		UserEmail: in.UserEmail,
		UserName:  in.UserName,
		Quantity:  wholeNumber(in.Quantity),
		Message:   in.Message,
		Status:    string(in.Status),
		CreatedAt: in.CreatedAt,
		DecidedAt: in.DecidedAt,
	}, nil
}

func (d *cropDocument) toDomainCrop() *domain.Crop {
	c := &domain.Crop{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Type:         d.Type,
		PricePerUnit: float64(d.PricePerUnit),
		Unit:         d.Unit,
		Quantity:     float64(d.Quantity),
		Description:  d.Description,
		Location:     d.Location,
		Image:        d.Image,
		Owner: domain.Owner{
			UserID: d.Owner.OwnerID,
			Email:  d.Owner.OwnerEmail,
			Name:   d.Owner.OwnerName,
		},
		Status:    domain.CropStatus(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Interests: make([]domain.Interest, 0, len(d.Interests)),
	}
	for _, in := range d.Interests {
		cropID := in.CropID
		if cropID == "" {
			cropID = c.ID
		}
		c.Interests = append(c.Interests, domain.Interest{
			ID:        in.ID.Hex(),
			CropID:    cropID,
			UserEmail: in.UserEmail,
			UserName:  in.UserName,
			Quantity:  int64(in.Quantity),
			Message:   in.Message,
			Status:    domain.InterestStatus(in.Status),
			CreatedAt: in.CreatedAt,
			DecidedAt: in.DecidedAt,
		})
	}
	return c
}
