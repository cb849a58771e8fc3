package usecase

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"go.uber.org/zap"
)

// OwnerInput is the owner block of a new listing as sent by the client.
type OwnerInput struct {
	OwnerEmail string
	OwnerName  string
}

// CreateCropInput holds the fields of a new listing.
type CreateCropInput struct {
	Name         string
	Type         string
	PricePerUnit float64
	Unit         string
	Quantity     float64
	Description  string
	Location     string
	Image        string
	Owner        *OwnerInput
}

func (in CreateCropInput) validate() error {
	required := []struct {
		field string
		ok    bool
	}{
		{"name", strings.TrimSpace(in.Name) != ""},
		{"type", strings.TrimSpace(in.Type) != ""},
		{"pricePerUnit", in.PricePerUnit != 0},
		{"unit", strings.TrimSpace(in.Unit) != ""},
		{"quantity", in.Quantity != 0},
		{"description", strings.TrimSpace(in.Description) != ""},
		{"location", strings.TrimSpace(in.Location) != ""},
		{"image", strings.TrimSpace(in.Image) != ""},
		{"owner", in.Owner != nil},
	}
	for _, r := range required {
		if !r.ok {
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, r.field)
		}
	}
	if !(in.PricePerUnit > 0) || math.IsInf(in.PricePerUnit, 0) {
		return fmt.Errorf("%w: pricePerUnit must be positive", domain.ErrInvalidInput)
	}
	if !(in.Quantity > 0) || math.IsInf(in.Quantity, 0) {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// CreateCrop validates and stores a new listing owned by p.
func (uc *CropUsecase) CreateCrop(ctx context.Context, p *domain.Principal, in CreateCropInput) (*domain.Crop, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Owner.OwnerEmail != "" && in.Owner.OwnerEmail != p.Email {
		uc.logger.Warn("Owner email does not match caller",
			zap.String("owner_email", in.Owner.OwnerEmail), zap.String("caller", p.Email))
		return nil, fmt.Errorf("%w: owner email must match the signed-in user", domain.ErrForbidden)
	}
	ownerName := in.Owner.OwnerName
	if ownerName == "" {
		ownerName = p.Name
	}

	now := uc.now()
	crop := &domain.Crop{
		Name:         in.Name,
		Type:         in.Type,
		PricePerUnit: in.PricePerUnit,
		Unit:         in.Unit,
		Quantity:     in.Quantity,
		Description:  in.Description,
		Location:     in.Location,
		Image:        in.Image,
		Owner:        domain.Owner{UserID: p.UserID, Email: p.Email, Name: ownerName},
		Status:       domain.CropStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		Interests:    []domain.Interest{},
	}
	if err := uc.repo.Create(ctx, crop); err != nil {
		uc.logger.Error("Failed to save crop", zap.Error(err))
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CropsCreatedTotal.Inc()
	}
	uc.publish(ctx, domain.SubjectCropCreated, map[string]interface{}{
		"cropId":     crop.ID,
		"ownerEmail": crop.Owner.Email,
		"name":       crop.Name,
		"quantity":   crop.Quantity,
	})
	uc.logger.Info("Crop created", zap.String("crop_id", crop.ID), zap.String("owner", crop.Owner.Email))
	return crop, nil
}

// ListCrops returns the newest listings.
func (uc *CropUsecase) ListCrops(ctx context.Context) ([]*domain.Crop, error) {
	return uc.repo.Find(ctx, domain.CropFilter{Limit: DefaultListLimit})
}

func (uc *CropUsecase) GetCrop(ctx context.Context, id string) (*domain.Crop, error) {
	return uc.repo.FindByID(ctx, id)
}

// UpdateCrop applies the whitelisted patch after the ownership check.
func (uc *CropUsecase) UpdateCrop(ctx context.Context, p *domain.Principal, id string, patch domain.CropPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	crop, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := EnsureOwner(p, crop); err != nil {
		uc.logger.Warn("Update forbidden", zap.String("crop_id", id), zap.String("caller", p.Email))
		return err
	}
	if err := uc.repo.Update(ctx, id, patch); err != nil {
		return err
	}
	uc.publish(ctx, domain.SubjectCropUpdated, map[string]interface{}{"cropId": id})
	return nil
}

// DeleteCrop removes the listing together with its interests.
func (uc *CropUsecase) DeleteCrop(ctx context.Context, p *domain.Principal, id string) error {
	crop, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := EnsureOwner(p, crop); err != nil {
		uc.logger.Warn("Delete forbidden", zap.String("crop_id", id), zap.String("caller", p.Email))
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.CropsDeletedTotal.Inc()
	}
	uc.publish(ctx, domain.SubjectCropDeleted, map[string]interface{}{
		"cropId":         id,
		"interestsCount": len(crop.Interests),
	})
	uc.logger.Info("Crop deleted", zap.String("crop_id", id))
	return nil
}

// UploadCropImage stores the image and points the listing at it.
func (uc *CropUsecase) UploadCropImage(ctx context.Context, p *domain.Principal, id, fileName, contentType string, data io.Reader, size int64) (string, error) {
	if uc.storage == nil {
		return "", fmt.Errorf("%w: image storage is not configured", domain.ErrInvalidOperation)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: file must be an image", domain.ErrInvalidInput)
	}
	crop, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := EnsureOwner(p, crop); err != nil {
		return "", err
	}

	url, err := uc.storage.Upload(ctx, fileName, contentType, data, size)
	if err != nil {
		uc.logger.Error("Image upload failed", zap.String("crop_id", id), zap.Error(err))
		return "", fmt.Errorf("%w: image upload failed", domain.ErrUnavailable)
	}
	if err := uc.repo.Update(ctx, id, domain.CropPatch{Image: &url}); err != nil {
		return "", err
	}
	uc.publish(ctx, domain.SubjectCropUpdated, map[string]interface{}{"cropId": id, "image": url})
	return url, nil
}
