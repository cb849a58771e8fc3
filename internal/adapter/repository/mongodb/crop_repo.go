package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const cropCollectionName = "crops"

// CropRepository implements domain.CropRepository on a MongoDB collection. Interests are
// embedded in their crop, so every interest mutation is a single-document update.
type CropRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
	logger     *logger.Logger
}

// NewCropRepository ensures the collection's indexes and returns the repository.
// timeout bounds every call; zero means the caller's context alone decides.
func NewCropRepository(db *mongo.Database, timeout time.Duration, log *logger.Logger) (*CropRepository, error) {
	collection := db.Collection(cropCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "owner.ownerEmail", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "interests.userEmail", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Indexes may already exist or be managed out of band.
		log.Error("Failed to create indexes for crops collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for crops collection")
	}

	return &CropRepository{
		collection: collection,
		timeout:    timeout,
		logger:     log.Named("CropRepository"),
	}, nil
}

func (r *CropRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// wrapErr maps driver failures onto domain errors.
func wrapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrRepository, op, err)
}

// Create inserts a new crop and sets its ID.
func (r *CropRepository) Create(ctx context.Context, crop *domain.Crop) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc, err := fromDomainCrop(crop)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert crop into DB", zap.Error(err))
		return wrapErr("insert crop", err)
	}
	crop.ID = doc.ID.Hex()
	if crop.Interests == nil {
		crop.Interests = []domain.Interest{}
	}
	r.logger.Debug("Crop created in DB", zap.String("crop_id", crop.ID))
	return nil
}

// FindByID returns domain.ErrCropNotFound for unknown or malformed ids.
func (r *CropRepository) FindByID(ctx context.Context, id string) (*domain.Crop, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCropNotFound
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc cropDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCropNotFound
		}
		r.logger.Error("Failed to get crop by ID from DB", zap.Error(err), zap.String("crop_id", id))
		return nil, wrapErr("find crop", err)
	}
	return doc.toDomainCrop(), nil
}

// Find returns crops matching the filter, newest first.
func (r *CropRepository) Find(ctx context.Context, filter domain.CropFilter) ([]*domain.Crop, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := bson.M{}
	if filter.OwnerEmail != "" {
		query["owner.ownerEmail"] = filter.OwnerEmail
	}
	if filter.InterestUserEmail != "" {
		query["interests.userEmail"] = filter.InterestUserEmail
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		findOptions.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		r.logger.Error("Failed to find crops", zap.Error(err), zap.Any("filter", filter))
		return nil, wrapErr("find crops", err)
	}
	defer cursor.Close(ctx)

	crops := make([]*domain.Crop, 0)
	for cursor.Next(ctx) {
		var doc cropDocument
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Warn("Skipping undecodable crop document",
				zap.String("crop_id", cursor.Current.Lookup("_id").String()), zap.Error(err))
			continue
		}
		crops = append(crops, doc.toDomainCrop())
	}
	if err := cursor.Err(); err != nil {
		r.logger.Error("Failed to iterate crops", zap.Error(err))
		return nil, wrapErr("decode crops", err)
	}
	return crops, nil
}

// Update sets only the patched fields and updatedAt.
func (r *CropRepository) Update(ctx context.Context, id string, patch domain.CropPatch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrCropNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.PricePerUnit != nil {
		set["pricePerUnit"] = *patch.PricePerUnit
	}
	if patch.Unit != nil {
		set["unit"] = *patch.Unit
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		r.logger.Error("Failed to update crop in DB", zap.Error(err), zap.String("crop_id", id))
		return wrapErr("update crop", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrCropNotFound
	}
	return nil
}

// Delete removes the crop document and with it every embedded interest.
func (r *CropRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrCropNotFound
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete crop from DB", zap.Error(err), zap.String("crop_id", id))
		return wrapErr("delete crop", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrCropNotFound
	}
	return nil
}

// AppendInterest pushes the interest only if no interest from the same email exists.
func (r *CropRepository) AppendInterest(ctx context.Context, cropID string, interest *domain.Interest) error {
	oid, err := primitive.ObjectIDFromHex(cropID)
	if err != nil {
		return domain.ErrConflict
	}
	doc, err := fromDomainInterest(interest)
	if err != nil {
		return err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"_id":                 oid,
		"interests.userEmail": bson.M{"$ne": interest.UserEmail},
	}
	update := bson.M{"$push": bson.M{"interests": doc}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to append interest", zap.Error(err), zap.String("crop_id", cropID))
		return wrapErr("append interest", err)
	}
	if result.ModifiedCount == 0 {
		r.logger.Warn("Interest append matched nothing",
			zap.String("crop_id", cropID), zap.String("user_email", interest.UserEmail))
		return domain.ErrConflict
	}
	return nil
}

// DecideInterest sets the status of one pending interest, and for acceptances the crop quantity,
// in a single conditional update.
func (r *CropRepository) DecideInterest(ctx context.Context, d domain.InterestDecision) error {
	cropOID, err := primitive.ObjectIDFromHex(d.CropID)
	if err != nil {
		return domain.ErrConflict
	}
	interestOID, err := primitive.ObjectIDFromHex(d.InterestID)
	if err != nil {
		return domain.ErrConflict
	}

	filter := bson.M{
		"_id": cropOID,
		"interests": bson.M{"$elemMatch": bson.M{
			"_id":    interestOID,
			"status": string(domain.InterestPending),
		}},
	}
	set := bson.M{
		"interests.$[elem].status":    string(d.Status),
		"interests.$[elem].decidedAt": d.DecidedAt,
		"updatedAt":                   time.Now().UTC(),
	}
	if d.NewQuantity != nil {
		filter["quantity"] = quantityEquals(d.ExpectedQuantity)
		set["quantity"] = *d.NewQuantity
	}

	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"elem._id": interestOID}},
	})

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set}, opts)
	if err != nil {
		r.logger.Error("Failed to decide interest", zap.Error(err),
			zap.String("crop_id", d.CropID), zap.String("interest_id", d.InterestID))
		return wrapErr("decide interest", err)
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("Interest decision matched nothing",
			zap.String("crop_id", d.CropID), zap.String("interest_id", d.InterestID))
		return domain.ErrConflict
	}
	return nil
}

func (r *CropRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.collection.Database().Client().Ping(ctx, nil); err != nil {
		return wrapErr("ping", err)
	}
	return nil
}
