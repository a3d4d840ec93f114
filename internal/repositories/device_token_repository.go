package repositories

import (
	"context"
	"time"

	"github.com/vidora/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DeviceTokenRepository defines the interface for push token operations
type DeviceTokenRepository interface {
	Upsert(ctx context.Context, userID uint, fcmToken string, deviceType models.DeviceType, deviceID string) error
	Remove(ctx context.Context, userID uint, deviceID string) error
	Deactivate(ctx context.Context, tokens []string) error
	ActiveForUser(ctx context.Context, userID uint) ([]models.UserToken, error)
	EnsureIndexes(ctx context.Context) error
}

// MongoDeviceTokenRepository implements DeviceTokenRepository for MongoDB
type MongoDeviceTokenRepository struct {
	collection *mongo.Collection
}

// NewMongoDeviceTokenRepository creates a new MongoDeviceTokenRepository
func NewMongoDeviceTokenRepository(db *mongo.Database) *MongoDeviceTokenRepository {
	return &MongoDeviceTokenRepository{collection: db.Collection("user_tokens")}
}

// Upsert registers or refreshes the token for a (user, device) pairing and
// reactivates it. Token values are globally unique: if another pairing
// still holds this token (app reinstall under a different account), that
// stale registration is removed first so ownership moves to the caller.
func (r *MongoDeviceTokenRepository) Upsert(ctx context.Context, userID uint, fcmToken string, deviceType models.DeviceType, deviceID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{
		"fcm_token": fcmToken,
		"$or": []bson.M{
			{"user": bson.M{"$ne": userID}},
			{"device_id": bson.M{"$ne": deviceID}},
		},
	})
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"user": userID, "device_id": deviceID},
		bson.M{
			"$set": bson.M{
				"fcm_token":    fcmToken,
				"device_type":  deviceType,
				"is_active":    true,
				"last_used_at": now,
				"updated_at":   now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// Remove deletes the token registration for a (user, device) pairing
func (r *MongoDeviceTokenRepository) Remove(ctx context.Context, userID uint, deviceID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"user": userID, "device_id": deviceID})
	return err
}

// Deactivate bulk-marks token values inactive. Used by the push gateway
// when the provider reports tokens as invalid.
func (r *MongoDeviceTokenRepository) Deactivate(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"fcm_token": bson.M{"$in": tokens}},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	return err
}

// ActiveForUser returns all active token registrations for a user
func (r *MongoDeviceTokenRepository) ActiveForUser(ctx context.Context, userID uint) ([]models.UserToken, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user": userID, "is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tokens := []models.UserToken{}
	if err = cursor.All(ctx, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// EnsureIndexes creates the uniqueness and lookup indexes
func (r *MongoDeviceTokenRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "device_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "fcm_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "is_active", Value: 1}}},
	})
	return err
}
