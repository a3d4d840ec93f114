package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/vidora/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Admin records are kept three times longer than user-facing ones.
const adminNotificationTTL = 90 * 24 * time.Hour

// AdminNotificationRepository defines the interface for admin notification records
type AdminNotificationRepository interface {
	Create(ctx context.Context, n *models.AdminNotification) error
	List(ctx context.Context, page, limit int, filter models.NotificationListFilter) ([]models.AdminNotification, int64, int64, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	SoftDelete(ctx context.Context, id string) error
	SetDeliveryStatus(ctx context.Context, id primitive.ObjectID, socket, push bool) error
	EnsureIndexes(ctx context.Context) error
}

// MongoAdminNotificationRepository implements AdminNotificationRepository for MongoDB
type MongoAdminNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoAdminNotificationRepository creates a new MongoAdminNotificationRepository
func NewMongoAdminNotificationRepository(db *mongo.Database) *MongoAdminNotificationRepository {
	return &MongoAdminNotificationRepository{collection: db.Collection("admin_notifications")}
}

// Create inserts a new admin notification record
func (r *MongoAdminNotificationRepository) Create(ctx context.Context, n *models.AdminNotification) error {
	now := time.Now()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}
	if n.Metadata == nil {
		n.Metadata = map[string]interface{}{}
	}
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// List returns one page of admin notifications, newest first
func (r *MongoAdminNotificationRepository) List(ctx context.Context, page, limit int, filter models.NotificationListFilter) ([]models.AdminNotification, int64, int64, error) {
	query := bson.M{"is_deleted": false}
	switch filter {
	case models.FilterRead:
		query["is_read"] = true
	case models.FilterUnread:
		query["is_read"] = false
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, 0, err
	}

	unread, err := r.UnreadCount(ctx)
	if err != nil {
		return nil, 0, 0, err
	}

	findOptions := options.Find().
		SetSkip(int64(page-1) * int64(limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, 0, err
	}
	defer cursor.Close(ctx)

	notifications := []models.AdminNotification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, 0, err
	}
	return notifications, total, unread, nil
}

// UnreadCount returns the number of unread, non-deleted admin records
func (r *MongoAdminNotificationRepository) UnreadCount(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"is_read": false, "is_deleted": false})
}

// MarkRead marks one admin notification as read (idempotent)
func (r *MongoAdminNotificationRepository) MarkRead(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now(), "updated_at": time.Now()}},
	)
	return err
}

// MarkAllRead marks every unread admin notification as read
func (r *MongoAdminNotificationRepository) MarkAllRead(ctx context.Context) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now(), "updated_at": time.Now()}},
	)
	return err
}

// SoftDelete hides one admin notification from listings
func (r *MongoAdminNotificationRepository) SoftDelete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}},
	)
	return err
}

// SetDeliveryStatus raises delivery flags on an admin record
func (r *MongoAdminNotificationRepository) SetDeliveryStatus(ctx context.Context, id primitive.ObjectID, socket, push bool) error {
	set := bson.M{"updated_at": time.Now()}
	if socket {
		set["delivery_status.socket"] = true
	}
	if push {
		set["delivery_status.push"] = true
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// EnsureIndexes creates the query indexes and the TTL expiry index
func (r *MongoAdminNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(adminNotificationTTL.Seconds())),
		},
	})
	return err
}
