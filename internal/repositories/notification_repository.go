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

// userNotificationTTL is the retention window for user-facing records.
// Expiry is enforced by MongoDB's TTL monitor, not application code.
const userNotificationTTL = 30 * 24 * time.Hour

// NotificationRepository defines the interface for notification record operations
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, recipient uint, page, limit int, filter models.NotificationListFilter) ([]models.Notification, int64, int64, error)
	UnreadCount(ctx context.Context, recipient uint) (int64, error)
	MarkRead(ctx context.Context, id string, recipient uint) error
	MarkAllRead(ctx context.Context, recipient uint) error
	SoftDelete(ctx context.Context, id string, recipient uint) error
	ClearAll(ctx context.Context, recipient uint) error
	SetDeliveryStatus(ctx context.Context, id primitive.ObjectID, socket, push bool) error
	EnsureIndexes(ctx context.Context) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// Create inserts a new notification record
func (r *MongoNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
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

// List returns one page of a recipient's notifications, newest first,
// together with the total matching count and the recipient's unread count.
// Soft-deleted records are excluded.
func (r *MongoNotificationRepository) List(ctx context.Context, recipient uint, page, limit int, filter models.NotificationListFilter) ([]models.Notification, int64, int64, error) {
	query := bson.M{"recipient": recipient, "is_deleted": false}
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

	unread, err := r.UnreadCount(ctx, recipient)
	if err != nil {
		return nil, 0, 0, err
	}

	skip := int64(page-1) * int64(limit)
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, 0, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, 0, err
	}
	return notifications, total, unread, nil
}

// UnreadCount returns the number of unread, non-deleted records for a recipient
func (r *MongoNotificationRepository) UnreadCount(ctx context.Context, recipient uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"recipient":  recipient,
		"is_read":    false,
		"is_deleted": false,
	})
}

// MarkRead marks one notification as read. Idempotent: read_at is only set
// on the unread -> read transition, a repeat call matches nothing.
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id string, recipient uint) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "recipient": recipient, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now(), "updated_at": time.Now()}},
	)
	return err
}

// MarkAllRead marks every unread notification of a recipient as read
func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, recipient uint) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient": recipient, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now(), "updated_at": time.Now()}},
	)
	return err
}

// SoftDelete hides one notification from listings without removing it
func (r *MongoNotificationRepository) SoftDelete(ctx context.Context, id string, recipient uint) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "recipient": recipient},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}},
	)
	return err
}

// ClearAll soft-deletes every notification of a recipient
func (r *MongoNotificationRepository) ClearAll(ctx context.Context, recipient uint) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient": recipient},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}},
	)
	return err
}

// SetDeliveryStatus raises delivery flags on a record. Flags only ever go
// from false to true, so repeated writes are harmless.
func (r *MongoNotificationRepository) SetDeliveryStatus(ctx context.Context, id primitive.ObjectID, socket, push bool) error {
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
func (r *MongoNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "is_deleted", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "type", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(userNotificationTTL.Seconds())),
		},
	})
	return err
}
