package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminNotificationType enumerates admin-facing notification kinds.
// Disjoint from the user-facing enumeration.
type AdminNotificationType string

const (
	AdminNotificationNewUser    AdminNotificationType = "new_user"
	AdminNotificationNewChannel AdminNotificationType = "new_channel"
	AdminNotificationNewReport  AdminNotificationType = "new_report"
)

// IsValid reports whether the type is a known admin notification kind
func (t AdminNotificationType) IsValid() bool {
	switch t {
	case AdminNotificationNewUser, AdminNotificationNewChannel, AdminNotificationNewReport:
		return true
	}
	return false
}

// AdminNotification is a durable admin-dashboard notification stored in
// MongoDB. There is a single admin stream, so no recipient field.
type AdminNotification struct {
	ID             primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	Type           AdminNotificationType  `json:"type" bson:"type"`
	Title          string                 `json:"title" bson:"title"`
	Message        string                 `json:"message" bson:"message"`
	Metadata       map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	IsRead         bool                   `json:"is_read" bson:"is_read"`
	ReadAt         *time.Time             `json:"read_at,omitempty" bson:"read_at,omitempty"`
	DeliveryStatus DeliveryStatus         `json:"delivery_status" bson:"delivery_status"`
	Priority       Priority               `json:"priority" bson:"priority"`
	IsDeleted      bool                   `json:"-" bson:"is_deleted"`
	CreatedAt      time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at" bson:"updated_at"`
}

// AdminNotificationPayload is the input to the dispatcher's SendAdmin
type AdminNotificationPayload struct {
	Type     AdminNotificationType
	Title    string
	Message  string
	Metadata map[string]interface{}
	Priority Priority
}
