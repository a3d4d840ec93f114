package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeviceType identifies the platform a push token belongs to
type DeviceType string

const (
	DeviceIOS     DeviceType = "ios"
	DeviceAndroid DeviceType = "android"
	DeviceWeb     DeviceType = "web"
)

// UserToken maps one (user, device) pairing to an FCM push token (MongoDB).
// A token value is unique across all users; (user, device_id) is unique too.
type UserToken struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	User       uint               `json:"user" bson:"user"`
	FCMToken   string             `json:"fcm_token" bson:"fcm_token"`
	DeviceType DeviceType         `json:"device_type" bson:"device_type"`
	DeviceID   string             `json:"device_id" bson:"device_id"`
	IsActive   bool               `json:"is_active" bson:"is_active"`
	LastUsedAt time.Time          `json:"last_used_at" bson:"last_used_at"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// RegisterTokenRequest defines the body for registering a push token
type RegisterTokenRequest struct {
	FCMToken   string `json:"fcmToken" validate:"required"`
	DeviceType string `json:"deviceType" validate:"required,oneof=ios android web"`
	DeviceID   string `json:"deviceId" validate:"required"`
}

// UnregisterTokenRequest defines the body for removing a push token
type UnregisterTokenRequest struct {
	DeviceID string `json:"deviceId" validate:"required"`
}
