package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType enumerates the kinds of user-facing notifications
type NotificationType string

const (
	NotificationNewVideo     NotificationType = "new_video"
	NotificationNewShort     NotificationType = "new_short"
	NotificationNewPost      NotificationType = "new_post"
	NotificationComment      NotificationType = "comment"
	NotificationCommentReply NotificationType = "comment_reply"
	NotificationLike         NotificationType = "like"
	NotificationDislike      NotificationType = "dislike"
	NotificationNewFollower  NotificationType = "new_follower"
	NotificationMention      NotificationType = "mention"
	NotificationSystem       NotificationType = "system"
)

// IsValid reports whether the type is a known user notification kind
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationNewVideo, NotificationNewShort, NotificationNewPost,
		NotificationComment, NotificationCommentReply, NotificationLike,
		NotificationDislike, NotificationNewFollower, NotificationMention,
		NotificationSystem:
		return true
	}
	return false
}

// TargetType identifies what kind of content a notification points at
type TargetType string

const (
	TargetVideo   TargetType = "Video"
	TargetShort   TargetType = "Short"
	TargetPost    TargetType = "Post"
	TargetComment TargetType = "Comment"
)

// IsValid reports whether the target kind is known
func (t TargetType) IsValid() bool {
	switch t {
	case TargetVideo, TargetShort, TargetPost, TargetComment:
		return true
	}
	return false
}

// Priority levels for notification delivery
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether the priority level is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DeliveryStatus tracks how a notification actually reached the recipient.
// Flags are monotonic: once true they are never reset.
type DeliveryStatus struct {
	Socket bool `json:"socket" bson:"socket"`
	Push   bool `json:"push" bson:"push"`
}

// Notification is a durable user notification stored in MongoDB
type Notification struct {
	ID             primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	Recipient      uint                   `json:"recipient" bson:"recipient"`
	Sender         *uint                  `json:"sender,omitempty" bson:"sender,omitempty"`
	Channel        *uint                  `json:"channel,omitempty" bson:"channel,omitempty"`
	Type           NotificationType       `json:"type" bson:"type"`
	Title          string                 `json:"title" bson:"title"`
	Message        string                 `json:"message" bson:"message"`
	TargetType     TargetType             `json:"target_type,omitempty" bson:"target_type,omitempty"`
	TargetID       string                 `json:"target_id,omitempty" bson:"target_id,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	IsRead         bool                   `json:"is_read" bson:"is_read"`
	ReadAt         *time.Time             `json:"read_at,omitempty" bson:"read_at,omitempty"`
	DeliveryStatus DeliveryStatus         `json:"delivery_status" bson:"delivery_status"`
	Priority       Priority               `json:"priority" bson:"priority"`
	IsDeleted      bool                   `json:"-" bson:"is_deleted"`
	CreatedAt      time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at" bson:"updated_at"`

	// Populated for socket delivery and API responses, never persisted
	SenderInfo  *UserCompact    `json:"sender_info,omitempty" bson:"-"`
	ChannelInfo *ChannelCompact `json:"channel_info,omitempty" bson:"-"`
}

// NotificationPayload is the input to the dispatcher's Send
type NotificationPayload struct {
	Recipient  uint
	Sender     *uint
	Channel    *uint
	Type       NotificationType
	Title      string
	Message    string
	TargetType TargetType
	TargetID   string
	Metadata   map[string]interface{}
	Priority   Priority
}

// PushMessage is the reduced payload handed to the push gateway
type PushMessage struct {
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string
}

// NotificationListFilter narrows a notification listing
type NotificationListFilter string

const (
	FilterAll    NotificationListFilter = ""
	FilterRead   NotificationListFilter = "read"
	FilterUnread NotificationListFilter = "unread"
)

// TestNotificationRequest is the body for the development test-send endpoint
type TestNotificationRequest struct {
	Type    string `json:"type" validate:"omitempty,oneof=new_video new_short new_post comment comment_reply like dislike new_follower mention system"`
	Title   string `json:"title" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"omitempty,max=500"`
}
