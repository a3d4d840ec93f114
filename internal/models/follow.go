package models

import "time"

// Follow represents a user following a channel (PostgreSQL)
type Follow struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	FollowerID           uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_channel"`
	ChannelID            uint      `json:"channel_id" gorm:"index;uniqueIndex:idx_follower_channel"`
	NotificationsEnabled bool      `json:"notifications_enabled" gorm:"default:true;index"`
	CreatedAt            time.Time `json:"created_at"`
}
