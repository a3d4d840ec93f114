package models

import "time"

// Channel is the relational channel record (PostgreSQL)
type Channel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OwnerID   uint      `json:"owner_id" gorm:"index"`
	Name      string    `json:"name" gorm:"size:100"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChannelCompact is the slim projection embedded in delivered notifications
type ChannelCompact struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// ToCompact returns the slim projection of a channel
func (c *Channel) ToCompact() ChannelCompact {
	return ChannelCompact{ID: c.ID, Name: c.Name, Icon: c.Icon}
}
