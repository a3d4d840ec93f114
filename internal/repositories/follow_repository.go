package repositories

import (
	"github.com/vidora/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the audience-resolution interface for fan-out
type FollowRepository interface {
	FollowerIDsWithNotifications(channelID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// FollowerIDsWithNotifications returns the IDs of every follower of a
// channel who keeps notifications enabled
func (r *PostgresFollowRepository) FollowerIDsWithNotifications(channelID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).
		Where("channel_id = ? AND notifications_enabled = ?", channelID, true).
		Pluck("follower_id", &ids).Error
	return ids, err
}
