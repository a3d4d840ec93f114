package repositories

import (
	"github.com/vidora/backend/internal/models"
	"gorm.io/gorm"
)

// ChannelRepository defines the lookup interface for channels
type ChannelRepository interface {
	GetChannelByID(id uint) (*models.Channel, error)
}

// PostgresChannelRepository implements ChannelRepository for PostgreSQL
type PostgresChannelRepository struct {
	db *gorm.DB
}

// NewPostgresChannelRepository creates a new PostgresChannelRepository
func NewPostgresChannelRepository(db *gorm.DB) *PostgresChannelRepository {
	return &PostgresChannelRepository{db: db}
}

// GetChannelByID retrieves a channel by ID from PostgreSQL
func (r *PostgresChannelRepository) GetChannelByID(id uint) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.First(&channel, id).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}
