package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/cache"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
)

type MessagePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewMessagePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.MessageRepository {
	return &MessagePostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (m *MessagePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return m.db
}

// Create stores a new message and invalidates the receiver's unread view
func (m *MessagePostgreSQL) Create(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	db := m.getDB(tx)
	if err := db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	cache.InvalidateMessageCache(ctx, m.cacheManager, message.ReceiverID)

	return nil
}

// GetByID retrieves a message by ID
func (m *MessagePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error) {
	db := m.getDB(tx)
	var message models.Message
	if err := db.WithContext(ctx).First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("message", id)
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &message, nil
}

// GetForUser returns messages where the user is sender or receiver, newest
// first
func (m *MessagePostgreSQL) GetForUser(ctx context.Context, tx *gorm.DB, userID uint, filters repositories.MessageFilters) ([]*models.Message, int64, error) {
	db := m.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID)

	if filters.UnreadOnly {
		query = query.Where("receiver_id = ? AND is_read = ?", userID, false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var messages []*models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get messages for user: %w", err)
	}

	return messages, total, nil
}

// GetUnreadForReceiver returns unread messages addressed to the user
func (m *MessagePostgreSQL) GetUnreadForReceiver(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Message, error) {
	db := m.getDB(tx)
	var messages []*models.Message
	if err := db.WithContext(ctx).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get unread messages: %w", err)
	}
	return messages, nil
}

// MarkReadIfReceiver flips the read flag only where the given user is the
// receiver, returning the affected row count
func (m *MessagePostgreSQL) MarkReadIfReceiver(ctx context.Context, tx *gorm.DB, messageID, receiverID uint) (int64, error) {
	db := m.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND receiver_id = ?", messageID, receiverID).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark message read: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		cache.InvalidateMessageCache(ctx, m.cacheManager, receiverID)
	}

	return result.RowsAffected, nil
}
