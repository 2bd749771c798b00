package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
)

type ReviewerRequestPostgreSQL struct {
	db *gorm.DB
}

func NewReviewerRequestPostgreSQL(db *gorm.DB) repositories.ReviewerRequestRepository {
	return &ReviewerRequestPostgreSQL{db: db}
}

func (r *ReviewerRequestPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create submits a new promotion request
func (r *ReviewerRequestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, request *models.ReviewerRequest) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(request).Error; err != nil {
		return fmt.Errorf("failed to create reviewer request: %w", err)
	}
	return nil
}

// GetByID retrieves a promotion request by ID
func (r *ReviewerRequestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ReviewerRequest, error) {
	db := r.getDB(tx)
	var request models.ReviewerRequest
	if err := db.WithContext(ctx).First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("reviewer request", id)
		}
		return nil, fmt.Errorf("failed to get reviewer request: %w", err)
	}
	return &request, nil
}

// UpdateStatusIfPending performs the pending-to-terminal transition as a
// compare-and-set. A racing decider observes zero affected rows.
func (r *ReviewerRequestPostgreSQL) UpdateStatusIfPending(ctx context.Context, tx *gorm.DB, id uint, status models.RequestStatus, comments *string, reviewedBy uint) (int64, error) {
	db := r.getDB(tx)
	now := time.Now()
	result := db.WithContext(ctx).
		Model(&models.ReviewerRequest{}).
		Where("id = ? AND status = ?", id, models.RequestPending).
		Updates(map[string]interface{}{
			"status":              status,
			"instructor_comments": comments,
			"reviewed_by":         reviewedBy,
			"reviewed_at":         now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update reviewer request status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListPending returns all pending requests, oldest first so instructors work
// the queue in submission order
func (r *ReviewerRequestPostgreSQL) ListPending(ctx context.Context, tx *gorm.DB) ([]*models.ReviewerRequest, error) {
	db := r.getDB(tx)
	var requests []*models.ReviewerRequest
	if err := db.WithContext(ctx).
		Where("status = ?", models.RequestPending).
		Order("requested_at ASC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}

// GetByUser returns a user's request history, newest first
func (r *ReviewerRequestPostgreSQL) GetByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.ReviewerRequest, error) {
	db := r.getDB(tx)
	var requests []*models.ReviewerRequest
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("requested_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to get requests by user: %w", err)
	}
	return requests, nil
}

// CountPendingByUser counts a user's open requests
func (r *ReviewerRequestPostgreSQL) CountPendingByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.ReviewerRequest{}).
		Where("user_id = ? AND status = ?", userID, models.RequestPending).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return count, nil
}
