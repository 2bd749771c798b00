package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
)

type ReviewerPostgreSQL struct {
	db *gorm.DB
}

func NewReviewerPostgreSQL(db *gorm.DB) repositories.ReviewerRepository {
	return &ReviewerPostgreSQL{db: db}
}

func (r *ReviewerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create creates a reviewer profile for a user
func (r *ReviewerPostgreSQL) Create(ctx context.Context, tx *gorm.DB, reviewer *models.Reviewer) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(reviewer).Error; err != nil {
		return fmt.Errorf("failed to create reviewer: %w", err)
	}
	return nil
}

// GetByID retrieves a reviewer profile by ID
func (r *ReviewerPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reviewer, error) {
	db := r.getDB(tx)
	var reviewer models.Reviewer
	if err := db.WithContext(ctx).First(&reviewer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("reviewer", id)
		}
		return nil, fmt.Errorf("failed to get reviewer: %w", err)
	}
	return &reviewer, nil
}

// GetByUser retrieves the reviewer profile owned by a user
func (r *ReviewerPostgreSQL) GetByUser(ctx context.Context, tx *gorm.DB, userID uint) (*models.Reviewer, error) {
	db := r.getDB(tx)
	var reviewer models.Reviewer
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&reviewer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("reviewer", 0)
		}
		return nil, fmt.Errorf("failed to get reviewer by user: %w", err)
	}
	return &reviewer, nil
}

// UpdateWeight sets the reviewer's scoring weight
func (r *ReviewerPostgreSQL) UpdateWeight(ctx context.Context, tx *gorm.DB, id uint, weight float64) error {
	db := r.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Reviewer{}).
		Where("id = ?", id).
		Update("weight", weight)
	if result.Error != nil {
		return fmt.Errorf("failed to update reviewer weight: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("reviewer", id)
	}
	return nil
}

// Delete removes a reviewer profile
func (r *ReviewerPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Reviewer{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete reviewer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("reviewer", id)
	}
	return nil
}
