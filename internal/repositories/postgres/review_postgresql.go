package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
)

type ReviewPostgreSQL struct {
	db *gorm.DB
}

func NewReviewPostgreSQL(db *gorm.DB) repositories.ReviewRepository {
	return &ReviewPostgreSQL{db: db}
}

func (r *ReviewPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new review
func (r *ReviewPostgreSQL) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetByID retrieves a review by ID
func (r *ReviewPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Review, error) {
	db := r.getDB(tx)
	var review models.Review
	if err := db.WithContext(ctx).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("review", id)
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// UpdateMatched writes review content only where the full ownership tuple
// still matches. IS NOT DISTINCT FROM keeps null target columns comparable.
func (r *ReviewPostgreSQL) UpdateMatched(ctx context.Context, tx *gorm.DB, review *models.Review) (int64, error) {
	db := r.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ? AND reviewer_id = ?", review.ID, review.ReviewerID).
		Where("question_id IS NOT DISTINCT FROM ?", review.QuestionID).
		Where("answer_id IS NOT DISTINCT FROM ?", review.AnswerID).
		Update("content", review.Content)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update review: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteMatched removes a review only where the full ownership tuple matches
func (r *ReviewPostgreSQL) DeleteMatched(ctx context.Context, tx *gorm.DB, id, reviewerID uint, questionID, answerID *uint) (int64, error) {
	db := r.getDB(tx)
	result := db.WithContext(ctx).
		Where("id = ? AND reviewer_id = ?", id, reviewerID).
		Where("question_id IS NOT DISTINCT FROM ?", questionID).
		Where("answer_id IS NOT DISTINCT FROM ?", answerID).
		Delete(&models.Review{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete review: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Update saves a review without a tuple precondition. Moderation path only.
func (r *ReviewPostgreSQL) Update(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(review).Error; err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

// Delete removes a review without a tuple precondition. Moderation path only.
func (r *ReviewPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Review{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("review", id)
	}
	return nil
}

// ===== SUBJECT QUERIES =====

// GetByQuestion returns reviews attached directly to a question, newest first
func (r *ReviewPostgreSQL) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Review, error) {
	db := r.getDB(tx)
	var reviews []*models.Review
	if err := db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews by question: %w", err)
	}
	return reviews, nil
}

// GetByAnswer returns reviews attached to an answer, newest first
func (r *ReviewPostgreSQL) GetByAnswer(ctx context.Context, tx *gorm.DB, answerID uint) ([]*models.Review, error) {
	db := r.getDB(tx)
	var reviews []*models.Review
	if err := db.WithContext(ctx).
		Where("answer_id = ?", answerID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews by answer: %w", err)
	}
	return reviews, nil
}

// GetByReviewer returns everything a reviewer has written, newest first
func (r *ReviewPostgreSQL) GetByReviewer(ctx context.Context, tx *gorm.DB, reviewerID uint) ([]*models.Review, error) {
	db := r.getDB(tx)
	var reviews []*models.Review
	if err := db.WithContext(ctx).
		Where("reviewer_id = ?", reviewerID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews by reviewer: %w", err)
	}
	return reviews, nil
}

// CountBySubject counts a reviewer's reviews on one subject
func (r *ReviewPostgreSQL) CountBySubject(ctx context.Context, tx *gorm.DB, reviewerID uint, questionID, answerID *uint) (int64, error) {
	db := r.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("reviewer_id = ?", reviewerID).
		Where("question_id IS NOT DISTINCT FROM ?", questionID).
		Where("answer_id IS NOT DISTINCT FROM ?", answerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews by subject: %w", err)
	}
	return count, nil
}

// ===== CASCADE HELPERS =====

// DeleteByQuestion removes reviews attached directly to a question
func (r *ReviewPostgreSQL) DeleteByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Delete(&models.Review{}).Error; err != nil {
		return fmt.Errorf("failed to delete reviews by question: %w", err)
	}
	return nil
}

// DeleteByAnswers removes reviews attached to any of the given answers
func (r *ReviewPostgreSQL) DeleteByAnswers(ctx context.Context, tx *gorm.DB, answerIDs []uint) error {
	if len(answerIDs) == 0 {
		return nil
	}
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Where("answer_id IN ?", answerIDs).
		Delete(&models.Review{}).Error; err != nil {
		return fmt.Errorf("failed to delete reviews by answers: %w", err)
	}
	return nil
}

// DeleteByReviewer removes everything a reviewer has written
func (r *ReviewPostgreSQL) DeleteByReviewer(ctx context.Context, tx *gorm.DB, reviewerID uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Where("reviewer_id = ?", reviewerID).
		Delete(&models.Review{}).Error; err != nil {
		return fmt.Errorf("failed to delete reviews by reviewer: %w", err)
	}
	return nil
}
