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

type AnswerPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAnswerPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AnswerRepository {
	return &AnswerPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (a *AnswerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Create creates a new answer under its question
func (a *AnswerPostgreSQL) Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(answer).Error; err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, a.cacheManager, answer.QuestionID)

	return nil
}

// GetByID retrieves an answer by ID
func (a *AnswerPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	db := a.getDB(tx)
	var answer models.Answer
	if err := db.WithContext(ctx).First(&answer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("answer", id)
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return &answer, nil
}

// Update updates an answer
func (a *AnswerPostgreSQL) Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Save(answer).Error; err != nil {
		return fmt.Errorf("failed to update answer: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, a.cacheManager, answer.QuestionID)

	return nil
}

// Delete removes a single answer row
func (a *AnswerPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := a.getDB(tx)

	var answer models.Answer
	if err := db.WithContext(ctx).Select("id, question_id").First(&answer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.NewNotFoundError("answer", id)
		}
		return fmt.Errorf("failed to get answer before delete: %w", err)
	}

	if err := db.WithContext(ctx).Delete(&models.Answer{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete answer: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, a.cacheManager, answer.QuestionID)

	return nil
}

// GetByQuestion returns the question's answers oldest first
func (a *AnswerPostgreSQL) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Answer, error) {
	db := a.getDB(tx)
	var answers []*models.Answer
	if err := db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC, id ASC").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to get answers by question: %w", err)
	}
	return answers, nil
}

// GetIDsByQuestion returns the IDs of a question's answers. Used by delete
// cascades to clear dependent reviews.
func (a *AnswerPostgreSQL) GetIDsByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]uint, error) {
	db := a.getDB(tx)
	var ids []uint
	if err := db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("question_id = ?", questionID).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get answer IDs by question: %w", err)
	}
	return ids, nil
}

// DeleteByQuestion removes all answers under a question
func (a *AnswerPostgreSQL) DeleteByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Delete(&models.Answer{}).Error; err != nil {
		return fmt.Errorf("failed to delete answers by question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, a.cacheManager, questionID)

	return nil
}

// SetClarification flips the needs-clarification flag on an answer
func (a *AnswerPostgreSQL) SetClarification(ctx context.Context, tx *gorm.DB, id uint, flag bool) error {
	db := a.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("id = ?", id).
		Update("needs_clarification", flag)
	if result.Error != nil {
		return fmt.Errorf("failed to set clarification flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("answer", id)
	}
	return nil
}
