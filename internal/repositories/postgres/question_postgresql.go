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

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager

	// Set when db is a live transaction; cached reads are skipped then.
	inTx bool
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return newQuestionPostgreSQL(db, cacheManager, false)
}

func newQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager, inTx bool) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
		inTx:         inTx,
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new question and invalidates list caches
func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "list:*")
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "search:*")

	return nil
}

// GetByID retrieves a question by ID with caching. Transactional reads go
// straight to the database so a read-modify-write cycle always sees its
// own writes, never a stale cache entry.
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.getDB(tx)
	fetch := func() (interface{}, error) {
		var dbQuestion models.Question
		if err := db.WithContext(ctx).First(&dbQuestion, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.NewNotFoundError("question", id)
			}
			return nil, fmt.Errorf("failed to get question: %w", err)
		}
		return &dbQuestion, nil
	}

	if tx != nil || q.inTx {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return value.(*models.Question), nil
	}

	cacheKey := fmt.Sprintf("id:%d", id)
	var question models.Question
	if err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &question, cache.QuestionCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}

	return &question, nil
}

// Update updates a question
func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID)

	return nil
}

// Delete removes a question row. Cascades over answers and reviews are the
// service's responsibility inside one transaction.
func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("question", id)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, id)

	return nil
}

// ===== LIST AND SEARCH =====

// List retrieves questions matching the given filters
func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := q.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Question{})
	query = q.helpers.ApplyQuestionFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	var questions []*models.Question
	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

// Search performs a case-insensitive substring match over title or content
func (q *QuestionPostgreSQL) Search(ctx context.Context, tx *gorm.DB, term string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := q.getDB(tx)
	pattern := "%" + term + "%"
	query := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	query = q.helpers.ApplyQuestionFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	var questions []*models.Question
	query = q.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search questions: %w", err)
	}

	return questions, total, nil
}

// ===== RESOLUTION STATE =====

// SetResolution updates the resolution state in a single statement
func (q *QuestionPostgreSQL) SetResolution(ctx context.Context, tx *gorm.DB, questionID uint, answerID *uint, resolved bool) error {
	db := q.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", questionID).
		Updates(map[string]interface{}{
			"resolved":           resolved,
			"resolved_answer_id": answerID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set question resolution: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("question", questionID)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, questionID)

	return nil
}

// ClearResolutionByAnswer unresolves every question whose accepted answer is
// the given one
func (q *QuestionPostgreSQL) ClearResolutionByAnswer(ctx context.Context, tx *gorm.DB, answerID uint) error {
	db := q.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("resolved_answer_id = ?", answerID).
		Updates(map[string]interface{}{
			"resolved":           false,
			"resolved_answer_id": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to clear resolution by answer: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "*")
	}

	return nil
}
