package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/cache"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager

	// Set when db is a live transaction; cached reads are skipped then.
	inTx bool
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserRepository {
	return newUserPostgreSQL(db, cacheManager, false)
}

func newUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager, inTx bool) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
		inTx:         inTx,
	}
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new user account
func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID with caching. Transactional reads go
// straight to the database so role checks inside a transaction never see a
// stale cache entry.
func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	db := u.getDB(tx)
	fetch := func() (interface{}, error) {
		var dbUser models.User
		if err := db.WithContext(ctx).First(&dbUser, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.NewNotFoundError("user", id)
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return &dbUser, nil
	}

	if tx != nil || u.inTx {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return value.(*models.User), nil
	}

	cacheKey := fmt.Sprintf("id:%d", id)
	var user models.User
	if err := u.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.UserCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByUserName retrieves a user by their login name
func (u *UserPostgreSQL) GetByUserName(ctx context.Context, tx *gorm.DB, userName string) (*models.User, error) {
	db := u.getDB(tx)
	var user models.User
	if err := db.WithContext(ctx).Where("user_name = ?", userName).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("user", 0)
		}
		return nil, fmt.Errorf("failed to get user by name: %w", err)
	}
	return &user, nil
}

// List retrieves users matching the given filters
func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := u.getDB(tx)
	query := db.WithContext(ctx).Model(&models.User{})

	if filters.Role != nil {
		query = query.Where("roles @> ?", fmt.Sprintf(`[%q]`, string(*filters.Role)))
	}
	if filters.Query != "" {
		query = query.Where("user_name ILIKE ?", "%"+filters.Query+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []*models.User
	query = query.Order("user_name ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// Update persists changes to a user and invalidates their cache entry
func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	cache.InvalidateUserCache(ctx, u.cacheManager, user.ID)

	return nil
}

// Delete removes a user account
func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := u.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("user", id)
	}

	cache.InvalidateUserCache(ctx, u.cacheManager, id)

	return nil
}

// ===== ROLE QUERIES =====

// CountAdmins counts users holding the admin role, excluding the given user
func (u *UserPostgreSQL) CountAdmins(ctx context.Context, tx *gorm.DB, excludeUserID uint) (int64, error) {
	db := u.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.User{}).
		Where("roles @> ?", fmt.Sprintf(`[%q]`, string(models.RoleAdmin)))
	if excludeUserID != 0 {
		query = query.Where("id <> ?", excludeUserID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

// HasAuthoredContent reports whether the user still owns questions or answers
func (u *UserPostgreSQL) HasAuthoredContent(ctx context.Context, tx *gorm.DB, userID uint) (bool, error) {
	db := u.getDB(tx)

	var questionCount int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("author_id = ?", userID).
		Count(&questionCount).Error; err != nil {
		return false, fmt.Errorf("failed to count authored questions: %w", err)
	}
	if questionCount > 0 {
		return true, nil
	}

	var answerCount int64
	if err := db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("author_id = ?", userID).
		Count(&answerCount).Error; err != nil {
		return false, fmt.Errorf("failed to count authored answers: %w", err)
	}

	return answerCount > 0, nil
}

// ===== INVITATION CODES =====

// CreateInvitation stores a new invitation code
func (u *UserPostgreSQL) CreateInvitation(ctx context.Context, tx *gorm.DB, invite *models.InvitationCode) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Create(invite).Error; err != nil {
		return fmt.Errorf("failed to create invitation code: %w", err)
	}
	return nil
}

// ConsumeInvitation atomically claims an unused invitation code. The claim is
// a conditional update so concurrent registrations cannot both use one code.
func (u *UserPostgreSQL) ConsumeInvitation(ctx context.Context, tx *gorm.DB, code string, usedBy uint) (*models.InvitationCode, error) {
	db := u.getDB(tx)

	now := time.Now()
	result := db.WithContext(ctx).
		Model(&models.InvitationCode{}).
		Where("code = ? AND used_by IS NULL", code).
		Updates(map[string]interface{}{
			"used_by": usedBy,
			"used_at": now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to consume invitation code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repositories.NewNotFoundError("invitation code", 0)
	}

	var invite models.InvitationCode
	if err := db.WithContext(ctx).Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, fmt.Errorf("failed to load consumed invitation code: %w", err)
	}

	return &invite, nil
}

// ===== ONE-TIME PASSWORDS =====

// CreateOneTimePassword stores a new one-time password entry
func (u *UserPostgreSQL) CreateOneTimePassword(ctx context.Context, tx *gorm.DB, otp *models.OneTimePassword) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Create(otp).Error; err != nil {
		return fmt.Errorf("failed to create one-time password: %w", err)
	}
	return nil
}

// ConsumeOneTimePassword atomically consumes a matching unconsumed code
func (u *UserPostgreSQL) ConsumeOneTimePassword(ctx context.Context, tx *gorm.DB, userID uint, code string) (bool, error) {
	db := u.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.OneTimePassword{}).
		Where("user_id = ? AND code = ? AND consumed = ?", userID, code, false).
		Update("consumed", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to consume one-time password: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
