package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/cache"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
)

// DefaultTxTimeout bounds every transaction unless configured otherwise.
const DefaultTxTimeout = 30 * time.Second

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager
	txTimeout    time.Duration

	// Repository instances
	user            repositories.UserRepository
	question        repositories.QuestionRepository
	answer          repositories.AnswerRepository
	reviewer        repositories.ReviewerRepository
	review          repositories.ReviewRepository
	reviewerRequest repositories.ReviewerRequestRepository
	message         repositories.MessageRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client

	// TxTimeout bounds each transaction; zero selects DefaultTxTimeout.
	TxTimeout time.Duration
}

// NewPostgreSQLRepository creates a new repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)
	if config.TxTimeout == 0 {
		config.TxTimeout = DefaultTxTimeout
	}
	return newPostgreSQLRepository(config.DB, config.RedisClient, cacheManager, config.TxTimeout, false)
}

func newPostgreSQLRepository(db *gorm.DB, redisClient *redis.Client, cacheManager *cache.CacheManager, txTimeout time.Duration, inTx bool) *PostgreSQLRepository {
	repo := &PostgreSQLRepository{
		db:           db,
		redisClient:  redisClient,
		cacheManager: cacheManager,
		txTimeout:    txTimeout,
	}

	repo.user = newUserPostgreSQL(db, cacheManager, inTx)
	repo.question = newQuestionPostgreSQL(db, cacheManager, inTx)
	repo.answer = NewAnswerPostgreSQL(db, cacheManager)
	repo.reviewer = NewReviewerPostgreSQL(db)
	repo.review = NewReviewPostgreSQL(db)
	repo.reviewerRequest = NewReviewerRequestPostgreSQL(db)
	repo.message = NewMessagePostgreSQL(db, cacheManager)

	return repo
}

// User returns the user repository
func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

// Question returns the question repository
func (r *PostgreSQLRepository) Question() repositories.QuestionRepository {
	return r.question
}

// Answer returns the answer repository
func (r *PostgreSQLRepository) Answer() repositories.AnswerRepository {
	return r.answer
}

// Reviewer returns the reviewer repository
func (r *PostgreSQLRepository) Reviewer() repositories.ReviewerRepository {
	return r.reviewer
}

// Review returns the review repository
func (r *PostgreSQLRepository) Review() repositories.ReviewRepository {
	return r.review
}

// ReviewerRequest returns the reviewer request repository
func (r *PostgreSQLRepository) ReviewerRequest() repositories.ReviewerRequestRepository {
	return r.reviewerRequest
}

// Message returns the message repository
func (r *PostgreSQLRepository) Message() repositories.MessageRepository {
	return r.message
}

// WithTransaction executes a function within a database transaction. The
// transaction runs under the configured timeout so a stuck statement
// surfaces as a storage failure instead of holding row locks.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	ctx, cancel := withTxTimeout(ctx, r.txTimeout)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Sub-repositories bound to the transaction share the caches so
		// invalidations still reach the live helpers; their reads skip the
		// cache entirely.
		txRepo := newPostgreSQLRepository(tx, r.redisClient, r.cacheManager, r.txTimeout, true)
		return fn(txRepo)
	})
}

func withTxTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
