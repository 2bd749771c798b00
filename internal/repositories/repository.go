package repositories

import "context"

// Repository aggregates the per-table repositories behind one facade.
type Repository interface {
	// Identity domain
	User() UserRepository

	// Content domain
	Question() QuestionRepository
	Answer() AnswerRepository

	// Review domain
	Reviewer() ReviewerRepository
	Review() ReviewRepository

	// Workflow domain
	ReviewerRequest() ReviewerRequestRepository

	// Messaging domain
	Message() MessageRepository

	// WithTransaction runs fn against a repository bound to a single
	// database transaction; fn returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
