package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role   *models.Role `json:"role"`
	Query  string       `json:"query"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

type QuestionFilters struct {
	AuthorID  *uint  `json:"author_id"`
	Resolved  *bool  `json:"resolved"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "created_at", "title"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

type MessageFilters struct {
	UnreadOnly bool `json:"unread_only"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
}

type RequestFilters struct {
	Status *models.RequestStatus `json:"status"`
	UserID *uint                 `json:"user_id"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// ===== SUB-REPOSITORY INTERFACES =====
//
// Every method accepts an optional tx; passing nil uses the repository's own
// connection. WithTransaction on the facade hands sub-repositories already
// bound to the transaction, so services normally pass nil.

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUserName(ctx context.Context, tx *gorm.DB, userName string) (*models.User, error)
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// CountAdmins counts users holding the admin role, excluding the given
	// user id (pass 0 to exclude nobody). Backs the last-admin guard.
	CountAdmins(ctx context.Context, tx *gorm.DB, excludeUserID uint) (int64, error)

	// HasAuthoredContent reports whether the user still owns questions or
	// answers; deletion is refused while it does.
	HasAuthoredContent(ctx context.Context, tx *gorm.DB, userID uint) (bool, error)

	// Invitation codes
	CreateInvitation(ctx context.Context, tx *gorm.DB, invite *models.InvitationCode) error
	// ConsumeInvitation atomically claims an unused code for usedBy and
	// returns it; a used or unknown code yields a NotFoundError.
	ConsumeInvitation(ctx context.Context, tx *gorm.DB, code string, usedBy uint) (*models.InvitationCode, error)

	// One-time passwords
	CreateOneTimePassword(ctx context.Context, tx *gorm.DB, otp *models.OneTimePassword) error
	// ConsumeOneTimePassword atomically consumes a matching unconsumed code
	// and reports whether one existed.
	ConsumeOneTimePassword(ctx context.Context, tx *gorm.DB, userID uint, code string) (bool, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)

	// Search performs a case-insensitive substring match over title OR
	// content, newest first.
	Search(ctx context.Context, tx *gorm.DB, term string, filters QuestionFilters) ([]*models.Question, int64, error)

	// SetResolution updates the resolution state in a single statement.
	SetResolution(ctx context.Context, tx *gorm.DB, questionID uint, answerID *uint, resolved bool) error

	// ClearResolutionByAnswer unresolves every question whose accepted
	// answer is the given one. Part of the answer-delete cascade.
	ClearResolutionByAnswer(ctx context.Context, tx *gorm.DB, answerID uint) error
}

type AnswerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error)
	Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// GetByQuestion returns the question's answers oldest first, matching
	// the order they are listed to callers.
	GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Answer, error)
	GetIDsByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]uint, error)
	DeleteByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error
	SetClarification(ctx context.Context, tx *gorm.DB, id uint, flag bool) error
}

type ReviewerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reviewer *models.Reviewer) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reviewer, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uint) (*models.Reviewer, error)
	UpdateWeight(ctx context.Context, tx *gorm.DB, id uint, weight float64) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *models.Review) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Review, error)

	// UpdateMatched writes the review content only where the full
	// {id, reviewer, question, answer} tuple still matches, returning the
	// affected row count. This is the ownership compare-and-swap.
	UpdateMatched(ctx context.Context, tx *gorm.DB, review *models.Review) (int64, error)
	// DeleteMatched is the delete-side counterpart of UpdateMatched.
	DeleteMatched(ctx context.Context, tx *gorm.DB, id, reviewerID uint, questionID, answerID *uint) (int64, error)

	// Update and Delete are the privileged (moderation) paths with no
	// tuple precondition.
	Update(ctx context.Context, tx *gorm.DB, review *models.Review) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Review, error)
	GetByAnswer(ctx context.Context, tx *gorm.DB, answerID uint) ([]*models.Review, error)
	GetByReviewer(ctx context.Context, tx *gorm.DB, reviewerID uint) ([]*models.Review, error)

	// CountBySubject backs the duplicate-review policy check.
	CountBySubject(ctx context.Context, tx *gorm.DB, reviewerID uint, questionID, answerID *uint) (int64, error)

	// Cascade helpers, invoked inside the owning content's delete
	// transaction.
	DeleteByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error
	DeleteByAnswers(ctx context.Context, tx *gorm.DB, answerIDs []uint) error
	DeleteByReviewer(ctx context.Context, tx *gorm.DB, reviewerID uint) error
}

type ReviewerRequestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, request *models.ReviewerRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ReviewerRequest, error)

	// UpdateStatusIfPending performs the PENDING -> terminal transition as a
	// compare-and-set, returning the affected row count. Racing deciders
	// observe zero rows.
	UpdateStatusIfPending(ctx context.Context, tx *gorm.DB, id uint, status models.RequestStatus, comments *string, reviewedBy uint) (int64, error)

	ListPending(ctx context.Context, tx *gorm.DB) ([]*models.ReviewerRequest, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.ReviewerRequest, error)
	CountPendingByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, message *models.Message) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error)

	// GetForUser returns messages where the user is sender OR receiver,
	// newest first.
	GetForUser(ctx context.Context, tx *gorm.DB, userID uint, filters MessageFilters) ([]*models.Message, int64, error)
	GetUnreadForReceiver(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Message, error)

	// MarkReadIfReceiver flips the read flag only where the given user is
	// the receiver, returning the affected row count.
	MarkReadIfReceiver(ctx context.Context, tx *gorm.DB, messageID, receiverID uint) (int64, error)
}
