package services

import (
	"errors"
	"fmt"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/validator"
)

// Sentinel errors for missing referents.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrReviewerNotFound = errors.New("reviewer not found")
	ErrRequestNotFound  = errors.New("reviewer request not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrInviteNotFound   = errors.New("invitation code not found or already used")
)

// Sentinel errors for domain rule violations.
var (
	// ErrInvalidTarget reports a reference that names the wrong entity,
	// such as accepting an answer that belongs to another question.
	ErrInvalidTarget = errors.New("referenced entity is not a valid target")

	ErrUserNameTaken           = errors.New("user name already taken")
	ErrInvalidCredentials      = errors.New("invalid user name or password")
	ErrLastAdmin               = errors.New("operation would remove the last admin")
	ErrUserHasContent          = errors.New("user still owns questions or answers")
	ErrDuplicatePendingRequest = errors.New("user already has a pending reviewer request")
	ErrDuplicateReview         = errors.New("reviewer already reviewed this subject")
)

// PermissionError reports an actor attempting an operation they are not
// allowed to perform.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

// NewPermissionError creates a permission error.
func NewPermissionError(userID, resourceID uint, resource, action, reason string) error {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// InvalidStateError reports an operation that found its subject in a state
// the operation does not apply to, such as deciding an already-decided
// request.
type InvalidStateError struct {
	Entity string
	ID     uint
	State  string
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %d in state %s", e.Action, e.Entity, e.ID, e.State)
}

// NewInvalidStateError creates an invalid-state error.
func NewInvalidStateError(entity string, id uint, state, action string) error {
	return &InvalidStateError{Entity: entity, ID: id, State: state, Action: action}
}

// ===== ERROR CLASSIFICATION =====

// IsNotFound reports whether err describes a missing referent.
func IsNotFound(err error) bool {
	if repositories.IsNotFoundError(err) {
		return true
	}
	for _, sentinel := range []error{
		ErrUserNotFound, ErrQuestionNotFound, ErrAnswerNotFound,
		ErrReviewNotFound, ErrReviewerNotFound, ErrRequestNotFound,
		ErrMessageNotFound, ErrInviteNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// IsPermissionDenied reports whether err is a permission failure.
func IsPermissionDenied(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsInvalidState reports whether err is a state precondition failure.
func IsInvalidState(err error) bool {
	var se *InvalidStateError
	return errors.As(err, &se)
}

// IsInvalidTarget reports whether err is a cross-reference failure.
func IsInvalidTarget(err error) bool {
	return errors.Is(err, ErrInvalidTarget)
}

// IsValidationError reports whether err carries field validation failures.
func IsValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}

// IsStorageFailure reports whether err came from the storage layer rather
// than a domain rule.
func IsStorageFailure(err error) bool {
	return repositories.IsStorageError(err)
}
