package services

import (
	"context"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type PasswordResetRequest = validator.PasswordResetRequest
type UpdateRolesRequest = validator.UpdateRolesRequest
type InvitationCreateRequest = validator.InvitationCreateRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type UpdateQuestionRequest = validator.QuestionUpdateRequest
type CreateAnswerRequest = validator.AnswerCreateRequest
type UpdateAnswerRequest = validator.AnswerUpdateRequest
type CreateReviewRequest = validator.ReviewCreateRequest
type UpdateReviewRequest = validator.ReviewUpdateRequest
type CreatePromotionRequest = validator.PromotionCreateRequest
type PromotionDecisionRequest = validator.PromotionDecisionRequest
type SendMessageRequest = validator.MessageSendRequest
type UpdateWeightRequest = validator.WeightUpdateRequest

// UserResponse is the caller-facing view of an account. The password hash
// never leaves the service layer.
type UserResponse struct {
	ID                uint     `json:"id"`
	UserName          string   `json:"user_name"`
	Roles             []string `json:"roles"`
	MustResetPassword bool     `json:"must_reset_password"`
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
}

type InvitationResponse struct {
	Code  string   `json:"code"`
	Roles []string `json:"roles"`
}

type QuestionResponse struct {
	*models.Question
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type QuestionListResponse struct {
	Questions []*QuestionResponse `json:"questions"`
	Total     int64               `json:"total"`
}

type AnswerResponse struct {
	*models.Answer
	Accepted bool `json:"accepted"`
}

type ReviewResponse struct {
	*models.Review
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type RequestResponse struct {
	*models.ReviewerRequest
}

type MessageResponse struct {
	*models.Message
}

// ===== SERVICE INTERFACES =====

// UserService owns accounts, roles, invitations and credentials.
type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error)
	Authenticate(ctx context.Context, req *LoginRequest) (*UserResponse, error)
	ResetPassword(ctx context.Context, req *PasswordResetRequest) (*UserResponse, error)

	GetByID(ctx context.Context, id uint) (*UserResponse, error)
	List(ctx context.Context, filters repositories.UserFilters, actorID uint) (*UserListResponse, error)

	UpdateRoles(ctx context.Context, userID uint, req *UpdateRolesRequest, actorID uint) (*UserResponse, error)
	SetOneTimePassword(ctx context.Context, userID uint, actorID uint) (string, error)
	CreateInvitation(ctx context.Context, req *InvitationCreateRequest, actorID uint) (*InvitationResponse, error)
	Delete(ctx context.Context, userID uint, actorID uint) error
}

// ContentService owns questions, answers and their resolution lifecycle.
type ContentService interface {
	CreateQuestion(ctx context.Context, req *CreateQuestionRequest, authorID uint) (*QuestionResponse, error)
	GetQuestion(ctx context.Context, id uint, userID uint) (*QuestionResponse, error)
	ListQuestions(ctx context.Context, filters repositories.QuestionFilters, userID uint) (*QuestionListResponse, error)
	SearchQuestions(ctx context.Context, term string, filters repositories.QuestionFilters, userID uint) (*QuestionListResponse, error)
	UpdateQuestion(ctx context.Context, id uint, req *UpdateQuestionRequest, actorID uint) (*QuestionResponse, error)
	DeleteQuestion(ctx context.Context, id uint, actorID uint) error

	CreateAnswer(ctx context.Context, questionID uint, req *CreateAnswerRequest, authorID uint) (*AnswerResponse, error)
	GetAnswers(ctx context.Context, questionID uint) ([]*AnswerResponse, error)
	UpdateAnswer(ctx context.Context, id uint, req *UpdateAnswerRequest, actorID uint) (*AnswerResponse, error)
	DeleteAnswer(ctx context.Context, id uint, actorID uint) error

	MarkResolved(ctx context.Context, questionID, answerID uint, actorID uint) error
	UnmarkResolved(ctx context.Context, questionID uint, actorID uint) error
	// MarkResolvedWithoutAnswer closes a question that has no acceptable
	// answer. When answers exist the caller must pass confirm to accept the
	// first listed answer instead.
	MarkResolvedWithoutAnswer(ctx context.Context, questionID uint, confirm bool, actorID uint) error

	SetClarification(ctx context.Context, answerID uint, flag bool, actorID uint) error
}

// ReviewService owns reviewer profiles and reviews.
type ReviewService interface {
	GetReviewerByUser(ctx context.Context, userID uint) (*models.Reviewer, error)
	UpdateWeight(ctx context.Context, reviewerID uint, req *UpdateWeightRequest, actorID uint) error

	CreateReview(ctx context.Context, req *CreateReviewRequest, userID uint) (*ReviewResponse, error)
	GetReview(ctx context.Context, id uint) (*ReviewResponse, error)
	GetReviewsForQuestion(ctx context.Context, questionID uint) ([]*ReviewResponse, error)
	GetReviewsForAnswer(ctx context.Context, answerID uint) ([]*ReviewResponse, error)
	GetReviewsByReviewer(ctx context.Context, reviewerID uint) ([]*ReviewResponse, error)
	UpdateReview(ctx context.Context, id uint, req *UpdateReviewRequest, userID uint) (*ReviewResponse, error)
	DeleteReview(ctx context.Context, id uint, userID uint) error
}

// PromotionService owns the student-to-reviewer request workflow.
type PromotionService interface {
	SubmitRequest(ctx context.Context, req *CreatePromotionRequest, userID uint) (*RequestResponse, error)
	ListPending(ctx context.Context, actorID uint) ([]*RequestResponse, error)
	GetByUser(ctx context.Context, userID uint) ([]*RequestResponse, error)
	Approve(ctx context.Context, requestID uint, req *PromotionDecisionRequest, actorID uint) (*RequestResponse, error)
	Reject(ctx context.Context, requestID uint, req *PromotionDecisionRequest, actorID uint) (*RequestResponse, error)
}

// MessageService owns private messages.
type MessageService interface {
	Send(ctx context.Context, req *SendMessageRequest, senderID uint) (*MessageResponse, error)
	GetForUser(ctx context.Context, userID uint, filters repositories.MessageFilters) ([]*MessageResponse, int64, error)
	GetUnread(ctx context.Context, userID uint) ([]*MessageResponse, error)
	MarkRead(ctx context.Context, messageID uint, userID uint) error
}

// ModerationService is the privileged facade for instructors and staff.
type ModerationService interface {
	DeleteQuestion(ctx context.Context, questionID uint, actorID uint) error
	DeleteAnswer(ctx context.Context, answerID uint, actorID uint) error
	ToggleClarification(ctx context.Context, answerID uint, flag bool, actorID uint) error
	DeleteReview(ctx context.Context, reviewID uint, actorID uint) error
	EditReview(ctx context.Context, reviewID uint, req *UpdateReviewRequest, actorID uint) (*ReviewResponse, error)
}

// NotificationEventService publishes workflow milestones as domain events.
type NotificationEventService interface {
	PublishUserRegistered(ctx context.Context, user *models.User) error
	PublishUserRolesChanged(ctx context.Context, user *models.User) error
	PublishQuestionCreated(ctx context.Context, question *models.Question) error
	PublishAnswerCreated(ctx context.Context, answer *models.Answer) error
	PublishQuestionResolved(ctx context.Context, questionID uint, answerID *uint) error
	PublishReviewCreated(ctx context.Context, review *models.Review) error
	PublishRequestSubmitted(ctx context.Context, request *models.ReviewerRequest) error
	PublishRequestDecided(ctx context.Context, request *models.ReviewerRequest) error
	PublishMessageSent(ctx context.Context, message *models.Message) error
}

// ExportService produces spreadsheet exports for staff.
type ExportService interface {
	ExportUsers(ctx context.Context, actorID uint) ([]byte, error)
	ExportQuestions(ctx context.Context, actorID uint) ([]byte, error)
}

// ServiceManager wires and owns all services.
type ServiceManager interface {
	Users() UserService
	Content() ContentService
	Reviews() ReviewService
	Promotions() PromotionService
	Messages() MessageService
	Moderation() ModerationService
	Notifications() NotificationEventService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
