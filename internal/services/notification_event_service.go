package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/events"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/validator"
)

type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewNotificationEventService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) NotificationEventService {
	return &notificationEventService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
	}
}

func (s *notificationEventService) PublishUserRegistered(ctx context.Context, user *models.User) error {
	return s.publish(ctx, events.TopicIdentity, events.EventUserRegistered, map[string]interface{}{
		"user_id":   user.ID,
		"user_name": user.UserName,
	})
}

func (s *notificationEventService) PublishUserRolesChanged(ctx context.Context, user *models.User) error {
	return s.publish(ctx, events.TopicIdentity, events.EventUserRolesChanged, map[string]interface{}{
		"user_id": user.ID,
		"roles":   user.RoleSet(),
	})
}

func (s *notificationEventService) PublishQuestionCreated(ctx context.Context, question *models.Question) error {
	return s.publish(ctx, events.TopicContent, events.EventQuestionCreated, map[string]interface{}{
		"question_id": question.ID,
		"author_id":   question.AuthorID,
		"title":       question.Title,
	})
}

func (s *notificationEventService) PublishAnswerCreated(ctx context.Context, answer *models.Answer) error {
	return s.publish(ctx, events.TopicContent, events.EventAnswerCreated, map[string]interface{}{
		"answer_id":   answer.ID,
		"question_id": answer.QuestionID,
		"author_id":   answer.AuthorID,
	})
}

func (s *notificationEventService) PublishQuestionResolved(ctx context.Context, questionID uint, answerID *uint) error {
	data := map[string]interface{}{
		"question_id": questionID,
	}
	if answerID != nil {
		data["accepted_answer_id"] = *answerID
	}
	return s.publish(ctx, events.TopicContent, events.EventQuestionResolved, data)
}

func (s *notificationEventService) PublishReviewCreated(ctx context.Context, review *models.Review) error {
	data := map[string]interface{}{
		"review_id":   review.ID,
		"reviewer_id": review.ReviewerID,
	}
	if review.QuestionID != nil {
		data["question_id"] = *review.QuestionID
	}
	if review.AnswerID != nil {
		data["answer_id"] = *review.AnswerID
	}
	return s.publish(ctx, events.TopicReviews, events.EventReviewCreated, data)
}

func (s *notificationEventService) PublishRequestSubmitted(ctx context.Context, request *models.ReviewerRequest) error {
	return s.publish(ctx, events.TopicWorkflow, events.EventRequestSubmitted, map[string]interface{}{
		"request_id": request.ID,
		"user_id":    request.UserID,
	})
}

func (s *notificationEventService) PublishRequestDecided(ctx context.Context, request *models.ReviewerRequest) error {
	return s.publish(ctx, events.TopicWorkflow, events.EventRequestDecided, map[string]interface{}{
		"request_id": request.ID,
		"user_id":    request.UserID,
		"status":     request.Status,
	})
}

func (s *notificationEventService) PublishMessageSent(ctx context.Context, message *models.Message) error {
	return s.publish(ctx, events.TopicMessaging, events.EventMessageSent, map[string]interface{}{
		"message_id":  message.ID,
		"sender_id":   message.SenderID,
		"receiver_id": message.ReceiverID,
	})
}

func (s *notificationEventService) publish(ctx context.Context, topic, eventType string, data interface{}) error {
	event := &events.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    events.EventSource,
		Version:   events.EventVersion,
		Timestamp: time.Now(),
		Data:      data,
	}
	return s.eventPublisher.Publish(ctx, topic, event)
}
