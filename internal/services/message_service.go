package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/validator"
)

type messageService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	events    NotificationEventService
}

func NewMessageService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, events NotificationEventService) MessageService {
	return &messageService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		events:    events,
	}
}

func (s *messageService) Send(ctx context.Context, req *SendMessageRequest, senderID uint) (*MessageResponse, error) {
	s.logger.Info("Sending message", "sender_id", senderID, "receiver_id", req.ReceiverID)

	if errs := s.validator.GetBusinessValidator().ValidateMessageSend(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.User().GetByID(ctx, nil, req.ReceiverID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get receiver: %w", err)
	}

	// Anchored messages must point at content that exists.
	if req.RelatedQuestionID != nil {
		if _, err := s.repo.Question().GetByID(ctx, nil, *req.RelatedQuestionID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrQuestionNotFound
			}
			return nil, fmt.Errorf("failed to get related question: %w", err)
		}
	}
	if req.RelatedAnswerID != nil {
		if _, err := s.repo.Answer().GetByID(ctx, nil, *req.RelatedAnswerID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrAnswerNotFound
			}
			return nil, fmt.Errorf("failed to get related answer: %w", err)
		}
	}

	message := &models.Message{
		SenderID:          senderID,
		ReceiverID:        req.ReceiverID,
		RelatedQuestionID: req.RelatedQuestionID,
		RelatedAnswerID:   req.RelatedAnswerID,
		Content:           req.Content,
	}

	if err := s.repo.Message().Create(ctx, nil, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishMessageSent(ctx, message); err != nil {
			s.logger.Warn("Failed to publish message event", "error", err)
		}
	}

	return &MessageResponse{Message: message}, nil
}

func (s *messageService) GetForUser(ctx context.Context, userID uint, filters repositories.MessageFilters) ([]*MessageResponse, int64, error) {
	messages, total, err := s.repo.Message().GetForUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get messages: %w", err)
	}
	return buildMessageResponses(messages), total, nil
}

func (s *messageService) GetUnread(ctx context.Context, userID uint) ([]*MessageResponse, error) {
	messages, err := s.repo.Message().GetUnreadForReceiver(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unread messages: %w", err)
	}
	return buildMessageResponses(messages), nil
}

// MarkRead flips the read flag. The write is gated on the caller being the
// receiver, so a sender or bystander cannot consume someone else's unread
// state.
func (s *messageService) MarkRead(ctx context.Context, messageID uint, userID uint) error {
	affected, err := s.repo.Message().MarkReadIfReceiver(ctx, nil, messageID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if affected == 0 {
		if _, err := s.repo.Message().GetByID(ctx, nil, messageID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrMessageNotFound
			}
			return fmt.Errorf("failed to get message: %w", err)
		}
		return NewPermissionError(userID, messageID, "message", "mark_read", "not the receiver")
	}
	return nil
}

func buildMessageResponses(messages []*models.Message) []*MessageResponse {
	responses := make([]*MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, &MessageResponse{Message: message})
	}
	return responses
}
