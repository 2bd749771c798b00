package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/validator"
)

// moderationService is the privileged surface. It rechecks the actor's role
// itself and then uses the repositories' unconditional paths, so moderators
// are never subject to ownership preconditions.
type moderationService struct {
	repo      repositories.Repository
	content   ContentService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewModerationService(repo repositories.Repository, content ContentService, logger *slog.Logger, validator *validator.Validator) ModerationService {
	return &moderationService{
		repo:      repo,
		content:   content,
		logger:    logger,
		validator: validator,
	}
}

func (s *moderationService) DeleteQuestion(ctx context.Context, questionID uint, actorID uint) error {
	s.logger.Info("Moderator deleting question", "question_id", questionID, "actor_id", actorID)

	if err := s.requireModerator(ctx, actorID, "question", "delete"); err != nil {
		return err
	}
	// The content service already grants moderators the delete path and
	// owns the cascade.
	return s.content.DeleteQuestion(ctx, questionID, actorID)
}

func (s *moderationService) DeleteAnswer(ctx context.Context, answerID uint, actorID uint) error {
	s.logger.Info("Moderator deleting answer", "answer_id", answerID, "actor_id", actorID)

	if err := s.requireModerator(ctx, actorID, "answer", "delete"); err != nil {
		return err
	}
	return s.content.DeleteAnswer(ctx, answerID, actorID)
}

func (s *moderationService) ToggleClarification(ctx context.Context, answerID uint, flag bool, actorID uint) error {
	s.logger.Info("Moderator toggling clarification flag", "answer_id", answerID, "actor_id", actorID, "flag", flag)

	if err := s.requireModerator(ctx, actorID, "answer", "flag_clarification"); err != nil {
		return err
	}
	// The content service grants moderators the flag path alongside the
	// question author.
	return s.content.SetClarification(ctx, answerID, flag, actorID)
}

func (s *moderationService) DeleteReview(ctx context.Context, reviewID uint, actorID uint) error {
	s.logger.Info("Moderator deleting review", "review_id", reviewID, "actor_id", actorID)

	if err := s.requireModerator(ctx, actorID, "review", "delete"); err != nil {
		return err
	}

	if err := s.repo.Review().Delete(ctx, nil, reviewID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (s *moderationService) EditReview(ctx context.Context, reviewID uint, req *UpdateReviewRequest, actorID uint) (*ReviewResponse, error) {
	s.logger.Info("Moderator editing review", "review_id", reviewID, "actor_id", actorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, actorID, "review", "update"); err != nil {
		return nil, err
	}

	review, err := s.repo.Review().GetByID(ctx, nil, reviewID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	review.Content = req.Content
	if err := s.repo.Review().Update(ctx, nil, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	return &ReviewResponse{Review: review}, nil
}

func (s *moderationService) requireModerator(ctx context.Context, actorID uint, resource, action string) error {
	actor, err := s.repo.User().GetByID(ctx, nil, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(actorID, 0, resource, action, "actor not found")
		}
		return fmt.Errorf("failed to get actor: %w", err)
	}
	if !actor.HasAnyRole(models.RoleInstructor, models.RoleStaff, models.RoleAdmin) {
		return NewPermissionError(actorID, 0, resource, action, "moderator role required")
	}
	return nil
}
