package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/validator"
)

// ReviewPolicy holds the configurable rules for review submission.
type ReviewPolicy struct {
	// AllowDuplicates permits a reviewer to file several reviews against
	// the same subject.
	AllowDuplicates bool
}

type reviewService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	events    NotificationEventService
	policy    ReviewPolicy
}

func NewReviewService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, events NotificationEventService, policy ReviewPolicy) ReviewService {
	return &reviewService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		events:    events,
		policy:    policy,
	}
}

// ===== REVIEWER PROFILES =====

func (s *reviewService) GetReviewerByUser(ctx context.Context, userID uint) (*models.Reviewer, error) {
	reviewer, err := s.repo.Reviewer().GetByUser(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReviewerNotFound
		}
		return nil, fmt.Errorf("failed to get reviewer: %w", err)
	}
	return reviewer, nil
}

func (s *reviewService) UpdateWeight(ctx context.Context, reviewerID uint, req *UpdateWeightRequest, actorID uint) error {
	s.logger.Info("Updating reviewer weight", "reviewer_id", reviewerID, "actor_id", actorID, "weight", req.Weight)

	if err := s.validator.Validate(req); err != nil {
		return err
	}

	actor, err := s.repo.User().GetByID(ctx, nil, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(actorID, reviewerID, "reviewer", "update_weight", "actor not found")
		}
		return fmt.Errorf("failed to get actor: %w", err)
	}
	if !actor.HasAnyRole(models.RoleInstructor, models.RoleStaff, models.RoleAdmin) {
		return NewPermissionError(actorID, reviewerID, "reviewer", "update_weight", "insufficient role")
	}

	if err := s.repo.Reviewer().UpdateWeight(ctx, nil, reviewerID, req.Weight); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrReviewerNotFound
		}
		return fmt.Errorf("failed to update weight: %w", err)
	}
	return nil
}

// ===== REVIEWS =====

func (s *reviewService) CreateReview(ctx context.Context, req *CreateReviewRequest, userID uint) (*ReviewResponse, error) {
	s.logger.Info("Creating review", "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	// A review targets a question or an answer, never both and never neither.
	if (req.QuestionID == nil) == (req.AnswerID == nil) {
		return nil, ErrInvalidTarget
	}

	reviewer, err := s.requireReviewer(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.validateTarget(ctx, req.QuestionID, req.AnswerID); err != nil {
		return nil, err
	}

	if !s.policy.AllowDuplicates {
		count, err := s.repo.Review().CountBySubject(ctx, nil, reviewer.ID, req.QuestionID, req.AnswerID)
		if err != nil {
			return nil, fmt.Errorf("failed to check for duplicate review: %w", err)
		}
		if count > 0 {
			return nil, ErrDuplicateReview
		}
	}

	review := &models.Review{
		ReviewerID: reviewer.ID,
		QuestionID: req.QuestionID,
		AnswerID:   req.AnswerID,
		Content:    req.Content,
	}

	if err := s.repo.Review().Create(ctx, nil, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info("Review created", "review_id", review.ID, "reviewer_id", reviewer.ID)

	if s.events != nil {
		if err := s.events.PublishReviewCreated(ctx, review); err != nil {
			s.logger.Warn("Failed to publish review event", "error", err)
		}
	}

	return &ReviewResponse{Review: review, CanEdit: true, CanDelete: true}, nil
}

func (s *reviewService) GetReview(ctx context.Context, id uint) (*ReviewResponse, error) {
	review, err := s.repo.Review().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &ReviewResponse{Review: review}, nil
}

func (s *reviewService) GetReviewsForQuestion(ctx context.Context, questionID uint) ([]*ReviewResponse, error) {
	reviews, err := s.repo.Review().GetByQuestion(ctx, nil, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return buildReviewResponses(reviews), nil
}

func (s *reviewService) GetReviewsForAnswer(ctx context.Context, answerID uint) ([]*ReviewResponse, error) {
	reviews, err := s.repo.Review().GetByAnswer(ctx, nil, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return buildReviewResponses(reviews), nil
}

func (s *reviewService) GetReviewsByReviewer(ctx context.Context, reviewerID uint) ([]*ReviewResponse, error) {
	reviews, err := s.repo.Review().GetByReviewer(ctx, nil, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return buildReviewResponses(reviews), nil
}

// UpdateReview rewrites a review's text. The write carries the full
// ownership tuple so a concurrent retarget or takeover cannot slip through
// between the read and the update.
func (s *reviewService) UpdateReview(ctx context.Context, id uint, req *UpdateReviewRequest, userID uint) (*ReviewResponse, error) {
	s.logger.Info("Updating review", "review_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	reviewer, err := s.requireReviewer(ctx, userID)
	if err != nil {
		return nil, err
	}

	review, err := s.repo.Review().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review.ReviewerID != reviewer.ID {
		return nil, NewPermissionError(userID, id, "review", "update", "not the review's author")
	}

	review.Content = req.Content
	affected, err := s.repo.Review().UpdateMatched(ctx, nil, review)
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	if affected == 0 {
		// The tuple changed between the read and the write.
		if _, err := s.repo.Review().GetByID(ctx, nil, id); err != nil && repositories.IsNotFoundError(err) {
			return nil, ErrReviewNotFound
		}
		return nil, NewPermissionError(userID, id, "review", "update", "review no longer matches")
	}

	return &ReviewResponse{Review: review, CanEdit: true, CanDelete: true}, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, id uint, userID uint) error {
	s.logger.Info("Deleting review", "review_id", id, "user_id", userID)

	reviewer, err := s.requireReviewer(ctx, userID)
	if err != nil {
		return err
	}

	review, err := s.repo.Review().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}
	if review.ReviewerID != reviewer.ID {
		return NewPermissionError(userID, id, "review", "delete", "not the review's author")
	}

	affected, err := s.repo.Review().DeleteMatched(ctx, nil, id, reviewer.ID, review.QuestionID, review.AnswerID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if affected == 0 {
		if _, err := s.repo.Review().GetByID(ctx, nil, id); err != nil && repositories.IsNotFoundError(err) {
			return ErrReviewNotFound
		}
		return NewPermissionError(userID, id, "review", "delete", "review no longer matches")
	}

	return nil
}

// ===== HELPERS =====

func (s *reviewService) requireReviewer(ctx context.Context, userID uint) (*models.Reviewer, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.HasRole(models.RoleReviewer) {
		return nil, NewPermissionError(userID, 0, "review", "write", "reviewer role required")
	}

	reviewer, err := s.repo.Reviewer().GetByUser(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReviewerNotFound
		}
		return nil, fmt.Errorf("failed to get reviewer profile: %w", err)
	}
	return reviewer, nil
}

func (s *reviewService) validateTarget(ctx context.Context, questionID, answerID *uint) error {
	if questionID != nil {
		if _, err := s.repo.Question().GetByID(ctx, nil, *questionID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("failed to get question: %w", err)
		}
		return nil
	}
	if answerID != nil {
		if _, err := s.repo.Answer().GetByID(ctx, nil, *answerID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAnswerNotFound
			}
			return fmt.Errorf("failed to get answer: %w", err)
		}
		return nil
	}
	return ErrInvalidTarget
}

func buildReviewResponses(reviews []*models.Review) []*ReviewResponse {
	responses := make([]*ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, &ReviewResponse{Review: review})
	}
	return responses
}
