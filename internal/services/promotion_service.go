package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/validator"
)

// PromotionPolicy holds the configurable rules for the promotion workflow.
type PromotionPolicy struct {
	// AllowDuplicatePending permits a user to hold several open requests at
	// once.
	AllowDuplicatePending bool
}

type promotionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	events    NotificationEventService
	policy    PromotionPolicy
}

func NewPromotionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, events NotificationEventService, policy PromotionPolicy) PromotionService {
	return &promotionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		events:    events,
		policy:    policy,
	}
}

func (s *promotionService) SubmitRequest(ctx context.Context, req *CreatePromotionRequest, userID uint) (*RequestResponse, error) {
	s.logger.Info("Submitting reviewer request", "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.HasRole(models.RoleStudent) {
		return nil, NewPermissionError(userID, 0, "reviewer_request", "submit", "only students request promotion")
	}
	if user.HasRole(models.RoleReviewer) {
		return nil, NewInvalidStateError("user", userID, "already a reviewer", "submit request")
	}

	if !s.policy.AllowDuplicatePending {
		pending, err := s.repo.ReviewerRequest().CountPendingByUser(ctx, nil, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count pending requests: %w", err)
		}
		if pending > 0 {
			return nil, ErrDuplicatePendingRequest
		}
	}

	request := &models.ReviewerRequest{
		UserID:        userID,
		Justification: req.Justification,
		Status:        models.RequestPending,
		RequestedAt:   time.Now(),
	}

	if err := s.repo.ReviewerRequest().Create(ctx, nil, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.logger.Info("Reviewer request submitted", "request_id", request.ID, "user_id", userID)

	if s.events != nil {
		if err := s.events.PublishRequestSubmitted(ctx, request); err != nil {
			s.logger.Warn("Failed to publish request event", "error", err)
		}
	}

	return &RequestResponse{ReviewerRequest: request}, nil
}

func (s *promotionService) ListPending(ctx context.Context, actorID uint) ([]*RequestResponse, error) {
	if err := s.requireDecider(ctx, actorID, "list"); err != nil {
		return nil, err
	}

	requests, err := s.repo.ReviewerRequest().ListPending(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return buildRequestResponses(requests), nil
}

func (s *promotionService) GetByUser(ctx context.Context, userID uint) ([]*RequestResponse, error) {
	requests, err := s.repo.ReviewerRequest().GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get requests: %w", err)
	}
	return buildRequestResponses(requests), nil
}

// Approve grants the reviewer role. The status flip, the role grant and the
// reviewer profile land in one transaction; the compare-and-set on status
// makes racing deciders lose cleanly.
func (s *promotionService) Approve(ctx context.Context, requestID uint, req *PromotionDecisionRequest, actorID uint) (*RequestResponse, error) {
	s.logger.Info("Approving reviewer request", "request_id", requestID, "actor_id", actorID)

	if errs := s.validator.GetBusinessValidator().ValidatePromotionDecision(req, true); len(errs) > 0 {
		return nil, errs
	}
	if err := s.requireDecider(ctx, actorID, "approve"); err != nil {
		return nil, err
	}

	var request *models.ReviewerRequest
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		request, err = txRepo.ReviewerRequest().GetByID(ctx, nil, requestID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to get request: %w", err)
		}

		affected, err := txRepo.ReviewerRequest().UpdateStatusIfPending(ctx, nil, requestID, models.RequestApproved, req.Comments, actorID)
		if err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}
		if affected == 0 {
			return NewInvalidStateError("reviewer request", requestID, string(request.Status), "approve")
		}

		user, err := txRepo.User().GetByID(ctx, nil, request.UserID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get requester: %w", err)
		}
		user.AddRole(models.RoleReviewer)
		if err := txRepo.User().Update(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to grant reviewer role: %w", err)
		}

		// The profile may already exist if the role was revoked and
		// re-granted.
		if _, err := txRepo.Reviewer().GetByUser(ctx, nil, request.UserID); err != nil {
			if !repositories.IsNotFoundError(err) {
				return fmt.Errorf("failed to look up reviewer profile: %w", err)
			}
			reviewer := &models.Reviewer{UserID: request.UserID, Weight: 1.0}
			if err := txRepo.Reviewer().Create(ctx, nil, reviewer); err != nil {
				return fmt.Errorf("failed to create reviewer profile: %w", err)
			}
		}

		request, err = txRepo.ReviewerRequest().GetByID(ctx, nil, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reviewer request approved", "request_id", requestID, "user_id", request.UserID)

	if s.events != nil {
		if err := s.events.PublishRequestDecided(ctx, request); err != nil {
			s.logger.Warn("Failed to publish decision event", "error", err)
		}
	}

	return &RequestResponse{ReviewerRequest: request}, nil
}

func (s *promotionService) Reject(ctx context.Context, requestID uint, req *PromotionDecisionRequest, actorID uint) (*RequestResponse, error) {
	s.logger.Info("Rejecting reviewer request", "request_id", requestID, "actor_id", actorID)

	if errs := s.validator.GetBusinessValidator().ValidatePromotionDecision(req, false); len(errs) > 0 {
		return nil, errs
	}
	if err := s.requireDecider(ctx, actorID, "reject"); err != nil {
		return nil, err
	}

	var request *models.ReviewerRequest
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		request, err = txRepo.ReviewerRequest().GetByID(ctx, nil, requestID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to get request: %w", err)
		}

		affected, err := txRepo.ReviewerRequest().UpdateStatusIfPending(ctx, nil, requestID, models.RequestRejected, req.Comments, actorID)
		if err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}
		if affected == 0 {
			return NewInvalidStateError("reviewer request", requestID, string(request.Status), "reject")
		}

		request, err = txRepo.ReviewerRequest().GetByID(ctx, nil, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishRequestDecided(ctx, request); err != nil {
			s.logger.Warn("Failed to publish decision event", "error", err)
		}
	}

	return &RequestResponse{ReviewerRequest: request}, nil
}

// ===== HELPERS =====

func (s *promotionService) requireDecider(ctx context.Context, actorID uint, action string) error {
	actor, err := s.repo.User().GetByID(ctx, nil, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(actorID, 0, "reviewer_request", action, "actor not found")
		}
		return fmt.Errorf("failed to get actor: %w", err)
	}
	if !actor.HasAnyRole(models.RoleInstructor, models.RoleStaff, models.RoleAdmin) {
		return NewPermissionError(actorID, 0, "reviewer_request", action, "instructor role required")
	}
	return nil
}

func buildRequestResponses(requests []*models.ReviewerRequest) []*RequestResponse {
	responses := make([]*RequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, &RequestResponse{ReviewerRequest: request})
	}
	return responses
}
