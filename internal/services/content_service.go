package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/validator"
)

type contentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	events    NotificationEventService
}

func NewContentService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, events NotificationEventService) ContentService {
	return &contentService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		events:    events,
	}
}

// ===== QUESTIONS =====

func (s *contentService) CreateQuestion(ctx context.Context, req *CreateQuestionRequest, authorID uint) (*QuestionResponse, error) {
	s.logger.Info("Creating question", "author_id", authorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question := &models.Question{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: authorID,
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "question_id", question.ID)

	if s.events != nil {
		if err := s.events.PublishQuestionCreated(ctx, question); err != nil {
			s.logger.Warn("Failed to publish question event", "error", err)
		}
	}

	return s.buildQuestionResponse(ctx, question, authorID), nil
}

func (s *contentService) GetQuestion(ctx context.Context, id uint, userID uint) (*QuestionResponse, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return s.buildQuestionResponse(ctx, question, userID), nil
}

func (s *contentService) ListQuestions(ctx context.Context, filters repositories.QuestionFilters, userID uint) (*QuestionListResponse, error) {
	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return s.buildQuestionListResponse(ctx, questions, total, userID), nil
}

func (s *contentService) SearchQuestions(ctx context.Context, term string, filters repositories.QuestionFilters, userID uint) (*QuestionListResponse, error) {
	questions, total, err := s.repo.Question().Search(ctx, nil, term, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search questions: %w", err)
	}
	return s.buildQuestionListResponse(ctx, questions, total, userID), nil
}

func (s *contentService) UpdateQuestion(ctx context.Context, id uint, req *UpdateQuestionRequest, actorID uint) (*QuestionResponse, error) {
	s.logger.Info("Updating question", "question_id", id, "actor_id", actorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	allowed, err := s.canEditContent(ctx, question.AuthorID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, NewPermissionError(actorID, id, "question", "update", "not author or moderator")
	}

	if req.Title != nil {
		question.Title = *req.Title
	}
	if req.Content != nil {
		question.Content = *req.Content
	}

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	return s.buildQuestionResponse(ctx, question, actorID), nil
}

func (s *contentService) DeleteQuestion(ctx context.Context, id uint, actorID uint) error {
	s.logger.Info("Deleting question", "question_id", id, "actor_id", actorID)

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	allowed, err := s.canEditContent(ctx, question.AuthorID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return NewPermissionError(actorID, id, "question", "delete", "not author or moderator")
	}

	// The question, its answers and every dependent review disappear in one
	// transaction so no review ever dangles.
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		answerIDs, err := txRepo.Answer().GetIDsByQuestion(ctx, nil, id)
		if err != nil {
			return err
		}
		if err := txRepo.Review().DeleteByAnswers(ctx, nil, answerIDs); err != nil {
			return err
		}
		if err := txRepo.Review().DeleteByQuestion(ctx, nil, id); err != nil {
			return err
		}
		if err := txRepo.Answer().DeleteByQuestion(ctx, nil, id); err != nil {
			return err
		}
		return txRepo.Question().Delete(ctx, nil, id)
	})
}

// ===== ANSWERS =====

func (s *contentService) CreateAnswer(ctx context.Context, questionID uint, req *CreateAnswerRequest, authorID uint) (*AnswerResponse, error) {
	s.logger.Info("Creating answer", "question_id", questionID, "author_id", authorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Question().GetByID(ctx, nil, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	answer := &models.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    req.Content,
	}

	if err := s.repo.Answer().Create(ctx, nil, answer); err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishAnswerCreated(ctx, answer); err != nil {
			s.logger.Warn("Failed to publish answer event", "error", err)
		}
	}

	return &AnswerResponse{Answer: answer}, nil
}

func (s *contentService) GetAnswers(ctx context.Context, questionID uint) ([]*AnswerResponse, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	answers, err := s.repo.Answer().GetByQuestion(ctx, nil, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}

	responses := make([]*AnswerResponse, 0, len(answers))
	for _, answer := range answers {
		accepted := question.ResolvedAnswerID != nil && *question.ResolvedAnswerID == answer.ID
		responses = append(responses, &AnswerResponse{Answer: answer, Accepted: accepted})
	}
	return responses, nil
}

func (s *contentService) UpdateAnswer(ctx context.Context, id uint, req *UpdateAnswerRequest, actorID uint) (*AnswerResponse, error) {
	s.logger.Info("Updating answer", "answer_id", id, "actor_id", actorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	answer, err := s.repo.Answer().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	allowed, err := s.canEditContent(ctx, answer.AuthorID, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, NewPermissionError(actorID, id, "answer", "update", "not author or moderator")
	}

	if req.Content != nil {
		answer.Content = *req.Content
	}
	if req.NeedsClarification != nil {
		answer.NeedsClarification = *req.NeedsClarification
	}

	if err := s.repo.Answer().Update(ctx, nil, answer); err != nil {
		return nil, fmt.Errorf("failed to update answer: %w", err)
	}

	return &AnswerResponse{Answer: answer}, nil
}

func (s *contentService) DeleteAnswer(ctx context.Context, id uint, actorID uint) error {
	s.logger.Info("Deleting answer", "answer_id", id, "actor_id", actorID)

	answer, err := s.repo.Answer().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAnswerNotFound
		}
		return fmt.Errorf("failed to get answer: %w", err)
	}

	allowed, err := s.canEditContent(ctx, answer.AuthorID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return NewPermissionError(actorID, id, "answer", "delete", "not author or moderator")
	}

	// Deleting an accepted answer reopens its question; dependent reviews go
	// in the same transaction.
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Question().ClearResolutionByAnswer(ctx, nil, id); err != nil {
			return err
		}
		if err := txRepo.Review().DeleteByAnswers(ctx, nil, []uint{id}); err != nil {
			return err
		}
		return txRepo.Answer().Delete(ctx, nil, id)
	})
}

// ===== RESOLUTION =====

func (s *contentService) MarkResolved(ctx context.Context, questionID, answerID uint, actorID uint) error {
	s.logger.Info("Resolving question", "question_id", questionID, "answer_id", answerID, "actor_id", actorID)

	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if question.AuthorID != actorID {
		return NewPermissionError(actorID, questionID, "question", "resolve", "only the author accepts an answer")
	}

	answer, err := s.repo.Answer().GetByID(ctx, nil, answerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAnswerNotFound
		}
		return fmt.Errorf("failed to get answer: %w", err)
	}
	if answer.QuestionID != questionID {
		return ErrInvalidTarget
	}

	if err := s.repo.Question().SetResolution(ctx, nil, questionID, &answerID, true); err != nil {
		return fmt.Errorf("failed to set resolution: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishQuestionResolved(ctx, questionID, &answerID); err != nil {
			s.logger.Warn("Failed to publish resolution event", "error", err)
		}
	}

	return nil
}

func (s *contentService) UnmarkResolved(ctx context.Context, questionID uint, actorID uint) error {
	s.logger.Info("Reopening question", "question_id", questionID, "actor_id", actorID)

	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if question.AuthorID != actorID {
		return NewPermissionError(actorID, questionID, "question", "reopen", "only the author reopens a question")
	}

	if err := s.repo.Question().SetResolution(ctx, nil, questionID, nil, false); err != nil {
		return fmt.Errorf("failed to clear resolution: %w", err)
	}

	return nil
}

func (s *contentService) MarkResolvedWithoutAnswer(ctx context.Context, questionID uint, confirm bool, actorID uint) error {
	s.logger.Info("Closing question without accepted answer", "question_id", questionID, "actor_id", actorID)

	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if question.AuthorID != actorID {
		return NewPermissionError(actorID, questionID, "question", "resolve", "only the author closes a question")
	}

	answers, err := s.repo.Answer().GetByQuestion(ctx, nil, questionID)
	if err != nil {
		return fmt.Errorf("failed to get answers: %w", err)
	}

	if len(answers) == 0 {
		if err := s.repo.Question().SetResolution(ctx, nil, questionID, nil, true); err != nil {
			return fmt.Errorf("failed to set resolution: %w", err)
		}
		if s.events != nil {
			if err := s.events.PublishQuestionResolved(ctx, questionID, nil); err != nil {
				s.logger.Warn("Failed to publish resolution event", "error", err)
			}
		}
		return nil
	}

	// Answers exist: the author must confirm to accept the earliest one.
	if !confirm {
		return NewInvalidStateError("question", questionID, "has answers", "resolve without answer")
	}

	firstID := answers[0].ID
	if err := s.repo.Question().SetResolution(ctx, nil, questionID, &firstID, true); err != nil {
		return fmt.Errorf("failed to set resolution: %w", err)
	}
	if s.events != nil {
		if err := s.events.PublishQuestionResolved(ctx, questionID, &firstID); err != nil {
			s.logger.Warn("Failed to publish resolution event", "error", err)
		}
	}
	return nil
}

func (s *contentService) SetClarification(ctx context.Context, answerID uint, flag bool, actorID uint) error {
	answer, err := s.repo.Answer().GetByID(ctx, nil, answerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAnswerNotFound
		}
		return fmt.Errorf("failed to get answer: %w", err)
	}

	question, err := s.repo.Question().GetByID(ctx, nil, answer.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to get question: %w", err)
	}

	allowed, err := s.canEditContent(ctx, question.AuthorID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return NewPermissionError(actorID, answerID, "answer", "flag_clarification", "not the question author or a moderator")
	}

	if err := s.repo.Answer().SetClarification(ctx, nil, answerID, flag); err != nil {
		return fmt.Errorf("failed to set clarification flag: %w", err)
	}

	return nil
}

// ===== HELPERS =====

func (s *contentService) canEditContent(ctx context.Context, authorID, actorID uint) (bool, error) {
	if authorID == actorID {
		return true, nil
	}
	actor, err := s.repo.User().GetByID(ctx, nil, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get actor: %w", err)
	}
	return actor.HasAnyRole(models.RoleInstructor, models.RoleStaff, models.RoleAdmin), nil
}

func (s *contentService) buildQuestionResponse(ctx context.Context, question *models.Question, userID uint) *QuestionResponse {
	canEdit := question.AuthorID == userID
	if !canEdit {
		if allowed, err := s.canEditContent(ctx, question.AuthorID, userID); err == nil {
			canEdit = allowed
		}
	}
	return &QuestionResponse{
		Question:  question,
		CanEdit:   canEdit,
		CanDelete: canEdit,
	}
}

func (s *contentService) buildQuestionListResponse(ctx context.Context, questions []*models.Question, total int64, userID uint) *QuestionListResponse {
	moderator := false
	if actor, err := s.repo.User().GetByID(ctx, nil, userID); err == nil {
		moderator = actor.HasAnyRole(models.RoleInstructor, models.RoleStaff, models.RoleAdmin)
	}

	resp := &QuestionListResponse{Total: total}
	for _, question := range questions {
		canEdit := moderator || question.AuthorID == userID
		resp.Questions = append(resp.Questions, &QuestionResponse{
			Question:  question,
			CanEdit:   canEdit,
			CanDelete: canEdit,
		})
	}
	return resp
}
