package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportUsers writes the account list to an xlsx workbook.
func (s *exportService) ExportUsers(ctx context.Context, actorID uint) ([]byte, error) {
	s.logger.Info("Exporting users", "actor_id", actorID)

	if err := s.requireStaff(ctx, actorID, "users"); err != nil {
		return nil, err
	}

	users, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Users"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "User Name", "Roles", "Must Reset Password", "Created At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, user := range users {
		roles := user.RoleSet()
		roleNames := make([]string, 0, len(roles))
		for _, r := range roles {
			roleNames = append(roleNames, string(r))
		}

		values := []interface{}{
			user.ID,
			user.UserName,
			strings.Join(roleNames, ", "),
			user.MustResetPassword,
			user.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportQuestions writes all questions with their resolution state to an
// xlsx workbook.
func (s *exportService) ExportQuestions(ctx context.Context, actorID uint) ([]byte, error) {
	s.logger.Info("Exporting questions", "actor_id", actorID)

	if err := s.requireStaff(ctx, actorID, "questions"); err != nil {
		return nil, err
	}

	questions, _, err := s.repo.Question().List(ctx, nil, repositories.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Questions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Title", "Author ID", "Resolved", "Accepted Answer ID", "Created At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, question := range questions {
		accepted := ""
		if question.ResolvedAnswerID != nil {
			accepted = fmt.Sprintf("%d", *question.ResolvedAnswerID)
		}

		values := []interface{}{
			question.ID,
			question.Title,
			question.AuthorID,
			question.Resolved,
			accepted,
			question.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) requireStaff(ctx context.Context, actorID uint, resource string) error {
	actor, err := s.repo.User().GetByID(ctx, nil, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(actorID, 0, resource, "export", "actor not found")
		}
		return fmt.Errorf("failed to get actor: %w", err)
	}
	if !actor.HasAnyRole(models.RoleStaff, models.RoleAdmin) {
		return NewPermissionError(actorID, 0, resource, "export", "staff role required")
	}
	return nil
}
