package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/events"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/validator"
)

// testEnv wires the full service stack over the in-memory repository.
type testEnv struct {
	repo       *fakeRepository
	publisher  *events.MockEventPublisher
	users      UserService
	content    ContentService
	reviews    ReviewService
	promotions PromotionService
	messages   MessageService
	moderation ModerationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(logger)

	notifications := NewNotificationEventService(repo, publisher, logger, v)

	return &testEnv{
		repo:      repo,
		publisher: publisher,
		users:     NewUserService(repo, logger, v, notifications),
		content:   NewContentService(repo, logger, v, notifications),
		reviews: NewReviewService(repo, logger, v, notifications,
			ReviewPolicy{AllowDuplicates: false}),
		promotions: NewPromotionService(repo, logger, v, notifications,
			PromotionPolicy{AllowDuplicatePending: false}),
		messages: NewMessageService(repo, logger, v, notifications),
		moderation: NewModerationService(repo,
			NewContentService(repo, logger, v, notifications), logger, v),
	}
}

func (e *testEnv) createUser(t *testing.T, name string, roles ...models.Role) *models.User {
	t.Helper()

	user := &models.User{
		UserName:     name,
		PasswordHash: "unused",
	}
	if len(roles) == 0 {
		roles = []models.Role{models.RoleStudent}
	}
	if err := user.SetRoles(roles); err != nil {
		t.Fatalf("SetRoles: %v", err)
	}
	if err := e.repo.User().Create(context.Background(), nil, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) createQuestion(t *testing.T, authorID uint, title string) *models.Question {
	t.Helper()

	question := &models.Question{
		Title:    title,
		Content:  "question body",
		AuthorID: authorID,
	}
	if err := e.repo.Question().Create(context.Background(), nil, question); err != nil {
		t.Fatalf("create question: %v", err)
	}
	return question
}

func (e *testEnv) createAnswer(t *testing.T, questionID, authorID uint) *models.Answer {
	t.Helper()

	answer := &models.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    "answer body",
	}
	if err := e.repo.Answer().Create(context.Background(), nil, answer); err != nil {
		t.Fatalf("create answer: %v", err)
	}
	return answer
}

// createReviewerUser creates a user holding the reviewer role together with
// its reviewer profile.
func (e *testEnv) createReviewerUser(t *testing.T, name string) (*models.User, *models.Reviewer) {
	t.Helper()

	user := e.createUser(t, name, models.RoleStudent, models.RoleReviewer)
	reviewer := &models.Reviewer{UserID: user.ID, Weight: 1.0}
	if err := e.repo.Reviewer().Create(context.Background(), nil, reviewer); err != nil {
		t.Fatalf("create reviewer: %v", err)
	}
	return user, reviewer
}

func uintPtr(v uint) *uint    { return &v }
func strPtr(v string) *string { return &v }
