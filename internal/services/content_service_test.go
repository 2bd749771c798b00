package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
)

func TestQuestionLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")

		created, err := env.content.CreateQuestion(ctx, &CreateQuestionRequest{
			Title:   "How do goroutines leak?",
			Content: "Long running worker never exits.",
		}, author.ID)
		if err != nil {
			t.Fatalf("CreateQuestion: %v", err)
		}
		if !created.CanEdit || !created.CanDelete {
			t.Error("author should be able to edit and delete")
		}

		fetched, err := env.content.GetQuestion(ctx, created.ID, author.ID)
		if err != nil {
			t.Fatalf("GetQuestion: %v", err)
		}
		if fetched.Title != "How do goroutines leak?" {
			t.Errorf("title = %q", fetched.Title)
		}
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")

		_, err := env.content.CreateQuestion(ctx, &CreateQuestionRequest{
			Title:   "",
			Content: "body",
		}, author.ID)
		if !IsValidationError(err) {
			t.Errorf("err = %v, want validation error", err)
		}
	})

	t.Run("author edits own question", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		question := env.createQuestion(t, author.ID, "before")

		updated, err := env.content.UpdateQuestion(ctx, question.ID, &UpdateQuestionRequest{
			Title: strPtr("after"),
		}, author.ID)
		if err != nil {
			t.Fatalf("UpdateQuestion: %v", err)
		}
		if updated.Title != "after" {
			t.Errorf("title = %q, want after", updated.Title)
		}
	})

	t.Run("stranger may not edit", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		stranger := env.createUser(t, "stranger")
		question := env.createQuestion(t, author.ID, "mine")

		_, err := env.content.UpdateQuestion(ctx, question.ID, &UpdateQuestionRequest{
			Title: strPtr("taken over"),
		}, stranger.ID)
		if !IsPermissionDenied(err) {
			t.Errorf("err = %v, want permission error", err)
		}
	})

	t.Run("moderator edits any question", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		staff := env.createUser(t, "clerk", models.RoleStaff)
		question := env.createQuestion(t, author.ID, "typo")

		if _, err := env.content.UpdateQuestion(ctx, question.ID, &UpdateQuestionRequest{
			Title: strPtr("fixed"),
		}, staff.ID); err != nil {
			t.Fatalf("UpdateQuestion as staff: %v", err)
		}
	})

	t.Run("delete cascades to answers and reviews", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		question := env.createQuestion(t, author.ID, "doomed")
		answer := env.createAnswer(t, question.ID, author.ID)
		_, reviewer := env.createReviewerUser(t, "critic")

		for _, review := range []*models.Review{
			{ReviewerID: reviewer.ID, QuestionID: &question.ID, Content: "on question"},
			{ReviewerID: reviewer.ID, AnswerID: &answer.ID, Content: "on answer"},
		} {
			if err := env.repo.Review().Create(ctx, nil, review); err != nil {
				t.Fatalf("create review: %v", err)
			}
		}

		if err := env.content.DeleteQuestion(ctx, question.ID, author.ID); err != nil {
			t.Fatalf("DeleteQuestion: %v", err)
		}

		if _, err := env.content.GetQuestion(ctx, question.ID, author.ID); !errors.Is(err, ErrQuestionNotFound) {
			t.Errorf("GetQuestion after delete: %v, want ErrQuestionNotFound", err)
		}
		remaining, err := env.reviews.GetReviewsByReviewer(ctx, reviewer.ID)
		if err != nil {
			t.Fatalf("GetReviewsByReviewer: %v", err)
		}
		if len(remaining) != 0 {
			t.Errorf("reviews remaining = %d, want 0", len(remaining))
		}
	})
}

func TestListAndSearchQuestions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	author := env.createUser(t, "asker")
	other := env.createUser(t, "other")
	env.createQuestion(t, author.ID, "gorm preload fails")
	env.createQuestion(t, other.ID, "gin binding error")
	env.createQuestion(t, author.ID, "redis timeout")

	t.Run("newest first", func(t *testing.T) {
		resp, err := env.content.ListQuestions(ctx, repositories.QuestionFilters{Limit: 10}, author.ID)
		if err != nil {
			t.Fatalf("ListQuestions: %v", err)
		}
		if resp.Total != 3 {
			t.Fatalf("total = %d, want 3", resp.Total)
		}
		if resp.Questions[0].Title != "redis timeout" {
			t.Errorf("first = %q, want the newest question", resp.Questions[0].Title)
		}
	})

	t.Run("filter by author", func(t *testing.T) {
		resp, err := env.content.ListQuestions(ctx, repositories.QuestionFilters{
			AuthorID: uintPtr(author.ID),
			Limit:    10,
		}, author.ID)
		if err != nil {
			t.Fatalf("ListQuestions: %v", err)
		}
		if resp.Total != 2 {
			t.Errorf("total = %d, want 2", resp.Total)
		}
	})

	t.Run("search matches title", func(t *testing.T) {
		resp, err := env.content.SearchQuestions(ctx, "gorm", repositories.QuestionFilters{Limit: 10}, author.ID)
		if err != nil {
			t.Fatalf("SearchQuestions: %v", err)
		}
		if resp.Total != 1 || resp.Questions[0].Title != "gorm preload fails" {
			t.Errorf("got %d results", resp.Total)
		}
	})
}

func TestAnswerLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("create against a real question", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		helper := env.createUser(t, "helper")
		question := env.createQuestion(t, author.ID, "help")

		answer, err := env.content.CreateAnswer(ctx, question.ID, &CreateAnswerRequest{
			Content: "try this",
		}, helper.ID)
		if err != nil {
			t.Fatalf("CreateAnswer: %v", err)
		}
		if answer.QuestionID != question.ID {
			t.Errorf("question_id = %d, want %d", answer.QuestionID, question.ID)
		}
	})

	t.Run("missing question", func(t *testing.T) {
		env := newTestEnv(t)
		helper := env.createUser(t, "helper")

		_, err := env.content.CreateAnswer(ctx, 999, &CreateAnswerRequest{
			Content: "into the void",
		}, helper.ID)
		if !errors.Is(err, ErrQuestionNotFound) {
			t.Errorf("err = %v, want ErrQuestionNotFound", err)
		}
	})

	t.Run("answers come back in posting order", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		helper := env.createUser(t, "helper")
		question := env.createQuestion(t, author.ID, "help")
		first := env.createAnswer(t, question.ID, helper.ID)
		env.createAnswer(t, question.ID, author.ID)

		answers, err := env.content.GetAnswers(ctx, question.ID)
		if err != nil {
			t.Fatalf("GetAnswers: %v", err)
		}
		if len(answers) != 2 || answers[0].ID != first.ID {
			t.Errorf("got %d answers, first ID %d", len(answers), answers[0].ID)
		}
	})

	t.Run("only author or moderator deletes", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		helper := env.createUser(t, "helper")
		question := env.createQuestion(t, author.ID, "help")
		answer := env.createAnswer(t, question.ID, helper.ID)

		if err := env.content.DeleteAnswer(ctx, answer.ID, author.ID); !IsPermissionDenied(err) {
			t.Errorf("err = %v, want permission error", err)
		}
		if err := env.content.DeleteAnswer(ctx, answer.ID, helper.ID); err != nil {
			t.Fatalf("DeleteAnswer as author: %v", err)
		}
	})

	t.Run("deleting the accepted answer reopens the question", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		helper := env.createUser(t, "helper")
		question := env.createQuestion(t, author.ID, "help")
		answer := env.createAnswer(t, question.ID, helper.ID)

		if err := env.content.MarkResolved(ctx, question.ID, answer.ID, author.ID); err != nil {
			t.Fatalf("MarkResolved: %v", err)
		}
		if err := env.content.DeleteAnswer(ctx, answer.ID, helper.ID); err != nil {
			t.Fatalf("DeleteAnswer: %v", err)
		}

		reopened, err := env.content.GetQuestion(ctx, question.ID, author.ID)
		if err != nil {
			t.Fatalf("GetQuestion: %v", err)
		}
		if reopened.Resolved || reopened.ResolvedAnswerID != nil {
			t.Error("question should be reopened after its accepted answer is deleted")
		}
	})
}

func TestResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("author accepts an answer", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		helper := env.createUser(t, "helper")
		question := env.createQuestion(t, author.ID, "help")
		answer := env.createAnswer(t, question.ID, helper.ID)

		if err := env.content.MarkResolved(ctx, question.ID, answer.ID, author.ID); err != nil {
			t.Fatalf("MarkResolved: %v", err)
		}

		resolved, err := env.content.GetQuestion(ctx, question.ID, author.ID)
		if err != nil {
			t.Fatalf("GetQuestion: %v", err)
		}
		if !resolved.Resolved || resolved.ResolvedAnswerID == nil || *resolved.ResolvedAnswerID != answer.ID {
			t.Error("resolution not recorded")
		}

		answers, err := env.content.GetAnswers(ctx, question.ID)
		if err != nil {
			t.Fatalf("GetAnswers: %v", err)
		}
		if !answers[0].Accepted {
			t.Error("accepted answer not flagged in listing")
		}
	})

	t.Run("only the author accepts", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		helper := env.createUser(t, "helper")
		question := env.createQuestion(t, author.ID, "help")
		answer := env.createAnswer(t, question.ID, helper.ID)

		err := env.content.MarkResolved(ctx, question.ID, answer.ID, helper.ID)
		if !IsPermissionDenied(err) {
			t.Errorf("err = %v, want permission error", err)
		}
	})

	t.Run("answer must belong to the question", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		helper := env.createUser(t, "helper")
		question := env.createQuestion(t, author.ID, "help")
		other := env.createQuestion(t, author.ID, "unrelated")
		answer := env.createAnswer(t, other.ID, helper.ID)

		err := env.content.MarkResolved(ctx, question.ID, answer.ID, author.ID)
		if !IsInvalidTarget(err) {
			t.Errorf("err = %v, want ErrInvalidTarget", err)
		}
	})

	t.Run("author reopens", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		helper := env.createUser(t, "helper")
		question := env.createQuestion(t, author.ID, "help")
		answer := env.createAnswer(t, question.ID, helper.ID)

		if err := env.content.MarkResolved(ctx, question.ID, answer.ID, author.ID); err != nil {
			t.Fatalf("MarkResolved: %v", err)
		}
		if err := env.content.UnmarkResolved(ctx, question.ID, author.ID); err != nil {
			t.Fatalf("UnmarkResolved: %v", err)
		}

		reopened, err := env.content.GetQuestion(ctx, question.ID, author.ID)
		if err != nil {
			t.Fatalf("GetQuestion: %v", err)
		}
		if reopened.Resolved {
			t.Error("question still resolved")
		}
	})
}

func TestMarkResolvedWithoutAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("no answers closes directly", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		question := env.createQuestion(t, author.ID, "rhetorical")

		if err := env.content.MarkResolvedWithoutAnswer(ctx, question.ID, false, author.ID); err != nil {
			t.Fatalf("MarkResolvedWithoutAnswer: %v", err)
		}

		closed, err := env.content.GetQuestion(ctx, question.ID, author.ID)
		if err != nil {
			t.Fatalf("GetQuestion: %v", err)
		}
		if !closed.Resolved || closed.ResolvedAnswerID != nil {
			t.Error("question should be closed with no accepted answer")
		}
	})

	t.Run("answers exist and confirm is absent", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		helper := env.createUser(t, "helper")
		question := env.createQuestion(t, author.ID, "has answers")
		env.createAnswer(t, question.ID, helper.ID)

		err := env.content.MarkResolvedWithoutAnswer(ctx, question.ID, false, author.ID)
		if !IsInvalidState(err) {
			t.Errorf("err = %v, want invalid state error", err)
		}
	})

	t.Run("confirm accepts the earliest answer", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "asker")
		helper := env.createUser(t, "helper")
		question := env.createQuestion(t, author.ID, "has answers")
		first := env.createAnswer(t, question.ID, helper.ID)
		env.createAnswer(t, question.ID, helper.ID)

		if err := env.content.MarkResolvedWithoutAnswer(ctx, question.ID, true, author.ID); err != nil {
			t.Fatalf("MarkResolvedWithoutAnswer: %v", err)
		}

		closed, err := env.content.GetQuestion(ctx, question.ID, author.ID)
		if err != nil {
			t.Fatalf("GetQuestion: %v", err)
		}
		if closed.ResolvedAnswerID == nil || *closed.ResolvedAnswerID != first.ID {
			t.Error("earliest answer should be the accepted one")
		}
	})
}

func TestSetClarification(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	author := env.createUser(t, "asker")
	helper := env.createUser(t, "helper")
	question := env.createQuestion(t, author.ID, "unclear")
	answer := env.createAnswer(t, question.ID, helper.ID)

	t.Run("question author flags the answer", func(t *testing.T) {
		if err := env.content.SetClarification(ctx, answer.ID, true, author.ID); err != nil {
			t.Fatalf("SetClarification: %v", err)
		}

		answers, err := env.content.GetAnswers(ctx, question.ID)
		if err != nil {
			t.Fatalf("GetAnswers: %v", err)
		}
		if !answers[0].NeedsClarification {
			t.Error("clarification flag not set")
		}
	})

	t.Run("answer author may not flag", func(t *testing.T) {
		err := env.content.SetClarification(ctx, answer.ID, false, helper.ID)
		if !IsPermissionDenied(err) {
			t.Errorf("err = %v, want permission error", err)
		}
	})

	t.Run("staff flags an answer on another author's question", func(t *testing.T) {
		staff := env.createUser(t, "clerk", models.RoleStaff)

		if err := env.content.SetClarification(ctx, answer.ID, true, staff.ID); err != nil {
			t.Fatalf("SetClarification: %v", err)
		}

		answers, err := env.content.GetAnswers(ctx, question.ID)
		if err != nil {
			t.Fatalf("GetAnswers: %v", err)
		}
		if !answers[0].NeedsClarification {
			t.Error("clarification flag not set by staff")
		}
	})
}
