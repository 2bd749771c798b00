package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
)

func newExportEnv(t *testing.T) (*testEnv, ExportService) {
	t.Helper()

	env := newTestEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return env, NewExportService(env.repo, logger)
}

func TestExportUsers(t *testing.T) {
	ctx := context.Background()
	env, exports := newExportEnv(t)

	staff := env.createUser(t, "clerk", models.RoleStaff)
	env.createUser(t, "alice")

	t.Run("students may not export", func(t *testing.T) {
		alice, err := env.repo.User().GetByUserName(ctx, nil, "alice")
		if err != nil {
			t.Fatalf("GetByUserName: %v", err)
		}
		if _, err := exports.ExportUsers(ctx, alice.ID); !IsPermissionDenied(err) {
			t.Errorf("err = %v, want permission error", err)
		}
	})

	t.Run("workbook holds one row per account", func(t *testing.T) {
		data, err := exports.ExportUsers(ctx, staff.ID)
		if err != nil {
			t.Fatalf("ExportUsers: %v", err)
		}

		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("OpenReader: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows("Users")
		if err != nil {
			t.Fatalf("GetRows: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("rows = %d, want header plus two accounts", len(rows))
		}
		if rows[0][1] != "User Name" {
			t.Errorf("header = %v", rows[0])
		}
	})
}

func TestExportQuestions(t *testing.T) {
	ctx := context.Background()
	env, exports := newExportEnv(t)

	staff := env.createUser(t, "clerk", models.RoleStaff)
	author := env.createUser(t, "asker")
	question := env.createQuestion(t, author.ID, "exported")
	answer := env.createAnswer(t, question.ID, author.ID)
	if err := env.content.MarkResolved(ctx, question.ID, answer.ID, author.ID); err != nil {
		t.Fatalf("MarkResolved: %v", err)
	}

	data, err := exports.ExportQuestions(ctx, staff.ID)
	if err != nil {
		t.Fatalf("ExportQuestions: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Questions")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header plus one question", len(rows))
	}
	if rows[1][1] != "exported" || rows[1][3] != "TRUE" {
		t.Errorf("row = %v", rows[1])
	}
}
