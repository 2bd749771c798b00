package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
)

func TestSubmitRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("student opens a request", func(t *testing.T) {
		env := newTestEnv(t)
		student := env.createUser(t, "hopeful")

		request, err := env.promotions.SubmitRequest(ctx, &CreatePromotionRequest{
			Justification: "I reviewed half the class projects already.",
		}, student.ID)
		if err != nil {
			t.Fatalf("SubmitRequest: %v", err)
		}
		if request.Status != models.RequestPending {
			t.Errorf("status = %q, want pending", request.Status)
		}
		if request.RequestedAt.IsZero() {
			t.Error("RequestedAt not stamped on submission")
		}
	})

	t.Run("justification is required", func(t *testing.T) {
		env := newTestEnv(t)
		student := env.createUser(t, "hopeful")

		_, err := env.promotions.SubmitRequest(ctx, &CreatePromotionRequest{}, student.ID)
		if !IsValidationError(err) {
			t.Errorf("err = %v, want validation error", err)
		}
	})

	t.Run("non-students may not apply", func(t *testing.T) {
		env := newTestEnv(t)
		staff := env.createUser(t, "clerk", models.RoleStaff)

		_, err := env.promotions.SubmitRequest(ctx, &CreatePromotionRequest{
			Justification: "promote me",
		}, staff.ID)
		if !IsPermissionDenied(err) {
			t.Errorf("err = %v, want permission error", err)
		}
	})

	t.Run("existing reviewers may not apply again", func(t *testing.T) {
		env := newTestEnv(t)
		user, _ := env.createReviewerUser(t, "critic")

		_, err := env.promotions.SubmitRequest(ctx, &CreatePromotionRequest{
			Justification: "again",
		}, user.ID)
		if !IsInvalidState(err) {
			t.Errorf("err = %v, want invalid state error", err)
		}
	})

	t.Run("one pending request at a time", func(t *testing.T) {
		env := newTestEnv(t)
		student := env.createUser(t, "hopeful")

		if _, err := env.promotions.SubmitRequest(ctx, &CreatePromotionRequest{
			Justification: "first",
		}, student.ID); err != nil {
			t.Fatalf("first SubmitRequest: %v", err)
		}

		_, err := env.promotions.SubmitRequest(ctx, &CreatePromotionRequest{
			Justification: "second",
		}, student.ID)
		if !errors.Is(err, ErrDuplicatePendingRequest) {
			t.Errorf("err = %v, want ErrDuplicatePendingRequest", err)
		}
	})
}

func TestListPendingRequests(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	instructor := env.createUser(t, "teach", models.RoleInstructor)
	first := env.createUser(t, "first")
	second := env.createUser(t, "second")

	for _, student := range []*models.User{first, second} {
		if _, err := env.promotions.SubmitRequest(ctx, &CreatePromotionRequest{
			Justification: "let me review",
		}, student.ID); err != nil {
			t.Fatalf("SubmitRequest: %v", err)
		}
	}

	t.Run("oldest first for the decision queue", func(t *testing.T) {
		pending, err := env.promotions.ListPending(ctx, instructor.ID)
		if err != nil {
			t.Fatalf("ListPending: %v", err)
		}
		if len(pending) != 2 || pending[0].UserID != first.ID {
			t.Errorf("got %d requests, first from user %d", len(pending), pending[0].UserID)
		}
	})

	t.Run("students may not see the queue", func(t *testing.T) {
		if _, err := env.promotions.ListPending(ctx, first.ID); !IsPermissionDenied(err) {
			t.Errorf("err = %v, want permission error", err)
		}
	})
}

func TestApproveRequest(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	instructor := env.createUser(t, "teach", models.RoleInstructor)
	student := env.createUser(t, "hopeful")

	submitted, err := env.promotions.SubmitRequest(ctx, &CreatePromotionRequest{
		Justification: "let me review",
	}, student.ID)
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}

	decided, err := env.promotions.Approve(ctx, submitted.ID, &PromotionDecisionRequest{}, instructor.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	t.Run("status and audit fields", func(t *testing.T) {
		if decided.Status != models.RequestApproved {
			t.Errorf("status = %q, want approved", decided.Status)
		}
		if decided.ReviewedBy == nil || *decided.ReviewedBy != instructor.ID {
			t.Error("ReviewedBy not recorded")
		}
		if decided.ReviewedAt == nil {
			t.Error("ReviewedAt not recorded")
		}
	})

	t.Run("reviewer role is granted", func(t *testing.T) {
		promoted, err := env.users.GetByID(ctx, student.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		found := false
		for _, role := range promoted.Roles {
			if role == "reviewer" {
				found = true
			}
		}
		if !found {
			t.Errorf("roles = %v, want reviewer included", promoted.Roles)
		}
	})

	t.Run("profile starts at weight one", func(t *testing.T) {
		profile, err := env.reviews.GetReviewerByUser(ctx, student.ID)
		if err != nil {
			t.Fatalf("GetReviewerByUser: %v", err)
		}
		if profile.Weight != 1.0 {
			t.Errorf("weight = %v, want 1.0", profile.Weight)
		}
	})

	t.Run("second decision loses", func(t *testing.T) {
		if _, err := env.promotions.Approve(ctx, submitted.ID, &PromotionDecisionRequest{}, instructor.ID); !IsInvalidState(err) {
			t.Errorf("approve again err = %v, want invalid state error", err)
		}
		if _, err := env.promotions.Reject(ctx, submitted.ID, &PromotionDecisionRequest{
			Comments: strPtr("too late"),
		}, instructor.ID); !IsInvalidState(err) {
			t.Errorf("reject after approve err = %v, want invalid state error", err)
		}
	})
}

func TestRejectRequest(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	instructor := env.createUser(t, "teach", models.RoleInstructor)
	student := env.createUser(t, "hopeful")

	submitted, err := env.promotions.SubmitRequest(ctx, &CreatePromotionRequest{
		Justification: "let me review",
	}, student.ID)
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}

	t.Run("rejection requires comments", func(t *testing.T) {
		if _, err := env.promotions.Reject(ctx, submitted.ID, &PromotionDecisionRequest{}, instructor.ID); !IsValidationError(err) {
			t.Errorf("err = %v, want validation error", err)
		}
		if _, err := env.promotions.Reject(ctx, submitted.ID, &PromotionDecisionRequest{
			Comments: strPtr("   "),
		}, instructor.ID); !IsValidationError(err) {
			t.Errorf("blank comments err = %v, want validation error", err)
		}
	})

	t.Run("rejection with comments", func(t *testing.T) {
		decided, err := env.promotions.Reject(ctx, submitted.ID, &PromotionDecisionRequest{
			Comments: strPtr("not enough activity yet"),
		}, instructor.ID)
		if err != nil {
			t.Fatalf("Reject: %v", err)
		}
		if decided.Status != models.RequestRejected {
			t.Errorf("status = %q, want rejected", decided.Status)
		}
		if decided.InstructorComments == nil || *decided.InstructorComments != "not enough activity yet" {
			t.Error("comments not recorded")
		}
	})

	t.Run("rejection does not grant the role", func(t *testing.T) {
		user, err := env.users.GetByID(ctx, student.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		for _, role := range user.Roles {
			if role == "reviewer" {
				t.Error("rejected applicant holds the reviewer role")
			}
		}
	})

	t.Run("requester sees the decision", func(t *testing.T) {
		mine, err := env.promotions.GetByUser(ctx, student.ID)
		if err != nil {
			t.Fatalf("GetByUser: %v", err)
		}
		if len(mine) != 1 || mine[0].Status != models.RequestRejected {
			t.Errorf("got %d requests", len(mine))
		}
	})
}

func TestDecisionPermissions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	instructor := env.createUser(t, "teach", models.RoleInstructor)
	student := env.createUser(t, "hopeful")
	bystander := env.createUser(t, "bystander")

	submitted, err := env.promotions.SubmitRequest(ctx, &CreatePromotionRequest{
		Justification: "let me review",
	}, student.ID)
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}

	if _, err := env.promotions.Approve(ctx, submitted.ID, &PromotionDecisionRequest{}, bystander.ID); !IsPermissionDenied(err) {
		t.Errorf("approve err = %v, want permission error", err)
	}

	if _, err := env.promotions.Approve(ctx, 999, &PromotionDecisionRequest{}, instructor.ID); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("missing request err = %v, want ErrRequestNotFound", err)
	}
}
