package validator

// RegisterRequest carries a new account registration.
type RegisterRequest struct {
	UserName   string  `json:"user_name" validate:"required,user_name"`
	Password   string  `json:"password" validate:"required,password_strength"`
	InviteCode *string `json:"invite_code" validate:"omitempty,min=1"`
}

// LoginRequest carries an authentication attempt.
type LoginRequest struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest carries a one-time-password login plus the new
// password to set.
type PasswordResetRequest struct {
	UserName    string `json:"user_name" validate:"required"`
	OneTimeCode string `json:"one_time_code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,password_strength"`
}

// UpdateRolesRequest replaces a user's role set.
type UpdateRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,role_name"`
}

// InvitationCreateRequest mints an invitation code carrying initial roles.
type InvitationCreateRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,role_name"`
}

// QuestionCreateRequest carries a new question.
type QuestionCreateRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// QuestionUpdateRequest carries a partial question edit.
type QuestionUpdateRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content" validate:"omitempty,min=1,max=5000"`
}

// AnswerCreateRequest carries a new answer to a question.
type AnswerCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// AnswerUpdateRequest carries a partial answer edit.
type AnswerUpdateRequest struct {
	Content            *string `json:"content" validate:"omitempty,min=1,max=5000"`
	NeedsClarification *bool   `json:"needs_clarification"`
}

// ReviewCreateRequest attaches a critique to exactly one subject.
type ReviewCreateRequest struct {
	QuestionID *uint  `json:"question_id"`
	AnswerID   *uint  `json:"answer_id"`
	Content    string `json:"content" validate:"required,min=1,max=5000"`
}

// ReviewUpdateRequest rewrites a review's text.
type ReviewUpdateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// PromotionCreateRequest opens a reviewer-role request.
type PromotionCreateRequest struct {
	Justification string `json:"justification" validate:"required,min=1,max=2000"`
}

// PromotionDecisionRequest carries an approve or reject decision. Comments
// are optional on approval and mandatory on rejection; the business
// validator enforces the asymmetry.
type PromotionDecisionRequest struct {
	Comments *string `json:"comments" validate:"omitempty,max=2000"`
}

// MessageSendRequest carries a private message, optionally anchored to
// content.
type MessageSendRequest struct {
	ReceiverID        uint    `json:"receiver_id" validate:"required"`
	Content           string  `json:"content" validate:"required,min=1,max=5000"`
	RelatedQuestionID *uint   `json:"related_question_id"`
	RelatedAnswerID   *uint   `json:"related_answer_id"`
}

// WeightUpdateRequest adjusts a reviewer's scoring weight.
type WeightUpdateRequest struct {
	Weight float64 `json:"weight" validate:"gte=0"`
}
