package models

import (
	"time"
)

// Reviewer is the one-to-one trust record attached to a user holding the
// reviewer role. Weight scales the influence of the reviewer's reviews and is
// moderator-adjustable; new reviewers start at 1.0.
type Reviewer struct {
	ID     uint    `json:"id" gorm:"primaryKey"`
	UserID uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	Weight float64 `json:"weight" gorm:"default:1.0" validate:"gte=0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Reviewer) TableName() string {
	return "reviewers"
}

// Review critiques exactly one subject: either a question or an answer,
// never both and never neither. The unused reference is nil.
type Review struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ReviewerID uint   `json:"reviewer_id" gorm:"not null;index"`
	QuestionID *uint  `json:"question_id" gorm:"index"`
	AnswerID   *uint  `json:"answer_id" gorm:"index"`
	Content    string `json:"content" gorm:"type:text;not null" validate:"required"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Reviewer *Reviewer `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
}

func (Review) TableName() string {
	return "reviews"
}

// TargetsQuestion reports whether the review critiques a question.
func (r *Review) TargetsQuestion() bool {
	return r.QuestionID != nil && r.AnswerID == nil
}

// TargetsAnswer reports whether the review critiques an answer.
func (r *Review) TargetsAnswer() bool {
	return r.AnswerID != nil && r.QuestionID == nil
}

// HasValidTarget enforces the exactly-one-subject rule.
func (r *Review) HasValidTarget() bool {
	return r.TargetsQuestion() || r.TargetsAnswer()
}
