package models

import (
	"time"
)

// Question is the root content aggregate. Answers belong to it and are
// deleted with it; at most one answer may be designated as its resolution.
type Question struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Title    string `json:"title" gorm:"not null;size:255" validate:"required"`
	Content  string `json:"content" gorm:"type:text;not null" validate:"required"`
	AuthorID uint   `json:"author_id" gorm:"not null;index"`

	// Resolution state. Resolved may be true with a nil ResolvedAnswerID
	// when a question was explicitly closed without selecting an answer.
	Resolved         bool  `json:"resolved" gorm:"default:false;index"`
	ResolvedAnswerID *uint `json:"resolved_answer_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Author  *User    `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

type Answer struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	AuthorID   uint   `json:"author_id" gorm:"not null;index"`
	Content    string `json:"content" gorm:"type:text;not null" validate:"required"`

	// Flagged by moderators when the answer needs clarification before it
	// can be considered for resolution.
	NeedsClarification bool `json:"needs_clarification" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

func (Answer) TableName() string {
	return "answers"
}
