package models

import (
	"time"
)

// Message is a directed, immutable note between two users, optionally linked
// to a single question or answer (or neither). Only the read flag ever
// changes after send, and only the receiver may flip it.
type Message struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	SenderID   uint `json:"sender_id" gorm:"not null;index"`
	ReceiverID uint `json:"receiver_id" gorm:"not null;index"`

	RelatedQuestionID *uint `json:"related_question_id"`
	RelatedAnswerID   *uint `json:"related_answer_id"`

	Content string `json:"content" gorm:"type:text;not null" validate:"required"`
	IsRead  bool   `json:"is_read" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Sender   *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Receiver *User `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
}

func (Message) TableName() string {
	return "messages"
}
