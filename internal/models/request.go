package models

import (
	"time"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ReviewerRequest is a student's petition for the reviewer role. Approved and
// rejected are terminal; a rejected student retries by submitting a new
// request, never by reopening this one.
type ReviewerRequest struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	UserID        uint          `json:"user_id" gorm:"not null;index"`
	Justification string        `json:"justification" gorm:"type:text;not null" validate:"required"`
	Status        RequestStatus `json:"status" gorm:"not null;default:pending;index"`

	// Instructor decision details. Comments are mandatory on rejection.
	InstructorComments *string    `json:"instructor_comments" gorm:"type:text"`
	ReviewedBy         *uint      `json:"reviewed_by"`
	ReviewedAt         *time.Time `json:"reviewed_at"`

	RequestedAt time.Time `json:"requested_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (ReviewerRequest) TableName() string {
	return "reviewer_requests"
}

func (r *ReviewerRequest) IsPending() bool {
	return r.Status == RequestPending
}
