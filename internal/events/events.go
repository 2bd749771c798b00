package events

import (
	"context"
	"time"
)

// Event is the envelope every published domain event travels in.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// EventSource identifies this service in published events.
const EventSource = "qa-service"

// EventVersion is the current envelope schema version.
const EventVersion = "1.0"

// Event types published by the service.
const (
	EventQuestionCreated  = "content.question_created"
	EventQuestionResolved = "content.question_resolved"
	EventAnswerCreated    = "content.answer_created"
	EventReviewCreated    = "review.review_created"
	EventRequestSubmitted = "promotion.request_submitted"
	EventRequestDecided   = "promotion.request_decided"
	EventMessageSent      = "messaging.message_sent"
	EventUserRegistered   = "identity.user_registered"
	EventUserRolesChanged = "identity.user_roles_changed"
)

// EventPublisher publishes domain events to the configured transport.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// Topics group related event types onto broker topics.
const (
	TopicContent   = "qa.content"
	TopicReviews   = "qa.reviews"
	TopicWorkflow  = "qa.workflow"
	TopicMessaging = "qa.messaging"
	TopicIdentity  = "qa.identity"
)
