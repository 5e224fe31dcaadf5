package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRegisteredEvent is published to the user_events topic after a
// successful registration. Consumers (notification service) key off UserID.
type UserRegisteredEvent struct {
	Type         string    `json:"type"`
	UserID       uuid.UUID `json:"userId"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	UserType     string    `json:"userType"`
	RegisteredAt time.Time `json:"registeredAt"`
}

const EventTypeUserRegistered = "user_registered"

// EventPublisher is the slice of the kafka producer the orchestrator needs.
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
}
