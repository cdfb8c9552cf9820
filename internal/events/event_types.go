package events

import (
	"time"

	"github.com/gymcore/gym-gateway/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPrincipalProvisioned EventType = "principal_provisioned"
	EventLoginSucceeded       EventType = "login_succeeded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Role      domain.Role `json:"role"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// PrincipalProvisionedPayload payload.
type PrincipalProvisionedPayload struct {
	Provider string `json:"provider"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// LoginSucceededPayload payload.
type LoginSucceededPayload struct {
	Method    string `json:"method"`
	IsNewUser bool   `json:"is_new_user"`
}
