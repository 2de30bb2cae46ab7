package models

import "time"

// Severity of a user-facing notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a transient message shown to users until its TTL elapses.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      Severity  `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
