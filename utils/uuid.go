package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new time-ordered unique identifier string.
// UUIDv7 sorts by creation time, so bid ids are monotonic.
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// v7 only fails when the random source does; fall back to v4
		return uuid.New().String()
	}
	return id.String()
}
