package core

import "github.com/google/uuid"

// NewID returns a new globally unique identifier suitable for run and tool
// call correlation.
func NewID() string {
	return uuid.NewString()
}
