package common

import (
	"github.com/google/uuid"
)

// NewCycleID generates a unique pipeline cycle ID with the "cycle_" prefix
// Format: cycle_<uuid>
func NewCycleID() string {
	return "cycle_" + uuid.New().String()
}
