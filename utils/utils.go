package utils

import (
	"github.com/google/uuid"
)

// NewID returns a random identifier for orders and users.
func NewID() string {
	return uuid.NewString()
}

// Contains reports whether value is present in slice.
func Contains(slice []string, value string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}
