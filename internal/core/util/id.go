package util

import (
	"github.com/google/uuid"
)

// GenerateID returns a random unique identifier. Ids are never reused.
func GenerateID() string {
	return uuid.NewString()
}

// GeneratePrefixedID returns an id of the form "<prefix>-<uuid>".
func GeneratePrefixedID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
