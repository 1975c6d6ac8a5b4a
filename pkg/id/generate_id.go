package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns a random (v4) identifier as exactly 32 lowercase hex
// characters, i.e. a UUID without its hyphens.
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Valid reports whether s has the NewID32 shape.
func Valid(s string) bool {
	if len(s) != 32 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
