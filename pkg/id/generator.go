package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generate generates a new random node ID.
func Generate() uuid.UUID {
	return uuid.New()
}

// Hex formats an ID as 32 lowercase hexadecimal characters with no separators.
func Hex(u uuid.UUID) string {
	return strings.ReplaceAll(u.String(), "-", "")
}

// Parse accepts both the 32-character hex form and the canonical dashed form.
func Parse(s string) (uuid.UUID, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	return u, nil
}
