package domain

import "github.com/google/uuid"

// NewID generates a synthetic identifier for a resource or profile the
// parser didn't name explicitly. The surface syntax normally requires
// explicit ids; this exists so the core never panics on a gap left by a
// lenient front end.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
