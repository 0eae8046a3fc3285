package domain

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID returns a random v4 uuid as 32 lowercase hex characters.
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
