package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const sessionIDBytes = 16

// NewSessionID returns an opaque game session identifier. Collisions
// are not expected at this entropy; the store still guards creates.
func NewSessionID() (string, error) {
	bytes := make([]byte, sessionIDBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("game_%s", hex.EncodeToString(bytes)), nil
}
