package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionID(t *testing.T) {
	t.Run("generates ids in the game_<hex> format", func(t *testing.T) {
		id, err := NewSessionID()
		require.NoError(t, err)

		pattern := regexp.MustCompile(`^game_[0-9a-f]{32}$`)
		assert.True(t, pattern.MatchString(id), "unexpected id format: %s", id)
	})

	t.Run("generates unique ids", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id, err := NewSessionID()
			require.NoError(t, err)
			assert.False(t, seen[id], "duplicate id generated: %s", id)
			seen[id] = true
		}
	})
}
