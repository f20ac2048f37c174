package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twentyq/game-server-go/internal/model"
)

func oracleServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", "test-model")
}

func completionWith(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}
}

func TestClassify(t *testing.T) {
	t.Run("maps yes and no literals", func(t *testing.T) {
		assert.Equal(t, model.AnswerYes,
			oracleServer(t, completionWith("yes")).Classify(context.Background(), "Is it alive?", "chicken"))
		assert.Equal(t, model.AnswerNo,
			oracleServer(t, completionWith("no")).Classify(context.Background(), "Is it a place?", "chicken"))
	})

	t.Run("trims and lowercases before matching", func(t *testing.T) {
		client := oracleServer(t, completionWith("  YES\n"))
		assert.Equal(t, model.AnswerYes, client.Classify(context.Background(), "Is it alive?", "chicken"))
	})

	t.Run("anything but the exact literals is unknown", func(t *testing.T) {
		for _, raw := range []string{"Yes.", "yes!", "maybe", "no idea", "", "yes no"} {
			client := oracleServer(t, completionWith(raw))
			assert.Equal(t, model.AnswerUnknown,
				client.Classify(context.Background(), "Is it alive?", "chicken"),
				"raw output %q must map to unknown", raw)
		}
	})

	t.Run("non-2xx response is unknown", func(t *testing.T) {
		client := oracleServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		assert.Equal(t, model.AnswerUnknown, client.Classify(context.Background(), "Is it alive?", "chicken"))
	})

	t.Run("api error payload is unknown", func(t *testing.T) {
		client := oracleServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "rate limited"},
			})
		})
		assert.Equal(t, model.AnswerUnknown, client.Classify(context.Background(), "Is it alive?", "chicken"))
	})

	t.Run("unreachable endpoint is unknown, not an error", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1/v1/chat/completions", "k", "m")
		assert.Equal(t, model.AnswerUnknown, client.Classify(context.Background(), "Is it alive?", "chicken"))
	})

	t.Run("request carries the secret word and low temperature", func(t *testing.T) {
		var captured chatRequest
		client := oracleServer(t, func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &captured))
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			completionWith("yes")(w, r)
		})

		client.Classify(context.Background(), "Is it a musical instrument?", "piano")

		assert.Equal(t, "test-model", captured.Model)
		assert.InDelta(t, 0.1, captured.Temperature, 0.001)
		require.Len(t, captured.Messages, 1)
		assert.Contains(t, captured.Messages[0].Content, `"piano"`)
		assert.Contains(t, captured.Messages[0].Content, "Is it a musical instrument?")
	})
}
