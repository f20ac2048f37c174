package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twentyq/game-server-go/internal/model"
	"github.com/twentyq/game-server-go/internal/service"
)

// fakeGameRepo is a minimal in-memory store for handler tests.
type fakeGameRepo struct {
	sessions map[string]*model.GameSession
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{sessions: make(map[string]*model.GameSession)}
}

func (r *fakeGameRepo) Create(ctx context.Context, session *model.GameSession) error {
	copied := *session
	r.sessions[session.SessionID] = &copied
	return nil
}

func (r *fakeGameRepo) Find(ctx context.Context, sessionID string) (*model.GameSession, error) {
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (r *fakeGameRepo) UpdateProgress(ctx context.Context, sessionID string, questions []string, answers map[string]model.Answer, currentQuestion int) error {
	session := r.sessions[sessionID]
	session.PreviousQuestions = questions
	session.PreviousAnswers = answers
	session.CurrentQuestion = currentQuestion
	return nil
}

func (r *fakeGameRepo) UpdateGuesses(ctx context.Context, sessionID string, guesses []string) error {
	r.sessions[sessionID].GuessesMade = guesses
	return nil
}

func (r *fakeGameRepo) Complete(ctx context.Context, sessionID string, guesses []string, finalGuess string) error {
	session := r.sessions[sessionID]
	session.GuessesMade = guesses
	session.FinalGuess = finalGuess
	session.IsComplete = true
	return nil
}

func (r *fakeGameRepo) ScanCompletedBefore(ctx context.Context, cutoff time.Time) ([]model.GameSession, error) {
	return nil, nil
}

func (r *fakeGameRepo) Delete(ctx context.Context, sessionID string) error {
	delete(r.sessions, sessionID)
	return nil
}

type fixedOracle struct{ answer model.Answer }

func (o fixedOracle) Classify(ctx context.Context, question, secretWord string) model.Answer {
	return o.answer
}

type fixedWords struct{ today, yesterday string }

func (w fixedWords) WordOfDay(ctx context.Context) string       { return w.today }
func (w fixedWords) WordOfYesterday(ctx context.Context) string { return w.yesterday }

func newTestRouter(repo *fakeGameRepo) http.Handler {
	svc := service.NewGameService(repo, fixedOracle{answer: model.AnswerYes}, fixedWords{today: "piano", yesterday: "guitar"})
	return NewGameHandler(svc).Routes()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func startGame(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/start-game", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody(t, rec)["session_id"].(string)
}

func TestStartGameEndpoint(t *testing.T) {
	t.Run("returns session id, welcome and yesterdays word", func(t *testing.T) {
		router := newTestRouter(newFakeGameRepo())

		rec := doJSON(t, router, http.MethodPost, "/start-game", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.NotEmpty(t, body["session_id"])
		assert.Equal(t, "Welcome to 20 Questions! Think of your questions carefully...", body["message"])
		assert.Equal(t, "guitar", body["yesterdays_word"])
	})

	t.Run("yesterdays word serializes as null when unscheduled", func(t *testing.T) {
		svc := service.NewGameService(newFakeGameRepo(), fixedOracle{answer: model.AnswerYes}, fixedWords{today: "piano"})
		router := NewGameHandler(svc).Routes()

		rec := doJSON(t, router, http.MethodPost, "/start-game", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		value, present := body["yesterdays_word"]
		assert.True(t, present)
		assert.Nil(t, value)
	})
}

func TestAskQuestionEndpoint(t *testing.T) {
	t.Run("answers a question", func(t *testing.T) {
		router := newTestRouter(newFakeGameRepo())
		id := startGame(t, router)

		rec := doJSON(t, router, http.MethodPost, "/ask-question/"+id, map[string]string{"question": "Is it a musical instrument?"})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "yes", body["answer"])
		assert.Equal(t, float64(19), body["questions_remaining"])
		assert.Equal(t, float64(1), body["question_number"])
	})

	t.Run("missing question field is a 400", func(t *testing.T) {
		router := newTestRouter(newFakeGameRepo())
		id := startGame(t, router)

		rec := doJSON(t, router, http.MethodPost, "/ask-question/"+id, map[string]string{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing required fields", decodeBody(t, rec)["error"])
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		router := newTestRouter(newFakeGameRepo())
		id := startGame(t, router)

		req := httptest.NewRequest(http.MethodPost, "/ask-question/"+id, bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown session is a 404", func(t *testing.T) {
		router := newTestRouter(newFakeGameRepo())

		rec := doJSON(t, router, http.MethodPost, "/ask-question/game_missing", map[string]string{"question": "Is it alive?"})
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Game not found", decodeBody(t, rec)["error"])
	})

	t.Run("question limit is a 400", func(t *testing.T) {
		repo := newFakeGameRepo()
		router := newTestRouter(repo)
		id := startGame(t, router)
		repo.sessions[id].CurrentQuestion = 20

		rec := doJSON(t, router, http.MethodPost, "/ask-question/"+id, map[string]string{"question": "Is it alive?"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No more questions allowed", decodeBody(t, rec)["error"])
	})

	t.Run("completed game is a 400", func(t *testing.T) {
		repo := newFakeGameRepo()
		router := newTestRouter(repo)
		id := startGame(t, router)
		repo.sessions[id].IsComplete = true

		rec := doJSON(t, router, http.MethodPost, "/ask-question/"+id, map[string]string{"question": "Is it alive?"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Game is already complete", decodeBody(t, rec)["error"])
	})
}

func TestMakeGuessEndpoint(t *testing.T) {
	t.Run("correct guess ends the game", func(t *testing.T) {
		router := newTestRouter(newFakeGameRepo())
		id := startGame(t, router)

		rec := doJSON(t, router, http.MethodPost, "/guess/"+id, map[string]string{"guess": "piano"})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "correct", body["result"])
		assert.Equal(t, true, body["game_over"])
		assert.Equal(t, "Congratulations! You guessed correctly!", body["message"])
	})

	t.Run("wrong guess reports guesses remaining", func(t *testing.T) {
		router := newTestRouter(newFakeGameRepo())
		id := startGame(t, router)

		rec := doJSON(t, router, http.MethodPost, "/guess/"+id, map[string]string{"guess": "guitar"})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "incorrect", body["result"])
		assert.Equal(t, false, body["game_over"])
		assert.Equal(t, float64(1), body["guesses_remaining"])
		assert.Equal(t, "Incorrect. You have 1 guess(es) remaining.", body["message"])
	})

	t.Run("second wrong guess ends the game", func(t *testing.T) {
		router := newTestRouter(newFakeGameRepo())
		id := startGame(t, router)

		doJSON(t, router, http.MethodPost, "/guess/"+id, map[string]string{"guess": "guitar"})
		rec := doJSON(t, router, http.MethodPost, "/guess/"+id, map[string]string{"guess": "violin"})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "incorrect", body["result"])
		assert.Equal(t, true, body["game_over"])
		assert.Equal(t, float64(0), body["guesses_remaining"])
		assert.Equal(t, "Game Over! Tomorrow, we will share the word!", body["message"])
	})

	t.Run("missing guess field is a 400", func(t *testing.T) {
		router := newTestRouter(newFakeGameRepo())
		id := startGame(t, router)

		rec := doJSON(t, router, http.MethodPost, "/guess/"+id, map[string]string{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing required fields", decodeBody(t, rec)["error"])
	})

	t.Run("unknown session is a 404", func(t *testing.T) {
		router := newTestRouter(newFakeGameRepo())

		rec := doJSON(t, router, http.MethodPost, "/guess/game_missing", map[string]string{"guess": "piano"})
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Game not found", decodeBody(t, rec)["error"])
	})

	t.Run("guess after completion is a 400", func(t *testing.T) {
		router := newTestRouter(newFakeGameRepo())
		id := startGame(t, router)

		doJSON(t, router, http.MethodPost, "/guess/"+id, map[string]string{"guess": "piano"})
		rec := doJSON(t, router, http.MethodPost, "/guess/"+id, map[string]string{"guess": "piano"})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Game is already complete", decodeBody(t, rec)["error"])
	})
}
