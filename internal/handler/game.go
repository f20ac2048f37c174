package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/twentyq/game-server-go/internal/errors"
	"github.com/twentyq/game-server-go/internal/service"
)

type GameHandler struct {
	gameService *service.GameService
}

func NewGameHandler(gameService *service.GameService) *GameHandler {
	return &GameHandler{
		gameService: gameService,
	}
}

func (h *GameHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/start-game", h.StartGame)
	r.Post("/ask-question/{sessionID}", h.AskQuestion)
	r.Post("/guess/{sessionID}", h.MakeGuess)

	return r
}

type askQuestionRequest struct {
	Question string `json:"question"`
}

type makeGuessRequest struct {
	Guess string `json:"guess"`
}

// POST /start-game
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	result, err := h.gameService.StartGame(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /ask-question/{sessionID}
func (h *GameHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req askQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		writeServiceError(w, apperrors.MissingRequired())
		return
	}

	result, err := h.gameService.AskQuestion(r.Context(), sessionID, req.Question)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /guess/{sessionID}
func (h *GameHandler) MakeGuess(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req makeGuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Guess) == "" {
		writeServiceError(w, apperrors.MissingRequired())
		return
	}

	result, err := h.gameService.MakeGuess(r.Context(), sessionID, req.Guess)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func logInternal(err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code == apperrors.ErrCodeInternal || appErr.Code == apperrors.ErrCodeStore {
		log.Error().Err(err).Msg("game operation failed")
	}
}
