package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/twentyq/game-server-go/internal/errors"
	"github.com/twentyq/game-server-go/internal/model"
	"github.com/twentyq/game-server-go/internal/repository"
	"github.com/twentyq/game-server-go/internal/util"
)

const (
	maxQuestions = 20
	maxGuesses   = 2
)

const welcomeMessage = "Welcome to 20 Questions! Think of your questions carefully..."

const (
	msgGameNotFound   = "Game not found"
	msgGameComplete   = "Game is already complete"
	msgQuestionLimit  = "No more questions allowed"
	msgGuessCorrect   = "Congratulations! You guessed correctly!"
	msgGuessGameOver  = "Game Over! Tomorrow, we will share the word!"
	msgGuessIncorrect = "Incorrect. You have %d guess(es) remaining."
)

// Oracle answers a yes/no question about the secret word. It must be
// total: a fault maps to AnswerUnknown, never to an error.
type Oracle interface {
	Classify(ctx context.Context, question, secretWord string) model.Answer
}

// WordProvider resolves the daily secret word and yesterday's word.
type WordProvider interface {
	WordOfDay(ctx context.Context) string
	WordOfYesterday(ctx context.Context) string
}

type StartGameResult struct {
	SessionID      string  `json:"session_id"`
	Message        string  `json:"message"`
	YesterdaysWord *string `json:"yesterdays_word"`
}

type AskQuestionResult struct {
	Answer             model.Answer `json:"answer"`
	QuestionsRemaining int          `json:"questions_remaining"`
	QuestionNumber     int          `json:"question_number"`
}

type MakeGuessResult struct {
	Result           string `json:"result"`
	GameOver         bool   `json:"game_over"`
	GuessesRemaining int    `json:"guesses_remaining"`
	Message          string `json:"message"`
}

// GameService owns the session state machine. Each operation is one
// read-modify-write against a single session record; the record is
// never cached across calls. Concurrent operations on one session are
// last-write-wins on the fields they update.
type GameService struct {
	games  repository.GameRepository
	oracle Oracle
	words  WordProvider
}

func NewGameService(games repository.GameRepository, oracle Oracle, words WordProvider) *GameService {
	return &GameService{
		games:  games,
		oracle: oracle,
		words:  words,
	}
}

// StartGame creates a fresh session with today's word. Yesterday's
// word is returned for display only and is not part of the record.
func (s *GameService) StartGame(ctx context.Context) (*StartGameResult, error) {
	sessionID, err := util.NewSessionID()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "Internal server error", err)
	}

	session := &model.GameSession{
		SessionID:         sessionID,
		WordOfDay:         s.words.WordOfDay(ctx),
		StartTime:         time.Now(),
		PreviousQuestions: []string{},
		PreviousAnswers:   map[string]model.Answer{},
		GuessesMade:       []string{},
	}

	if err := s.games.Create(ctx, session); err != nil {
		if errors.Is(err, repository.ErrSessionExists) {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "Internal server error", err)
		}
		return nil, apperrors.Store("Internal server error", err)
	}

	result := &StartGameResult{
		SessionID: sessionID,
		Message:   welcomeMessage,
	}
	if yesterday := s.words.WordOfYesterday(ctx); yesterday != "" {
		result.YesterdaysWord = &yesterday
	}

	log.Info().Str("sessionID", sessionID).Msg("game started")
	return result, nil
}

// AskQuestion classifies one question against the session's secret
// word and records it. An oracle fault still counts as an asked
// question with answer "unknown".
func (s *GameService) AskQuestion(ctx context.Context, sessionID, question string) (*AskQuestionResult, error) {
	session, err := s.loadActiveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.CurrentQuestion >= maxQuestions {
		return nil, apperrors.InvalidState(msgQuestionLimit)
	}

	answer := s.oracle.Classify(ctx, question, session.WordOfDay)

	// The answer is keyed by the pre-increment ordinal: the first
	// question lands under question_0.
	session.PreviousQuestions = append(session.PreviousQuestions, question)
	session.PreviousAnswers[model.QuestionKey(session.CurrentQuestion)] = answer
	session.CurrentQuestion++

	err = s.games.UpdateProgress(ctx, sessionID,
		session.PreviousQuestions, session.PreviousAnswers, session.CurrentQuestion)
	if err != nil {
		return nil, apperrors.Store("Internal server error", err)
	}

	log.Info().
		Str("sessionID", sessionID).
		Int("questionNumber", session.CurrentQuestion).
		Str("answer", string(answer)).
		Msg("question answered")

	return &AskQuestionResult{
		Answer:             answer,
		QuestionsRemaining: maxQuestions - session.CurrentQuestion,
		QuestionNumber:     session.CurrentQuestion,
	}, nil
}

// MakeGuess records one guess. There is no limit precheck; the 2-guess
// budget is enforced by the completion rule. The session completes on
// a correct guess at any point, or when the 2nd guess is consumed.
func (s *GameService) MakeGuess(ctx context.Context, sessionID, guess string) (*MakeGuessResult, error) {
	session, err := s.loadActiveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.GuessesMade = append(session.GuessesMade, guess)
	isCorrect := strings.EqualFold(guess, session.WordOfDay)

	if isCorrect || len(session.GuessesMade) >= maxGuesses {
		session.IsComplete = true
		session.FinalGuess = guess
		err = s.games.Complete(ctx, sessionID, session.GuessesMade, guess)
	} else {
		err = s.games.UpdateGuesses(ctx, sessionID, session.GuessesMade)
	}
	if err != nil {
		return nil, apperrors.Store("Internal server error", err)
	}

	remaining := maxGuesses - len(session.GuessesMade)
	if remaining < 0 {
		remaining = 0
	}

	result := &MakeGuessResult{
		GameOver:         session.IsComplete,
		GuessesRemaining: remaining,
	}
	switch {
	case isCorrect:
		result.Result = "correct"
		result.Message = msgGuessCorrect
	case session.IsComplete:
		result.Result = "incorrect"
		result.Message = msgGuessGameOver
	default:
		result.Result = "incorrect"
		result.Message = fmt.Sprintf(msgGuessIncorrect, remaining)
	}

	log.Info().
		Str("sessionID", sessionID).
		Bool("correct", isCorrect).
		Bool("gameOver", session.IsComplete).
		Msg("guess made")

	return result, nil
}

// loadActiveSession resolves a session and rejects completed ones.
// Precondition order is fixed: not-found wins over already-complete.
func (s *GameService) loadActiveSession(ctx context.Context, sessionID string) (*model.GameSession, error) {
	session, err := s.games.Find(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Store("Internal server error", err)
	}
	if session == nil {
		return nil, apperrors.NotFound(msgGameNotFound)
	}
	if session.IsComplete {
		return nil, apperrors.InvalidState(msgGameComplete)
	}
	return session, nil
}
