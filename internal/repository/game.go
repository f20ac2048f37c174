package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/twentyq/game-server-go/internal/model"
	redisclient "github.com/twentyq/game-server-go/internal/redis"
)

const scanBatchSize = 100

// ErrSessionExists indicates a create hit an id already in use.
// Ids are random, so this is an internal fault, not a user error.
var ErrSessionExists = errors.New("session id already exists")

// GameRepository persists session records, one flat hash per session.
// Mutating operations write only the fields they name; the unnamed
// fields are never touched.
type GameRepository interface {
	Create(ctx context.Context, session *model.GameSession) error
	Find(ctx context.Context, sessionID string) (*model.GameSession, error)
	UpdateProgress(ctx context.Context, sessionID string, questions []string, answers map[string]model.Answer, currentQuestion int) error
	UpdateGuesses(ctx context.Context, sessionID string, guesses []string) error
	Complete(ctx context.Context, sessionID string, guesses []string, finalGuess string) error
	ScanCompletedBefore(ctx context.Context, cutoff time.Time) ([]model.GameSession, error)
	Delete(ctx context.Context, sessionID string) error
}

type gameRepo struct {
	client *redisclient.Client
}

func NewGameRepository(client *redisclient.Client) GameRepository {
	return &gameRepo{client: client}
}

func (r *gameRepo) Create(ctx context.Context, session *model.GameSession) error {
	fields, err := session.RedisFields()
	if err != nil {
		return err
	}

	key := redisclient.GameKey(session.SessionID)

	// Claim the id field first so a create never overwrites a record.
	claimed, err := r.client.HSetNX(ctx, key, model.FieldSessionID, session.SessionID).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !claimed {
		return ErrSessionExists
	}

	if err := r.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *gameRepo) Find(ctx context.Context, sessionID string) (*model.GameSession, error) {
	fields, err := r.client.HGetAll(ctx, redisclient.GameKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return model.SessionFromFields(fields)
}

func (r *gameRepo) UpdateProgress(
	ctx context.Context,
	sessionID string,
	questions []string,
	answers map[string]model.Answer,
	currentQuestion int,
) error {
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	err = r.client.HSet(ctx, redisclient.GameKey(sessionID), map[string]any{
		model.FieldPreviousQuestions: string(questionsJSON),
		model.FieldPreviousAnswers:   string(answersJSON),
		model.FieldCurrentQuestion:   strconv.Itoa(currentQuestion),
	}).Err()
	if err != nil {
		return fmt.Errorf("update question progress: %w", err)
	}
	return nil
}

func (r *gameRepo) UpdateGuesses(ctx context.Context, sessionID string, guesses []string) error {
	guessesJSON, err := json.Marshal(guesses)
	if err != nil {
		return fmt.Errorf("marshal guesses: %w", err)
	}

	err = r.client.HSet(ctx, redisclient.GameKey(sessionID), map[string]any{
		model.FieldGuessesMade: string(guessesJSON),
	}).Err()
	if err != nil {
		return fmt.Errorf("update guesses: %w", err)
	}
	return nil
}

func (r *gameRepo) Complete(ctx context.Context, sessionID string, guesses []string, finalGuess string) error {
	guessesJSON, err := json.Marshal(guesses)
	if err != nil {
		return fmt.Errorf("marshal guesses: %w", err)
	}

	err = r.client.HSet(ctx, redisclient.GameKey(sessionID), map[string]any{
		model.FieldIsComplete:  strconv.FormatBool(true),
		model.FieldFinalGuess:  finalGuess,
		model.FieldGuessesMade: string(guessesJSON),
	}).Err()
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return nil
}

func (r *gameRepo) ScanCompletedBefore(ctx context.Context, cutoff time.Time) ([]model.GameSession, error) {
	var sessions []model.GameSession
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, redisclient.GameKey("*"), scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("scan sessions: %w", err)
		}

		for _, key := range keys {
			fields, err := r.client.HGetAll(ctx, key).Result()
			if err != nil {
				return nil, fmt.Errorf("read session %s: %w", key, err)
			}
			if len(fields) == 0 {
				continue
			}
			session, err := model.SessionFromFields(fields)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("skipping malformed session record")
				continue
			}
			if session.IsComplete && session.StartTime.Before(cutoff) {
				sessions = append(sessions, *session)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return sessions, nil
}

func (r *gameRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, redisclient.GameKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
