package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/twentyq/game-server-go/internal/model"
)

// ArchiveRepository stores completed games in Postgres once they age
// out of Redis. The game core itself never touches this table.
type ArchiveRepository interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, session *model.GameSession, won bool) error
	CountArchived(ctx context.Context) (int, error)
}

type archiveDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type archiveRepo struct {
	db archiveDB
}

func NewArchiveRepository(db *sqlx.DB) ArchiveRepository {
	return &archiveRepo{db: db}
}

func (r *archiveRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS archived_games (
			session_id      TEXT PRIMARY KEY,
			word_of_day     TEXT NOT NULL,
			start_time      TIMESTAMPTZ NOT NULL,
			questions_asked INT NOT NULL,
			guesses_made    JSONB NOT NULL,
			final_guess     TEXT,
			won             BOOLEAN NOT NULL,
			archived_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure archive schema: %w", err)
	}
	return nil
}

func (r *archiveRepo) Insert(ctx context.Context, session *model.GameSession, won bool) error {
	guesses, err := json.Marshal(session.GuessesMade)
	if err != nil {
		return fmt.Errorf("marshal guesses: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO archived_games
			(session_id, word_of_day, start_time, questions_asked, guesses_made, final_guess, won)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO NOTHING
	`,
		session.SessionID,
		session.WordOfDay,
		session.StartTime,
		session.CurrentQuestion,
		guesses,
		nullableString(session.FinalGuess),
		won,
	)
	if err != nil {
		return fmt.Errorf("insert archived game: %w", err)
	}
	return nil
}

func (r *archiveRepo) CountArchived(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM archived_games`)
	if err != nil {
		return 0, fmt.Errorf("count archived games: %w", err)
	}
	return count, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
