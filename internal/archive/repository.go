package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS simchess_games (
	id UUID PRIMARY KEY,
	game_id TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL,
	result TEXT NOT NULL,
	winner TEXT,
	reason TEXT,
	turns INTEGER NOT NULL,
	illegal_attempts INTEGER NOT NULL,
	white_seconds INTEGER,
	black_seconds INTEGER,
	final_fen TEXT NOT NULL,
	pgn TEXT NOT NULL,
	records JSONB NOT NULL,
	started_at TIMESTAMPTZ,
	finished_at TIMESTAMPTZ NOT NULL
)`

// Repository persists finished games to Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the archive repository")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// EnsureSchema creates the games table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schemaSQL)
	return err
}

// Archive upserts g keyed by its game id.
func (r *Repository) Archive(ctx context.Context, g Game) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("archive repository not initialized")
	}
	if g.ID == "" {
		g.ID = NewID()
	}
	if g.FinishedAt.IsZero() {
		g.FinishedAt = time.Now()
	}
	records, err := json.Marshal(g.Records)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO simchess_games (
	id, game_id, color, result, winner, reason, turns, illegal_attempts,
	white_seconds, black_seconds, final_fen, pgn, records, started_at, finished_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (game_id) DO UPDATE SET
	result = EXCLUDED.result,
	winner = EXCLUDED.winner,
	reason = EXCLUDED.reason,
	turns = EXCLUDED.turns,
	illegal_attempts = EXCLUDED.illegal_attempts,
	white_seconds = EXCLUDED.white_seconds,
	black_seconds = EXCLUDED.black_seconds,
	final_fen = EXCLUDED.final_fen,
	pgn = EXCLUDED.pgn,
	records = EXCLUDED.records,
	finished_at = EXCLUDED.finished_at
`,
		g.ID,
		g.GameID,
		string(g.Color),
		g.Result,
		nullString(string(g.Winner)),
		nullString(g.Reason),
		g.Turns,
		g.IllegalAttempts(),
		g.Clocks.White,
		g.Clocks.Black,
		g.FinalFEN,
		BuildPGN(g),
		string(records),
		nullTime(g.StartedAt),
		g.FinishedAt,
	)
	return err
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
