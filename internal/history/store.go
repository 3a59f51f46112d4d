// Package history records finished game sessions so past scores survive the
// ephemeral in-memory state of the view. It is write-once per session: the
// controller records a game the first time a fetched snapshot reports it
// ended.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Game is one finished session.
type Game struct {
	ID      uuid.UUID `json:"id"`
	GameID  int       `json:"game_id"`
	Score   int64     `json:"score"`
	Won     bool      `json:"won"`
	EndedAt time.Time `json:"ended_at"`
}

// Store persists finished games in SQLite.
type Store struct {
	db *sql.DB
}

// New opens/creates a SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&cache=shared", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			game_id INTEGER NOT NULL,
			score INTEGER NOT NULL,
			won INTEGER NOT NULL,
			ended_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_games_ended ON games(ended_at DESC);`)
	return err
}

// RecordGame stores one finished session.
func (s *Store) RecordGame(ctx context.Context, gameID int, score int64, won bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games(id, game_id, score, won, ended_at) VALUES(?, ?, ?, ?, ?)`,
		uuid.New().String(), gameID, score, won, time.Now().UTC())
	return err
}

// ListGames returns finished sessions, most recent first.
func (s *Store) ListGames(ctx context.Context, limit int) ([]Game, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, score, won, ended_at
		FROM games
		ORDER BY ended_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Game
	for rows.Next() {
		var (
			g     Game
			idStr string
		)
		if err := rows.Scan(&idStr, &g.GameID, &g.Score, &g.Won, &g.EndedAt); err != nil {
			return nil, err
		}
		g.ID = uuid.MustParse(idStr)
		out = append(out, g)
	}
	return out, rows.Err()
}

// BestScore returns the highest recorded score, or zero when nothing has
// been recorded yet.
func (s *Store) BestScore(ctx context.Context) (int64, error) {
	var best sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(score) FROM games`).Scan(&best); err != nil {
		return 0, err
	}
	return best.Int64, nil
}
