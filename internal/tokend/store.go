package tokend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Token is one created token. Name is the unique key.
type Token struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	TotalSupply int64     `json:"total_supply"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrTokenExists is returned when a token name is already taken.
var ErrTokenExists = errors.New("tokend: token already exists")

// Store persists tokens in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens/creates a SQLite database at dbPath and runs migrations.
func NewStore(dbPath string) (*Store, error) {
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
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tokens (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			symbol TEXT NOT NULL,
			total_supply INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tokens_created ON tokens(created_at DESC);`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// CreateToken inserts a new token. Returns ErrTokenExists when the name is
// already registered.
func (s *Store) CreateToken(ctx context.Context, name, symbol string, totalSupply int64) (Token, error) {
	t := Token{
		ID:          uuid.New(),
		Name:        name,
		Symbol:      symbol,
		TotalSupply: totalSupply,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens(id, name, symbol, total_supply, created_at) VALUES(?, ?, ?, ?, ?)`,
		t.ID.String(), t.Name, t.Symbol, t.TotalSupply, t.CreatedAt)
	if err != nil {
		if isConstraintErr(err) {
			return Token{}, ErrTokenExists
		}
		return Token{}, err
	}
	return t, nil
}

// GetToken looks a token up by name.
func (s *Store) GetToken(ctx context.Context, name string) (Token, bool, error) {
	var (
		t     Token
		idStr string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, symbol, total_supply, created_at FROM tokens WHERE name=?`, name).
		Scan(&idStr, &t.Name, &t.Symbol, &t.TotalSupply, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, err
	}
	t.ID = uuid.MustParse(idStr)
	return t, true, nil
}

// ListTokens returns tokens ordered by creation time, newest first.
func (s *Store) ListTokens(ctx context.Context, limit, offset int) ([]Token, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, symbol, total_supply, created_at
		FROM tokens
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Token
	for rows.Next() {
		var (
			t     Token
			idStr string
		)
		if err := rows.Scan(&idStr, &t.Name, &t.Symbol, &t.TotalSupply, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.ID = uuid.MustParse(idStr)
		out = append(out, t)
	}
	return out, rows.Err()
}

func isConstraintErr(err error) bool {
	// modernc sqlite reports constraint violations in the message text.
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint failed") || strings.Contains(msg, "unique constraint")
}
