// Package journal persists a local history of submitted swaps. It lives
// on the CLI side only; the swap engine itself keeps no state between
// calls.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

// Entry is one recorded swap attempt.
type Entry struct {
	Network   string
	TokenIn   string
	TokenOut  string
	AmountIn  string
	AmountOut string
	Fee       uint32
	TxHash    string
	Success   bool
	Error     string
	CreatedAt time.Time
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal lock directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal sqlite: %w", err)
	}
	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS swaps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			network TEXT NOT NULL,
			token_in TEXT NOT NULL,
			token_out TEXT NOT NULL,
			amount_in TEXT NOT NULL,
			amount_out TEXT NOT NULL,
			fee INTEGER NOT NULL,
			tx_hash TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_swaps_created ON swaps(created_at DESC);",
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init journal schema: %w", err)
		}
	}
	return &Store{db: db, lock: flock.New(lockPath)}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Record(ctx context.Context, entry Entry) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire journal lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO swaps (network, token_in, token_out, amount_in, amount_out, fee, tx_hash, success, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Network, entry.TokenIn, entry.TokenOut, entry.AmountIn, entry.AmountOut,
		entry.Fee, entry.TxHash, boolToInt(entry.Success), entry.Error, createdAt.Unix())
	if err != nil {
		return fmt.Errorf("record swap: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT network, token_in, token_out, amount_in, amount_out, fee, tx_hash, success, error, created_at
		 FROM swaps ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list swaps: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var entry Entry
		var success int
		var createdAt int64
		if err := rows.Scan(&entry.Network, &entry.TokenIn, &entry.TokenOut, &entry.AmountIn,
			&entry.AmountOut, &entry.Fee, &entry.TxHash, &success, &entry.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scan swap row: %w", err)
		}
		entry.Success = success != 0
		entry.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, entry)
	}
	return out, rows.Err()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
