package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tms-cli/internal/logging"
	"tms-cli/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the session in a kv table; Clear deletes both keys in one transaction.
type SQLiteStore struct {
	Path   string
	Logger *slog.Logger
}

const sqliteOpTimeout = 5 * time.Second

func (s *SQLiteStore) disabled() bool {
	return strings.TrimSpace(s.Path) == ""
}

func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	_ = os.Chmod(s.Path, 0o600)
	return db, nil
}

func (s *SQLiteStore) get(key string) (string, bool) {
	if s.disabled() {
		return "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	db, err := s.open(ctx)
	if err != nil {
		logging.OrDiscard(s.Logger).Debug("open session db", slog.String("error", err.Error()))
		return "", false
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.OrDiscard(s.Logger).Debug("read session key", slog.String("key", key), slog.String("error", err.Error()))
		}
		return "", false
	}
	return v, true
}

func (s *SQLiteStore) put(key, value string) error {
	if s.disabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v) VALUES(?, ?)`, key, value)
	return err
}

func (s *SQLiteStore) Token() string {
	v, _ := s.get(TokenKey)
	return strings.TrimSpace(v)
}

func (s *SQLiteStore) SetToken(token string) error {
	return s.put(TokenKey, strings.TrimSpace(token))
}

func (s *SQLiteStore) User() *model.User {
	if s.Token() == "" {
		return nil
	}
	v, ok := s.get(UserKey)
	if !ok {
		return nil
	}
	return decodeUser([]byte(v), s.Logger)
}

func (s *SQLiteStore) SetUser(u model.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.put(UserKey, string(raw))
}

func (s *SQLiteStore) Clear() error {
	if s.disabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE k IN (?, ?)`, TokenKey, UserKey); err != nil {
		return err
	}
	return tx.Commit()
}
