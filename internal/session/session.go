// Package session persists the bearer token and the cached user profile
// between runs of the client.
//
// Both values live under two fixed keys and are always cleared together.
// A cached user is only meaningful while a token is present.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"tms-cli/internal/config"
	"tms-cli/internal/logging"
	"tms-cli/internal/model"
)

const (
	TokenKey = "tms_token"
	UserKey  = "tms_user"
)

// Store is the session contract shared by all backends.
//
// Getters never fail: unreadable or corrupted state reads as absent.
// A store without a configured location is a no-op.
type Store interface {
	Token() string
	SetToken(token string) error
	User() *model.User
	SetUser(u model.User) error
	Clear() error
}

// Open selects the backend configured in cfg.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	dir := strings.TrimSpace(cfg.SessionDir)
	switch cfg.SessionBackend {
	case "", config.SessionBackendFile:
		return &FileStore{Dir: dir, Logger: logger}, nil
	case config.SessionBackendSQLite:
		path := ""
		if dir != "" {
			path = filepath.Join(dir, "session.sqlite")
		}
		return &SQLiteStore{Path: path, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.SessionBackend)
	}
}

func decodeUser(raw []byte, logger *slog.Logger) *model.User {
	if len(raw) == 0 {
		return nil
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		logging.OrDiscard(logger).Debug("discarding unreadable cached user", slog.String("error", err.Error()))
		return nil
	}
	return &u
}

// Memory keeps the session in process memory only.
type Memory struct {
	mu    sync.Mutex
	token string
	user  *model.User
}

func (m *Memory) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Memory) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) User() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" || m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Memory) SetUser(u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &u
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.user = nil
	return nil
}
