package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tms-cli/internal/logging"
	"tms-cli/internal/model"
)

const sessionFileName = "session.json"

// FileStore keeps both keys in a single JSON file so that a clear is one remove.
type FileStore struct {
	Dir    string
	Logger *slog.Logger

	mu sync.Mutex
}

type fileState struct {
	Token string          `json:"tms_token,omitempty"`
	User  json.RawMessage `json:"tms_user,omitempty"`
}

func (s *FileStore) path() string {
	return filepath.Join(s.Dir, sessionFileName)
}

func (s *FileStore) disabled() bool {
	return strings.TrimSpace(s.Dir) == ""
}

func (s *FileStore) load() fileState {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.OrDiscard(s.Logger).Debug("read session file", slog.String("error", err.Error()))
		}
		return fileState{}
	}
	var st fileState
	if err := json.Unmarshal(b, &st); err != nil {
		// Best-effort; if corrupted, treat as missing.
		logging.OrDiscard(s.Logger).Debug("discarding corrupted session file", slog.String("error", err.Error()))
		return fileState{}
	}
	return st
}

func (s *FileStore) save(st fileState) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(s.Dir, sessionFileName+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, 0o600)
	return os.Rename(tmp, s.path())
}

func (s *FileStore) Token() string {
	if s.disabled() {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimSpace(s.load().Token)
}

func (s *FileStore) SetToken(token string) error {
	if s.disabled() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.load()
	st.Token = strings.TrimSpace(token)
	return s.save(st)
}

func (s *FileStore) User() *model.User {
	if s.disabled() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.load()
	if strings.TrimSpace(st.Token) == "" {
		return nil
	}
	return decodeUser(st.User, s.Logger)
}

func (s *FileStore) SetUser(u model.User) error {
	if s.disabled() {
		return nil
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.load()
	st.User = raw
	return s.save(st)
}

func (s *FileStore) Clear() error {
	if s.disabled() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
