package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sun1tar/taskmanager/internal/client"
)

const (
	AppName       = "taskctl"
	SessionFile   = "session.json"
	DefaultServer = "http://localhost:5000"
	ServerEnv     = "TASKCTL_SERVER"
)

// ErrNotLoggedIn - файла сессии нет
var ErrNotLoggedIn = errors.New("not logged in")

type Config struct {
	Dir    string
	Server string
	Quiet  bool
}

// StoredSession - содержимое session.json
type StoredSession struct {
	Server string `json:"server"`
	client.Session
}

// DefaultConfigDir - $XDG_CONFIG_HOME/taskctl или ~/.config/taskctl
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

func (c *Config) LoadSession() (*StoredSession, error) {
	raw, err := os.ReadFile(c.SessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}

	var s StoredSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", c.SessionPath(), err)
	}
	if s.Token == "" {
		return nil, ErrNotLoggedIn
	}
	return &s, nil
}

// SaveSession пишет сессию с правами 0600
func (c *Config) SaveSession(s client.Session) error {
	if err := os.MkdirAll(c.Dir, 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(StoredSession{Server: c.Server, Session: s}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.SessionPath(), raw, 0o600)
}

// RemoveSession возвращает ErrNotLoggedIn, если удалять нечего
func (c *Config) RemoveSession() error {
	err := os.Remove(c.SessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotLoggedIn
	}
	return err
}
