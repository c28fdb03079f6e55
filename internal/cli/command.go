// Package cli - команды taskctl поверх internal/client.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sun1tar/taskmanager/internal/client"
	"github.com/sun1tar/taskmanager/internal/models"
)

// API - методы клиента, которые нужны командам
type API interface {
	Register(ctx context.Context, username, email, password string) (*client.Session, error)
	Login(ctx context.Context, email, password string) (*client.Session, error)
	Me(ctx context.Context, s client.Session) (*models.UserSummary, error)
	UpdateProfile(ctx context.Context, s client.Session, username, email *string) (*models.UserSummary, error)
	ChangePassword(ctx context.Context, s client.Session, current, next string) error
	Lists(ctx context.Context, s client.Session) ([]models.List, error)
	CreateList(ctx context.Context, s client.Session, name string) (*models.List, error)
	RenameList(ctx context.Context, s client.Session, id, name string) (*models.List, error)
	DeleteList(ctx context.Context, s client.Session, id string) error
	Tasks(ctx context.Context, s client.Session, listID string) ([]models.Task, error)
	CreateTask(ctx context.Context, s client.Session, listID string, in client.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, s client.Session, listID, taskID string, upd client.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, s client.Session, listID, taskID string) error
	Starred(ctx context.Context, s client.Session) ([]models.Task, error)
}

// Env - всё, что получает команда при запуске
type Env struct {
	Config *Config
	API    API
	// Session заполнена только для команд с NeedsAuth
	Session client.Session
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
}

// ok печатает подтверждение, если не задан --quiet
func (e *Env) ok(format string, args ...interface{}) {
	if !e.Config.Quiet {
		fmt.Fprintf(e.Out, format+"\n", args...)
	}
}

type Command interface {
	Name() string
	Synopsis() string
	Usage() string
	NeedsAuth() bool
	RegisterFlags(fs *flag.FlagSet)
	Run(ctx context.Context, env *Env, args []string) int
}

type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cmds[c.Name()]; exists {
		return fmt.Errorf("command already registered: %s", c.Name())
	}
	r.cmds[c.Name()] = c
	return nil
}

func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cmds[name]
	return c, ok
}

// All - команды, отсортированные по имени
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, 0, len(r.cmds))
	for _, c := range r.cmds {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// DefaultRegistry содержит все команды taskctl
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range []Command{
		&registerCmd{}, &loginCmd{}, &logoutCmd{}, &whoamiCmd{}, &profileCmd{}, &passwdCmd{},
		&listsCmd{}, &mklistCmd{}, &mvlistCmd{}, &rmlistCmd{},
		&tasksCmd{}, &addCmd{}, &editCmd{}, &starCmd{}, &rmCmd{}, &starredCmd{},
		&helpCmd{registry: r},
	} {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}
