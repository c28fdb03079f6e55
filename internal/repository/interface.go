package repository

import (
	"context"
	"errors"

	"github.com/sun1tar/taskmanager/internal/models"
)

var (
	// ErrNotFound - записи нет или она принадлежит другому пользователю
	ErrNotFound = errors.New("not found")
	// ErrDuplicate - нарушена уникальность username/email
	ErrDuplicate = errors.New("duplicate")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, username, email *string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// ListRepository - списки, все операции ограничены владельцем
type ListRepository interface {
	List(ctx context.Context, ownerID string) ([]*models.List, error)
	Get(ctx context.Context, ownerID, id string) (*models.List, error)
	Create(ctx context.Context, list *models.List) error
	Rename(ctx context.Context, ownerID, id, name string) (*models.List, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// TaskRepository - задачи, ограничены владельцем и списком
type TaskRepository interface {
	List(ctx context.Context, ownerID, listID string) ([]*models.Task, error)
	Starred(ctx context.Context, ownerID string) ([]*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, ownerID, listID, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, ownerID, listID, id string) error
	DeleteByList(ctx context.Context, ownerID, listID string) (int64, error)
}

// Store объединяет репозитории одного драйвера
type Store interface {
	Users() UserRepository
	Lists() ListRepository
	Tasks() TaskRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
