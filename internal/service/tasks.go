package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/taskmanager/internal/models"
	"github.com/sun1tar/taskmanager/internal/repository"
)

// NewTask - поля, которые клиент задаёт при создании задачи
type NewTask struct {
	Title       string
	Description string
	Starred     bool
	RemindAt    *time.Time
}

type TaskService struct {
	lists  repository.ListRepository
	tasks  repository.TaskRepository
	logger *logrus.Entry
}

func NewTaskService(store repository.Store, logger *logrus.Logger) *TaskService {
	return &TaskService{
		lists:  store.Lists(),
		tasks:  store.Tasks(),
		logger: logger.WithField("component", "task_service"),
	}
}

// ownedList проверяет, что список существует и принадлежит пользователю
func (s *TaskService) ownedList(ctx context.Context, ownerID, listID string) error {
	if _, err := s.lists.Get(ctx, ownerID, listID); err != nil {
		return storeError("get list", err, msgListNotFound)
	}
	return nil
}

func (s *TaskService) List(ctx context.Context, ownerID, listID string) ([]*models.Task, error) {
	if err := s.ownedList(ctx, ownerID, listID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, ownerID, listID)
	if err != nil {
		return nil, storeError("list tasks", err, msgTaskNotFound)
	}
	return tasks, nil
}

func (s *TaskService) Starred(ctx context.Context, ownerID string) ([]*models.Task, error) {
	tasks, err := s.tasks.Starred(ctx, ownerID)
	if err != nil {
		return nil, storeError("list starred", err, msgTaskNotFound)
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, ownerID, listID string, in NewTask) (*models.Task, error) {
	if err := s.ownedList(ctx, ownerID, listID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Starred:     in.Starred,
		RemindAt:    utcPtr(in.RemindAt),
		ListID:      listID,
		UserID:      ownerID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, storeError("create task", err, msgTaskNotFound)
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, ownerID, listID, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Title != nil {
		v := strings.TrimSpace(*patch.Title)
		patch.Title = &v
	}
	patch.RemindAt = utcPtr(patch.RemindAt)

	task, err := s.tasks.Update(ctx, ownerID, listID, id, patch)
	if err != nil {
		return nil, storeError("update task", err, msgTaskNotFound)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, listID, id string) error {
	if err := s.tasks.Delete(ctx, ownerID, listID, id); err != nil {
		return storeError("delete task", err, msgTaskNotFound)
	}
	s.logger.WithFields(logrus.Fields{"user_id": ownerID, "task_id": id}).Debug("task deleted")
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
