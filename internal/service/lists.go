package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/taskmanager/internal/models"
	"github.com/sun1tar/taskmanager/internal/repository"
)

type ListService struct {
	lists  repository.ListRepository
	tasks  repository.TaskRepository
	logger *logrus.Entry
}

func NewListService(store repository.Store, logger *logrus.Logger) *ListService {
	return &ListService{
		lists:  store.Lists(),
		tasks:  store.Tasks(),
		logger: logger.WithField("component", "list_service"),
	}
}

func (s *ListService) List(ctx context.Context, ownerID string) ([]*models.List, error) {
	lists, err := s.lists.List(ctx, ownerID)
	if err != nil {
		return nil, storeError("list lists", err, msgListNotFound)
	}
	return lists, nil
}

func (s *ListService) Create(ctx context.Context, ownerID, name string) (*models.List, error) {
	list := &models.List{Name: strings.TrimSpace(name), UserID: ownerID}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, storeError("create list", err, msgListNotFound)
	}
	return list, nil
}

func (s *ListService) Rename(ctx context.Context, ownerID, id, name string) (*models.List, error) {
	list, err := s.lists.Rename(ctx, ownerID, id, strings.TrimSpace(name))
	if err != nil {
		return nil, storeError("rename list", err, msgListNotFound)
	}
	return list, nil
}

// Delete удаляет список вместе с его задачами
func (s *ListService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.lists.Get(ctx, ownerID, id); err != nil {
		return storeError("get list", err, msgListNotFound)
	}

	removed, err := s.tasks.DeleteByList(ctx, ownerID, id)
	if err != nil {
		return storeError("delete list tasks", err, msgListNotFound)
	}
	if err := s.lists.Delete(ctx, ownerID, id); err != nil {
		return storeError("delete list", err, msgListNotFound)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":       ownerID,
		"list_id":       id,
		"tasks_removed": removed,
	}).Info("list deleted")
	return nil
}
