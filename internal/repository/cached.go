package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/taskmanager/internal/cache"
	"github.com/sun1tar/taskmanager/internal/models"
)

type cachedStore struct {
	Store
	cache  cache.Cache
	ttl    time.Duration
	logger *logrus.Entry
}

// WithCache добавляет read-through кэш для выборок списков, задач и избранного.
// Любая запись сбрасывает затронутые ключи владельца; ошибки кэша только логируются.
func WithCache(store Store, c cache.Cache, ttl time.Duration, logger *logrus.Logger) Store {
	return &cachedStore{
		Store:  store,
		cache:  c,
		ttl:    ttl,
		logger: logger.WithField("component", "cache"),
	}
}

func (s *cachedStore) Lists() ListRepository { return cachedLists{s, s.Store.Lists()} }
func (s *cachedStore) Tasks() TaskRepository { return cachedTasks{s, s.Store.Tasks()} }

func listsKey(ownerID string) string         { return "lists:" + ownerID }
func tasksKey(ownerID, listID string) string { return "tasks:" + ownerID + ":" + listID }
func starredKey(ownerID string) string       { return "starred:" + ownerID }

func readThrough[T any](ctx context.Context, s *cachedStore, key string, load func() (T, error)) (T, error) {
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		s.logger.WithField("key", key).WithError(err).Warn("cached value is corrupt")
	case !errors.Is(err, cache.ErrMiss):
		s.logger.WithField("key", key).WithError(err).Warn("cache get failed")
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if raw, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.logger.WithField("key", key).WithError(err).Warn("cache set failed")
		}
	}
	return v, nil
}

func (s *cachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.WithField("keys", keys).WithError(err).Warn("cache invalidation failed")
	}
}

type cachedLists struct {
	s    *cachedStore
	next ListRepository
}

func (r cachedLists) List(ctx context.Context, ownerID string) ([]*models.List, error) {
	return readThrough(ctx, r.s, listsKey(ownerID), func() ([]*models.List, error) {
		return r.next.List(ctx, ownerID)
	})
}

func (r cachedLists) Get(ctx context.Context, ownerID, id string) (*models.List, error) {
	return r.next.Get(ctx, ownerID, id)
}

func (r cachedLists) Create(ctx context.Context, list *models.List) error {
	if err := r.next.Create(ctx, list); err != nil {
		return err
	}
	r.s.invalidate(ctx, listsKey(list.UserID))
	return nil
}

func (r cachedLists) Rename(ctx context.Context, ownerID, id, name string) (*models.List, error) {
	list, err := r.next.Rename(ctx, ownerID, id, name)
	if err != nil {
		return nil, err
	}
	r.s.invalidate(ctx, listsKey(ownerID))
	return list, nil
}

func (r cachedLists) Delete(ctx context.Context, ownerID, id string) error {
	if err := r.next.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	r.s.invalidate(ctx, listsKey(ownerID), tasksKey(ownerID, id), starredKey(ownerID))
	return nil
}

type cachedTasks struct {
	s    *cachedStore
	next TaskRepository
}

func (r cachedTasks) List(ctx context.Context, ownerID, listID string) ([]*models.Task, error) {
	return readThrough(ctx, r.s, tasksKey(ownerID, listID), func() ([]*models.Task, error) {
		return r.next.List(ctx, ownerID, listID)
	})
}

func (r cachedTasks) Starred(ctx context.Context, ownerID string) ([]*models.Task, error) {
	return readThrough(ctx, r.s, starredKey(ownerID), func() ([]*models.Task, error) {
		return r.next.Starred(ctx, ownerID)
	})
}

func (r cachedTasks) Create(ctx context.Context, task *models.Task) error {
	if err := r.next.Create(ctx, task); err != nil {
		return err
	}
	r.s.invalidate(ctx, tasksKey(task.UserID, task.ListID), starredKey(task.UserID))
	return nil
}

func (r cachedTasks) Update(ctx context.Context, ownerID, listID, id string, patch models.TaskPatch) (*models.Task, error) {
	task, err := r.next.Update(ctx, ownerID, listID, id, patch)
	if err != nil {
		return nil, err
	}
	r.s.invalidate(ctx, tasksKey(ownerID, listID), starredKey(ownerID))
	return task, nil
}

func (r cachedTasks) Delete(ctx context.Context, ownerID, listID, id string) error {
	if err := r.next.Delete(ctx, ownerID, listID, id); err != nil {
		return err
	}
	r.s.invalidate(ctx, tasksKey(ownerID, listID), starredKey(ownerID))
	return nil
}

func (r cachedTasks) DeleteByList(ctx context.Context, ownerID, listID string) (int64, error) {
	n, err := r.next.DeleteByList(ctx, ownerID, listID)
	if err != nil {
		return 0, err
	}
	r.s.invalidate(ctx, tasksKey(ownerID, listID), starredKey(ownerID))
	return n, nil
}
