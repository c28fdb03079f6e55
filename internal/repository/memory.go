package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sun1tar/taskmanager/internal/models"
)

// MemoryStore - хранилище в памяти процесса (DB_DRIVER=memory и тесты)
type MemoryStore struct {
	mu    sync.RWMutex
	seq   int64
	now   func() time.Time
	users map[string]*models.User
	lists map[string]*memList
	tasks map[string]*memTask
}

type memList struct {
	models.List
	seq int64
}

type memTask struct {
	models.Task
	seq int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:   time.Now,
		users: make(map[string]*models.User),
		lists: make(map[string]*memList),
		tasks: make(map[string]*memTask),
	}
}

func (s *MemoryStore) Users() UserRepository          { return memUsers{s} }
func (s *MemoryStore) Lists() ListRepository          { return memLists{s} }
func (s *MemoryStore) Tasks() TaskRepository          { return memTasks{s} }
func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }
func (s *MemoryStore) Close(context.Context) error    { return nil }

func (s *MemoryStore) nextSeq() int64 {
	s.seq++
	return s.seq
}

// --- users ------------------------------------------------------------------

type memUsers struct{ s *MemoryStore }

func (r memUsers) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.taken(user.Username, user.Email, "") {
		return ErrDuplicate
	}

	now := r.s.now().UTC()
	user.ID = "u_" + uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

// taken проверяет занятость username/email другими пользователями
func (r memUsers) taken(username, email, exceptID string) bool {
	for id, u := range r.s.users {
		if id == exceptID {
			continue
		}
		if (username != "" && u.Username == username) || (email != "" && strings.EqualFold(u.Email, email)) {
			return true
		}
	}
	return false
}

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r memUsers) UpdateProfile(_ context.Context, id string, username, email *string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	var newName, newEmail string
	if username != nil {
		newName = *username
	}
	if email != nil {
		newEmail = *email
	}
	if r.taken(newName, newEmail, id) {
		return nil, ErrDuplicate
	}

	if username != nil {
		u.Username = *username
	}
	if email != nil {
		u.Email = *email
	}
	u.UpdatedAt = r.s.now().UTC()
	cp := *u
	return &cp, nil
}

func (r memUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = r.s.now().UTC()
	return nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// --- lists ------------------------------------------------------------------

type memLists struct{ s *MemoryStore }

func (r memLists) List(_ context.Context, ownerID string) ([]*models.List, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found []*memList
	for _, l := range r.s.lists {
		if l.UserID == ownerID {
			found = append(found, l)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return newer(found[i].CreatedAt, found[i].seq, found[j].CreatedAt, found[j].seq)
	})

	out := make([]*models.List, 0, len(found))
	for _, l := range found {
		cp := l.List
		out = append(out, &cp)
	}
	return out, nil
}

func (r memLists) Get(_ context.Context, ownerID, id string) (*models.List, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.lists[id]
	if !ok || l.UserID != ownerID {
		return nil, ErrNotFound
	}
	cp := l.List
	return &cp, nil
}

func (r memLists) Create(_ context.Context, list *models.List) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now().UTC()
	list.ID = "l_" + uuid.NewString()
	list.CreatedAt = now
	list.UpdatedAt = now
	r.s.lists[list.ID] = &memList{List: *list, seq: r.s.nextSeq()}
	return nil
}

func (r memLists) Rename(_ context.Context, ownerID, id, name string) (*models.List, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.lists[id]
	if !ok || l.UserID != ownerID {
		return nil, ErrNotFound
	}
	l.Name = name
	l.UpdatedAt = r.s.now().UTC()
	cp := l.List
	return &cp, nil
}

func (r memLists) Delete(_ context.Context, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.lists[id]
	if !ok || l.UserID != ownerID {
		return ErrNotFound
	}
	delete(r.s.lists, id)
	return nil
}

// --- tasks ------------------------------------------------------------------

type memTasks struct{ s *MemoryStore }

func (r memTasks) collect(match func(*memTask) bool) []*models.Task {
	var found []*memTask
	for _, t := range r.s.tasks {
		if match(t) {
			found = append(found, t)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return newer(found[i].CreatedAt, found[i].seq, found[j].CreatedAt, found[j].seq)
	})

	out := make([]*models.Task, 0, len(found))
	for _, t := range found {
		out = append(out, copyTask(&t.Task))
	}
	return out
}

func (r memTasks) List(_ context.Context, ownerID, listID string) ([]*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.collect(func(t *memTask) bool {
		return t.UserID == ownerID && t.ListID == listID
	}), nil
}

func (r memTasks) Starred(_ context.Context, ownerID string) ([]*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.collect(func(t *memTask) bool {
		return t.UserID == ownerID && t.Starred
	}), nil
}

func (r memTasks) Create(_ context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now().UTC()
	task.ID = "t_" + uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.s.tasks[task.ID] = &memTask{Task: *copyTask(task), seq: r.s.nextSeq()}
	return nil
}

func (r memTasks) Update(_ context.Context, ownerID, listID, id string, patch models.TaskPatch) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != ownerID || t.ListID != listID {
		return nil, ErrNotFound
	}
	patch.Apply(&t.Task)
	t.UpdatedAt = r.s.now().UTC()
	return copyTask(&t.Task), nil
}

func (r memTasks) Delete(_ context.Context, ownerID, listID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != ownerID || t.ListID != listID {
		return ErrNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

func (r memTasks) DeleteByList(_ context.Context, ownerID, listID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.tasks {
		if t.UserID == ownerID && t.ListID == listID {
			delete(r.s.tasks, id)
			n++
		}
	}
	return n, nil
}

func copyTask(t *models.Task) *models.Task {
	cp := *t
	if t.RemindAt != nil {
		at := *t.RemindAt
		cp.RemindAt = &at
	}
	return &cp
}

// newer - порядок "сначала новые"; при равном времени решает порядок вставки
func newer(a time.Time, aSeq int64, b time.Time, bSeq int64) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aSeq > bSeq
}
