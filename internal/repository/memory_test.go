package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sun1tar/taskmanager/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedUser(t *testing.T, s Store, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alice := seedUser(t, s, "alice")

	assert.NotEmpty(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	t.Run("duplicate username", func(t *testing.T) {
		err := s.Users().Create(ctx, &models.User{Username: "alice", Email: "other@example.com"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("duplicate email ignores case", func(t *testing.T) {
		err := s.Users().Create(ctx, &models.User{Username: "other", Email: "ALICE@example.com"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("lookup by email", func(t *testing.T) {
		u, err := s.Users().GetByEmail(ctx, "Alice@Example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, u.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.Users().GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("profile update conflicts with other user", func(t *testing.T) {
		bob := seedUser(t, s, "bob")
		name := "alice"
		_, err := s.Users().UpdateProfile(ctx, bob.ID, &name, nil)
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("profile update keeps own email", func(t *testing.T) {
		email := "alice@example.com"
		name := "alice2"
		u, err := s.Users().UpdateProfile(ctx, alice.ID, &name, &email)
		require.NoError(t, err)
		assert.Equal(t, "alice2", u.Username)
	})

	t.Run("delete frees username and email", func(t *testing.T) {
		carol := seedUser(t, s, "carol")
		require.NoError(t, s.Users().Delete(ctx, carol.ID))
		assert.ErrorIs(t, s.Users().Delete(ctx, carol.ID), ErrNotFound)

		_, err := s.Users().GetByID(ctx, carol.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		seedUser(t, s, "carol")
	})

	t.Run("password update", func(t *testing.T) {
		require.NoError(t, s.Users().UpdatePassword(ctx, alice.ID, "new-hash"))
		u, err := s.Users().GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", u.PasswordHash)
		assert.ErrorIs(t, s.Users().UpdatePassword(ctx, "missing", "x"), ErrNotFound)
	})
}

func TestMemoryListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	owner := seedUser(t, s, "alice")

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, s.Lists().Create(ctx, &models.List{Name: name, UserID: owner.ID}))
	}

	lists, err := s.Lists().List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, lists, 3)
	assert.Equal(t, "third", lists[0].Name)
	assert.Equal(t, "first", lists[2].Name)
}

func TestMemoryListsOwnership(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	list := &models.List{Name: "Groceries", UserID: alice.ID}
	require.NoError(t, s.Lists().Create(ctx, list))

	_, err := s.Lists().Get(ctx, bob.ID, list.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Lists().Rename(ctx, bob.ID, list.ID, "Mine")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Lists().Delete(ctx, bob.ID, list.ID), ErrNotFound)

	bobs, err := s.Lists().List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	renamed, err := s.Lists().Rename(ctx, alice.ID, list.ID, "Food")
	require.NoError(t, err)
	assert.Equal(t, "Food", renamed.Name)

	require.NoError(t, s.Lists().Delete(ctx, alice.ID, list.ID))
	_, err = s.Lists().Get(ctx, alice.ID, list.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTasks(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	list := &models.List{Name: "Work", UserID: alice.ID}
	other := &models.List{Name: "Home", UserID: alice.ID}
	require.NoError(t, s.Lists().Create(ctx, list))
	require.NoError(t, s.Lists().Create(ctx, other))

	remind := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)
	first := &models.Task{Title: "Report", ListID: list.ID, UserID: alice.ID, RemindAt: &remind}
	second := &models.Task{Title: "Call", ListID: list.ID, UserID: alice.ID, Starred: true}
	home := &models.Task{Title: "Dishes", ListID: other.ID, UserID: alice.ID, Starred: true}
	for _, task := range []*models.Task{first, second, home} {
		require.NoError(t, s.Tasks().Create(ctx, task))
	}

	t.Run("list scoped and newest first", func(t *testing.T) {
		tasks, err := s.Tasks().List(ctx, alice.ID, list.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "Call", tasks[0].Title)
		assert.Equal(t, "Report", tasks[1].Title)
	})

	t.Run("other owner sees nothing", func(t *testing.T) {
		tasks, err := s.Tasks().List(ctx, bob.ID, list.ID)
		require.NoError(t, err)
		assert.Empty(t, tasks)

		_, err = s.Tasks().Update(ctx, bob.ID, list.ID, first.ID, models.TaskPatch{})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Tasks().Delete(ctx, bob.ID, list.ID, first.ID), ErrNotFound)
	})

	t.Run("wrong list is not found", func(t *testing.T) {
		_, err := s.Tasks().Update(ctx, alice.ID, other.ID, first.ID, models.TaskPatch{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("starred across lists", func(t *testing.T) {
		tasks, err := s.Tasks().Starred(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "Dishes", tasks[0].Title)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		starred := true
		updated, err := s.Tasks().Update(ctx, alice.ID, list.ID, first.ID, models.TaskPatch{Starred: &starred})
		require.NoError(t, err)
		assert.True(t, updated.Starred)
		assert.Equal(t, "Report", updated.Title)
		require.NotNil(t, updated.RemindAt)
		assert.True(t, remind.Equal(*updated.RemindAt))
	})

	t.Run("clear reminder", func(t *testing.T) {
		updated, err := s.Tasks().Update(ctx, alice.ID, list.ID, first.ID, models.TaskPatch{ClearRemindAt: true})
		require.NoError(t, err)
		assert.Nil(t, updated.RemindAt)
	})

	t.Run("returned copies are detached", func(t *testing.T) {
		tasks, err := s.Tasks().List(ctx, alice.ID, other.ID)
		require.NoError(t, err)
		tasks[0].Title = "changed"

		again, err := s.Tasks().List(ctx, alice.ID, other.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dishes", again[0].Title)
	})

	t.Run("delete by list", func(t *testing.T) {
		n, err := s.Tasks().DeleteByList(ctx, alice.ID, list.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		tasks, err := s.Tasks().List(ctx, alice.ID, list.ID)
		require.NoError(t, err)
		assert.Empty(t, tasks)

		rest, err := s.Tasks().List(ctx, alice.ID, other.ID)
		require.NoError(t, err)
		assert.Len(t, rest, 1)
	})
}

func TestMemoryPing(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}
