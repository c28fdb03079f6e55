package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sun1tar/taskmanager/internal/models"
)

func TestObjectIDsRejectsMalformed(t *testing.T) {
	_, err := objectIDs("not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err := objectIDs("65f0c0a0b1c2d3e4f5a6b7c8")
	require.NoError(t, err)
	assert.Equal(t, "65f0c0a0b1c2d3e4f5a6b7c8", ids[0].Hex())
}

func TestMongoTimesMatchStoredPrecision(t *testing.T) {
	at := time.Date(2030, 1, 1, 8, 0, 0, 123456789, time.FixedZone("MSK", 3*3600))
	s := &MongoStore{now: fixedClock(at)}

	assert.Equal(t, time.Date(2030, 1, 1, 5, 0, 0, 123000000, time.UTC), s.stamp())

	remind := bsonTime(&at)
	require.NotNil(t, remind)
	assert.Equal(t, time.Date(2030, 1, 1, 5, 0, 0, 123000000, time.UTC), *remind)
	assert.Nil(t, bsonTime(nil))
}

// Интеграционный тест: нужен запущенный MongoDB
func TestMongoStoreIntegration(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbName := fmt.Sprintf("taskmanager_test_%d", time.Now().UnixNano())
	s, err := NewMongoStore(ctx, uri, dbName)
	require.NoError(t, err)
	defer func() {
		_ = s.db.Drop(ctx)
		_ = s.Close(ctx)
	}()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	err = s.Users().Create(ctx, &models.User{Username: "alice", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	list := &models.List{Name: "Work", UserID: alice.ID}
	require.NoError(t, s.Lists().Create(ctx, list))

	_, err = s.Lists().Get(ctx, bob.ID, list.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Lists().Get(ctx, alice.ID, "garbage")
	assert.ErrorIs(t, err, ErrNotFound)

	remind := time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)
	task := &models.Task{Title: "Report", ListID: list.ID, UserID: alice.ID, RemindAt: &remind}
	require.NoError(t, s.Tasks().Create(ctx, task))
	require.NoError(t, s.Tasks().Create(ctx, &models.Task{Title: "Call", ListID: list.ID, UserID: alice.ID}))

	tasks, err := s.Tasks().List(ctx, alice.ID, list.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Call", tasks[0].Title)
	assert.Equal(t, task.CreatedAt, tasks[1].CreatedAt)
	assert.Equal(t, *task.RemindAt, *tasks[1].RemindAt)

	starred := true
	updated, err := s.Tasks().Update(ctx, alice.ID, list.ID, task.ID, models.TaskPatch{Starred: &starred, ClearRemindAt: true})
	require.NoError(t, err)
	assert.True(t, updated.Starred)
	assert.Nil(t, updated.RemindAt)
	assert.Equal(t, "Report", updated.Title)

	fav, err := s.Tasks().Starred(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, fav, 1)

	carol := seedUser(t, s, "carol")
	require.NoError(t, s.Users().Delete(ctx, carol.ID))
	assert.ErrorIs(t, s.Users().Delete(ctx, carol.ID), ErrNotFound)

	n, err := s.Tasks().DeleteByList(ctx, alice.ID, list.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, s.Lists().Delete(ctx, alice.ID, list.ID))
	assert.ErrorIs(t, s.Lists().Delete(ctx, alice.ID, list.ID), ErrNotFound)
}
