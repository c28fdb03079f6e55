package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sun1tar/taskmanager/internal/auth"
	apihttp "github.com/sun1tar/taskmanager/internal/http"
	"github.com/sun1tar/taskmanager/internal/repository"
	"github.com/sun1tar/taskmanager/internal/service"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := repository.NewMemoryStore()
	tokens := auth.NewTokenService("client-test", time.Hour)
	srv := httptest.NewServer(apihttp.NewRouter(apihttp.RouterConfig{
		Auth:   service.NewAuthService(store, auth.NewPasswordHasher(4), tokens, logger),
		Lists:  service.NewListService(store, logger),
		Tasks:  service.NewTaskService(store, logger),
		Tokens: tokens,
		Store:  store,
		Logger: logger,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFlow(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL+"/", srv.Client())
	ctx := context.Background()

	s, err := c.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)

	me, err := c.Me(ctx, *s)
	require.NoError(t, err)
	assert.Equal(t, s.User, *me)

	lists, err := c.Lists(ctx, *s)
	require.NoError(t, err)
	require.Len(t, lists, 1)

	work, err := c.CreateList(ctx, *s, "Work")
	require.NoError(t, err)

	task, err := c.CreateTask(ctx, *s, work.ID, TaskInput{Title: "Write report", RemindAt: "2030-01-01T10:00:00Z"})
	require.NoError(t, err)
	require.NotNil(t, task.RemindAt)

	star := true
	none := ""
	task, err = c.UpdateTask(ctx, *s, work.ID, task.ID, TaskUpdate{Starred: &star, RemindAt: &none})
	require.NoError(t, err)
	assert.True(t, task.Starred)
	assert.Nil(t, task.RemindAt)

	starred, err := c.Starred(ctx, *s)
	require.NoError(t, err)
	require.Len(t, starred, 1)

	renamed, err := c.RenameList(ctx, *s, work.ID, "Job")
	require.NoError(t, err)
	assert.Equal(t, "Job", renamed.Name)

	require.NoError(t, c.DeleteTask(ctx, *s, work.ID, task.ID))
	err = c.DeleteTask(ctx, *s, work.ID, task.ID)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	require.NoError(t, c.DeleteList(ctx, *s, work.ID))
	tasks, err := c.Tasks(ctx, *s, lists[0].ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestClientErrors(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, nil)
	ctx := context.Background()

	_, err := c.Register(ctx, "al", "bad", "1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation failed", apiErr.Message)
	assert.Len(t, apiErr.Fields, 3)
	assert.Contains(t, apiErr.Error(), "username must be at least 3 characters")

	_, err = c.Login(ctx, "ghost@example.com", "secret1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid credentials", apiErr.Message)

	_, err = c.Lists(ctx, Session{Token: "expired"})
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	s, err := c.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Error(t, c.ChangePassword(ctx, *s, "wrong", "secret2"))
	require.NoError(t, c.ChangePassword(ctx, *s, "secret1", "secret2"))

	name := "alicia"
	u, err := c.UpdateProfile(ctx, *s, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "alicia", u.Username)
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Lists(context.Background(), Session{Token: "t"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
