package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sun1tar/taskmanager/internal/auth"
	"github.com/sun1tar/taskmanager/internal/client"
	apihttp "github.com/sun1tar/taskmanager/internal/http"
	"github.com/sun1tar/taskmanager/internal/models"
	"github.com/sun1tar/taskmanager/internal/repository"
	"github.com/sun1tar/taskmanager/internal/service"
)

type harness struct {
	t      *testing.T
	dir    string
	server string
	d      *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := repository.NewMemoryStore()
	tokens := auth.NewTokenService("cli-test", time.Hour)
	srv := httptest.NewServer(apihttp.NewRouter(apihttp.RouterConfig{
		Auth:   service.NewAuthService(store, auth.NewPasswordHasher(4), tokens, logger),
		Lists:  service.NewListService(store, logger),
		Tasks:  service.NewTaskService(store, logger),
		Tokens: tokens,
		Store:  store,
		Logger: logger,
	}))
	t.Cleanup(srv.Close)

	factory := func(server string) API { return client.New(server, srv.Client()) }
	return &harness{t: t, dir: t.TempDir(), server: srv.URL, d: NewDispatcher(DefaultRegistry(), factory)}
}

// run выполняет команду с --config и --server тестового окружения
func (h *harness) run(stdin string, args ...string) (int, string, string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--config", h.dir, "--server", h.server}, args...)
	code := h.d.Run(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	code, out, errOut := h.run("", args...)
	require.Equal(h.t, ExitOK, code, "stderr: %s", errOut)
	return out
}

func (h *harness) register() {
	h.t.Helper()
	h.mustRun("register", "--password", "secret1", "alice", "alice@example.com")
}

func TestNotLoggedIn(t *testing.T) {
	h := newHarness(t)

	code, _, errOut := h.run("")
	assert.Equal(t, ExitAuthError, code)
	assert.Contains(t, errOut, "not logged in (run: taskctl login)")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)

	code, _, errOut := h.run("", "frobnicate")
	assert.Equal(t, ExitUserError, code)
	assert.Contains(t, errOut, "unknown command: frobnicate")
}

func TestRegisterStoresSession(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("register", "--password", "secret1", "alice", "alice@example.com")
	assert.Equal(t, "registered as alice\n", out)

	info, err := os.Stat(filepath.Join(h.dir, SessionFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(filepath.Join(h.dir, SessionFile))
	require.NoError(t, err)
	var stored StoredSession
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, h.server, stored.Server)
	assert.Equal(t, "alice", stored.User.Username)
	assert.NotEmpty(t, stored.Token)

	assert.Equal(t, "alice <alice@example.com>\n", h.mustRun("whoami"))
	assert.Equal(t, "My Lists\n  (no tasks)\n", h.mustRun())
}

func TestRegisterDuplicate(t *testing.T) {
	h := newHarness(t)
	h.register()

	code, _, errOut := h.run("", "register", "--password", "secret1", "alice", "other@example.com")
	assert.Equal(t, ExitUserError, code)
	assert.Contains(t, errOut, "user already exists")
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	h := newHarness(t)
	h.register()
	h.mustRun("logout")

	code, _, _ := h.run("")
	assert.Equal(t, ExitAuthError, code)

	code, _, errOut := h.run("wrong-password\n", "login", "alice@example.com")
	assert.Equal(t, ExitUserError, code)
	assert.Contains(t, errOut, "invalid credentials")

	code, out, errOut := h.run("secret1\n", "login", "alice@example.com")
	require.Equal(t, ExitOK, code, errOut)
	assert.Equal(t, "logged in as alice\n", out)
}

func TestLogoutWithoutSession(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "ok\n", h.mustRun("logout"))
}

func TestTaskLifecycle(t *testing.T) {
	h := newHarness(t)
	h.register()

	h.mustRun("add", "--remind", "2030-01-01T10:00:00Z", "Write", "report")
	h.mustRun("add", "--star", "Call", "Bob")

	assert.Equal(t,
		"My Lists\n"+
			"   1  * Call Bob\n"+
			"   2    Write report  (remind: 2030-01-01 10:00 UTC)\n",
		h.mustRun("tasks"))

	h.mustRun("edit", "--remind", "", "2")
	h.mustRun("star", "2")
	h.mustRun("star", "--off", "1")

	assert.Equal(t,
		"My Lists\n"+
			"   1    Call Bob\n"+
			"   2  * Write report\n",
		h.mustRun("tasks"))

	assert.Equal(t, "   1  * Write report  [My Lists]\n", h.mustRun("starred"))

	h.mustRun("edit", "--title", "Write final report", "2")
	h.mustRun("rm", "1")
	assert.Equal(t, "My Lists\n   1  * Write final report\n", h.mustRun("tasks"))

	code, _, errOut := h.run("", "rm", "5")
	assert.Equal(t, ExitUserError, code)
	assert.Contains(t, errOut, "task not found: 5")
}

func TestEditRequiresChange(t *testing.T) {
	h := newHarness(t)
	h.register()
	h.mustRun("add", "Task")

	code, _, errOut := h.run("", "edit", "1")
	assert.Equal(t, ExitUserError, code)
	assert.Contains(t, errOut, "nothing to change")

	code, _, errOut = h.run("", "edit", "--remind", "tomorrow", "1")
	assert.Equal(t, ExitUserError, code)
	assert.Contains(t, errOut, "invalid reminder time")
}

func TestListCommands(t *testing.T) {
	h := newHarness(t)
	h.register()

	h.mustRun("mklist", "Work")
	assert.Equal(t, "Work\nMy Lists [default]\n", h.mustRun("lists"))

	h.mustRun("add", "--list", "work", "Deploy")
	assert.Equal(t, "Work\n   1    Deploy\n", h.mustRun("tasks", "--list", "WORK"))

	h.mustRun("mvlist", "Work", "Office", "stuff")
	assert.Equal(t, "Office stuff\nMy Lists [default]\n", h.mustRun("lists"))

	h.mustRun("add", "--star", "--list", "Office stuff", "Review")
	h.mustRun("rmlist", "Office", "stuff")
	assert.Equal(t, "My Lists [default]\n", h.mustRun("lists"))
	assert.Equal(t, "  (no starred tasks)\n", h.mustRun("starred"))

	code, _, errOut := h.run("", "tasks", "--list", "Office stuff")
	assert.Equal(t, ExitUserError, code)
	assert.Contains(t, errOut, "list not found: Office stuff")
}

func TestAmbiguousListName(t *testing.T) {
	h := newHarness(t)
	h.register()
	h.mustRun("mklist", "Work")
	h.mustRun("mklist", "work")

	code, _, errOut := h.run("", "add", "--list", "WORK", "x")
	assert.Equal(t, ExitUserError, code)
	assert.Contains(t, errOut, "ambiguous list name: WORK")
}

func TestQuietSuppressesConfirmation(t *testing.T) {
	h := newHarness(t)
	h.register()

	assert.Empty(t, h.mustRun("--quiet", "add", "Task"))
	assert.Empty(t, h.mustRun("add", "-q", "Task"))
}

func TestProfileAndPassword(t *testing.T) {
	h := newHarness(t)
	h.register()

	assert.Equal(t, "alicia <alicia@example.com>\n",
		h.mustRun("profile", "--username", "alicia", "--email", "alicia@example.com"))
	assert.Equal(t, "alicia <alicia@example.com>\n", h.mustRun("whoami"))

	code, _, errOut := h.run("", "passwd", "--current", "nope", "--new", "secret2")
	assert.Equal(t, ExitUserError, code)
	assert.Contains(t, errOut, "current password is incorrect")

	h.mustRun("passwd", "--current", "secret1", "--new", "secret2")
	h.mustRun("logout")
	code, _, errOut = h.run("secret2\n", "login", "alicia@example.com")
	assert.Equal(t, ExitOK, code, errOut)
}

func TestRejectedTokenIsAuthError(t *testing.T) {
	h := newHarness(t)
	cfg := &Config{Dir: h.dir, Server: h.server}
	require.NoError(t, cfg.SaveSession(client.Session{Token: "forged"}))

	code, _, errOut := h.run("", "lists")
	assert.Equal(t, ExitAuthError, code)
	assert.Contains(t, errOut, "auth error")
}

func TestBackendUnavailable(t *testing.T) {
	h := newHarness(t)
	h.register()

	srv := httptest.NewServer(nil)
	h.server = srv.URL
	srv.Close()

	code, _, errOut := h.run("", "lists")
	assert.Equal(t, ExitBackendError, code)
	assert.Contains(t, errOut, "backend error")
}

func TestHelp(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("help")
	assert.Contains(t, out, "usage: taskctl")
	for _, cmd := range DefaultRegistry().All() {
		assert.Contains(t, out, cmd.Name())
	}

	out = h.mustRun("help", "add")
	assert.Contains(t, out, "taskctl add [--list <list-name>]")

	code, _, _ := h.run("", "help", "nope")
	assert.Equal(t, ExitUserError, code)
}

func TestResolveServer(t *testing.T) {
	stored := &StoredSession{Server: "http://stored"}

	t.Setenv(ServerEnv, "")
	assert.Equal(t, DefaultServer, resolveServer("", nil))
	assert.Equal(t, "http://stored", resolveServer("", stored))

	t.Setenv(ServerEnv, "http://env")
	assert.Equal(t, "http://env", resolveServer("", stored))
	assert.Equal(t, "http://flag", resolveServer("http://flag", stored))
}

func TestFormatTaskNormalizesTitle(t *testing.T) {
	var buf bytes.Buffer
	formatTask(&buf, 12, models.Task{Title: "line\none", Starred: true}, "")
	assert.Equal(t, "  12  * line one\n", buf.String())

	buf.Reset()
	formatTask(&buf, 1, models.Task{Title: "  "}, "")
	assert.Equal(t, "   1    (untitled)\n", buf.String())
}
