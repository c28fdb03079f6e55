package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// APIFactory создаёт клиент для адреса сервера
type APIFactory func(server string) API

type Dispatcher struct {
	registry *Registry
	factory  APIFactory
}

func NewDispatcher(registry *Registry, factory APIFactory) *Dispatcher {
	return &Dispatcher{registry: registry, factory: factory}
}

// commonFlags принимаются и до, и после имени команды
type commonFlags struct {
	configDir string
	server    string
	quiet     bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configDir, "config", f.configDir, "")
	fs.StringVar(&f.server, "server", f.server, "")
	fs.BoolVar(&f.quiet, "quiet", f.quiet, "")
	fs.BoolVar(&f.quiet, "q", f.quiet, "")
}

// Run разбирает аргументы, выполняет команду и возвращает код завершения.
// Без команды выполняется "tasks".
func (d *Dispatcher) Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	var common commonFlags

	global := flag.NewFlagSet("taskctl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	common.register(global)
	if err := global.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return ExitUserError
	}
	args = global.Args()

	name := "tasks"
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	cmd, ok := d.registry.Find(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s (see: taskctl help)\n", name)
		return ExitUserError
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	common.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\nusage: %s\n", err, cmd.Usage())
		return ExitUserError
	}

	cfg := &Config{Dir: common.configDir, Quiet: common.quiet}
	if cfg.Dir == "" {
		cfg.Dir = DefaultConfigDir()
	}

	env := &Env{Config: cfg, In: in, Out: out, Err: errOut}

	stored, err := cfg.LoadSession()
	switch {
	case err == nil:
		env.Session = stored.Session
	case !cmd.NeedsAuth():
		stored = nil
	case errors.Is(err, ErrNotLoggedIn):
		fmt.Fprintln(errOut, "error: not logged in (run: taskctl login)")
		return ExitAuthError
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return ExitAuthError
	}

	cfg.Server = resolveServer(common.server, stored)
	if d.factory != nil {
		env.API = d.factory(cfg.Server)
	}

	return cmd.Run(ctx, env, fs.Args())
}

// resolveServer: --server, затем TASKCTL_SERVER, затем адрес из сессии
func resolveServer(flagValue string, stored *StoredSession) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(ServerEnv); v != "" {
		return v
	}
	if stored != nil && stored.Server != "" {
		return stored.Server
	}
	return DefaultServer
}
