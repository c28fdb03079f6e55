package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"strings"
)

// readPassword берёт --password или первую строку stdin
func readPassword(env *Env, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env.In == nil {
		return "", userErrorf("password required")
	}
	sc := bufio.NewScanner(env.In)
	if !sc.Scan() {
		return "", userErrorf("password required")
	}
	pw := strings.TrimRight(sc.Text(), "\r")
	if pw == "" {
		return "", userErrorf("password required")
	}
	return pw, nil
}

type registerCmd struct {
	password string
}

func (c *registerCmd) Name() string     { return "register" }
func (c *registerCmd) Synopsis() string { return "Create an account and log in" }
func (c *registerCmd) Usage() string {
	return "taskctl register [--password <pw>] <username> <email>"
}
func (c *registerCmd) NeedsAuth() bool { return false }

func (c *registerCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
}

func (c *registerCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) != 2 {
		return report(env.Err, userErrorf("usage: %s", c.Usage()))
	}
	pw, err := readPassword(env, c.password)
	if err != nil {
		return report(env.Err, err)
	}

	s, err := env.API.Register(ctx, args[0], args[1], pw)
	if err != nil {
		return report(env.Err, err)
	}
	if err := env.Config.SaveSession(*s); err != nil {
		return report(env.Err, userErrorf("save session: %v", err))
	}
	env.ok("registered as %s", s.User.Username)
	return ExitOK
}

type loginCmd struct {
	password string
}

func (c *loginCmd) Name() string     { return "login" }
func (c *loginCmd) Synopsis() string { return "Log in and store the session" }
func (c *loginCmd) Usage() string    { return "taskctl login [--password <pw>] <email>" }
func (c *loginCmd) NeedsAuth() bool  { return false }

func (c *loginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
}

func (c *loginCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) != 1 {
		return report(env.Err, userErrorf("usage: %s", c.Usage()))
	}
	pw, err := readPassword(env, c.password)
	if err != nil {
		return report(env.Err, err)
	}

	s, err := env.API.Login(ctx, args[0], pw)
	if err != nil {
		return report(env.Err, err)
	}
	if err := env.Config.SaveSession(*s); err != nil {
		return report(env.Err, userErrorf("save session: %v", err))
	}
	env.ok("logged in as %s", s.User.Username)
	return ExitOK
}

type logoutCmd struct{}

func (c *logoutCmd) Name() string                 { return "logout" }
func (c *logoutCmd) Synopsis() string             { return "Forget the stored session" }
func (c *logoutCmd) Usage() string                { return "taskctl logout" }
func (c *logoutCmd) NeedsAuth() bool              { return false }
func (c *logoutCmd) RegisterFlags(*flag.FlagSet) {}

func (c *logoutCmd) Run(_ context.Context, env *Env, _ []string) int {
	err := env.Config.RemoveSession()
	if err != nil && !errors.Is(err, ErrNotLoggedIn) {
		return report(env.Err, userErrorf("remove session: %v", err))
	}
	env.ok("ok")
	return ExitOK
}

type whoamiCmd struct{}

func (c *whoamiCmd) Name() string                 { return "whoami" }
func (c *whoamiCmd) Synopsis() string             { return "Show the current user" }
func (c *whoamiCmd) Usage() string                { return "taskctl whoami" }
func (c *whoamiCmd) NeedsAuth() bool              { return true }
func (c *whoamiCmd) RegisterFlags(*flag.FlagSet) {}

func (c *whoamiCmd) Run(ctx context.Context, env *Env, _ []string) int {
	u, err := env.API.Me(ctx, env.Session)
	if err != nil {
		return report(env.Err, err)
	}
	printf(env, "%s <%s>\n", u.Username, u.Email)
	return ExitOK
}

type profileCmd struct {
	username string
	email    string
}

func (c *profileCmd) Name() string     { return "profile" }
func (c *profileCmd) Synopsis() string { return "Change username or email" }
func (c *profileCmd) Usage() string {
	return "taskctl profile [--username <name>] [--email <email>]"
}
func (c *profileCmd) NeedsAuth() bool { return true }

func (c *profileCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.email, "email", "", "")
}

func (c *profileCmd) Run(ctx context.Context, env *Env, _ []string) int {
	if c.username == "" && c.email == "" {
		return report(env.Err, userErrorf("nothing to change (use --username or --email)"))
	}

	var username, email *string
	if c.username != "" {
		username = &c.username
	}
	if c.email != "" {
		email = &c.email
	}

	u, err := env.API.UpdateProfile(ctx, env.Session, username, email)
	if err != nil {
		return report(env.Err, err)
	}

	// имя в сохранённой сессии должно совпадать с профилем
	env.Session.User = *u
	if err := env.Config.SaveSession(env.Session); err != nil {
		return report(env.Err, userErrorf("save session: %v", err))
	}
	env.ok("%s <%s>", u.Username, u.Email)
	return ExitOK
}

type passwdCmd struct {
	current string
	next    string
}

func (c *passwdCmd) Name() string     { return "passwd" }
func (c *passwdCmd) Synopsis() string { return "Change the password" }
func (c *passwdCmd) Usage() string {
	return "taskctl passwd --current <pw> --new <pw>"
}
func (c *passwdCmd) NeedsAuth() bool { return true }

func (c *passwdCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.current, "current", "", "")
	fs.StringVar(&c.next, "new", "", "")
}

func (c *passwdCmd) Run(ctx context.Context, env *Env, _ []string) int {
	if c.current == "" || c.next == "" {
		return report(env.Err, userErrorf("usage: %s", c.Usage()))
	}
	if err := env.API.ChangePassword(ctx, env.Session, c.current, c.next); err != nil {
		return report(env.Err, err)
	}
	env.ok("ok")
	return ExitOK
}
