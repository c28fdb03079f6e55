package cli

import (
	"context"
	"flag"
	"strings"
)

type listsCmd struct{}

func (c *listsCmd) Name() string                 { return "lists" }
func (c *listsCmd) Synopsis() string             { return "Show task lists" }
func (c *listsCmd) Usage() string                { return "taskctl lists" }
func (c *listsCmd) NeedsAuth() bool              { return true }
func (c *listsCmd) RegisterFlags(*flag.FlagSet) {}

func (c *listsCmd) Run(ctx context.Context, env *Env, _ []string) int {
	lists, err := env.API.Lists(ctx, env.Session)
	if err != nil {
		return report(env.Err, err)
	}
	for _, l := range lists {
		formatListName(env.Out, l)
	}
	return ExitOK
}

type mklistCmd struct{}

func (c *mklistCmd) Name() string                 { return "mklist" }
func (c *mklistCmd) Synopsis() string             { return "Create a task list" }
func (c *mklistCmd) Usage() string                { return "taskctl mklist <name...>" }
func (c *mklistCmd) NeedsAuth() bool              { return true }
func (c *mklistCmd) RegisterFlags(*flag.FlagSet) {}

func (c *mklistCmd) Run(ctx context.Context, env *Env, args []string) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return report(env.Err, userErrorf("list name required"))
	}
	l, err := env.API.CreateList(ctx, env.Session, name)
	if err != nil {
		return report(env.Err, err)
	}
	env.ok("created list %s", l.Name)
	return ExitOK
}

type mvlistCmd struct{}

func (c *mvlistCmd) Name() string                 { return "mvlist" }
func (c *mvlistCmd) Synopsis() string             { return "Rename a task list" }
func (c *mvlistCmd) Usage() string                { return "taskctl mvlist <old-name> <new-name...>" }
func (c *mvlistCmd) NeedsAuth() bool              { return true }
func (c *mvlistCmd) RegisterFlags(*flag.FlagSet) {}

func (c *mvlistCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) < 2 {
		return report(env.Err, userErrorf("usage: %s", c.Usage()))
	}
	list, err := resolveList(ctx, env, args[0])
	if err != nil {
		return report(env.Err, err)
	}
	name := strings.TrimSpace(strings.Join(args[1:], " "))
	if name == "" {
		return report(env.Err, userErrorf("list name required"))
	}
	if _, err := env.API.RenameList(ctx, env.Session, list.ID, name); err != nil {
		return report(env.Err, err)
	}
	env.ok("ok")
	return ExitOK
}

type rmlistCmd struct{}

func (c *rmlistCmd) Name() string                 { return "rmlist" }
func (c *rmlistCmd) Synopsis() string             { return "Delete a task list and its tasks" }
func (c *rmlistCmd) Usage() string                { return "taskctl rmlist <name...>" }
func (c *rmlistCmd) NeedsAuth() bool              { return true }
func (c *rmlistCmd) RegisterFlags(*flag.FlagSet) {}

func (c *rmlistCmd) Run(ctx context.Context, env *Env, args []string) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return report(env.Err, userErrorf("list name required"))
	}
	list, err := resolveList(ctx, env, name)
	if err != nil {
		return report(env.Err, err)
	}
	if err := env.API.DeleteList(ctx, env.Session, list.ID); err != nil {
		return report(env.Err, err)
	}
	env.ok("ok")
	return ExitOK
}
