package cli

import (
	"context"
	"flag"
	"strings"

	"github.com/sun1tar/taskmanager/internal/client"
)

// optionalString отличает "флаг не задан" от "задан пустым"
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(v string) error {
	o.value, o.set = v, true
	return nil
}

type tasksCmd struct {
	listName string
}

func (c *tasksCmd) Name() string     { return "tasks" }
func (c *tasksCmd) Synopsis() string { return "Show tasks of a list" }
func (c *tasksCmd) Usage() string    { return "taskctl tasks [--list <list-name>]" }
func (c *tasksCmd) NeedsAuth() bool  { return true }

func (c *tasksCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *tasksCmd) Run(ctx context.Context, env *Env, _ []string) int {
	list, err := resolveList(ctx, env, c.listName)
	if err != nil {
		return report(env.Err, err)
	}
	tasks, err := env.API.Tasks(ctx, env.Session, list.ID)
	if err != nil {
		return report(env.Err, err)
	}

	printf(env, "%s\n", list.Name)
	if len(tasks) == 0 {
		printf(env, "  (no tasks)\n")
		return ExitOK
	}
	for i, t := range tasks {
		formatTask(env.Out, i+1, t, "")
	}
	return ExitOK
}

type addCmd struct {
	listName string
	desc     string
	remind   string
	star     bool
}

func (c *addCmd) Name() string     { return "add" }
func (c *addCmd) Synopsis() string { return "Create a task" }
func (c *addCmd) Usage() string {
	return "taskctl add [--list <list-name>] [--star] [--remind <time>] [--desc <text>] <title...>"
}
func (c *addCmd) NeedsAuth() bool { return true }

func (c *addCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.remind, "remind", "", "")
	fs.BoolVar(&c.star, "star", false, "")
}

func (c *addCmd) Run(ctx context.Context, env *Env, args []string) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return report(env.Err, userErrorf("title required"))
	}

	in := client.TaskInput{Title: title, Description: c.desc, Starred: c.star}
	if c.remind != "" {
		at, err := parseRemind(c.remind)
		if err != nil {
			return report(env.Err, err)
		}
		in.RemindAt = at
	}

	list, err := resolveList(ctx, env, c.listName)
	if err != nil {
		return report(env.Err, err)
	}
	if _, err := env.API.CreateTask(ctx, env.Session, list.ID, in); err != nil {
		return report(env.Err, err)
	}
	env.ok("ok")
	return ExitOK
}

type editCmd struct {
	listName string
	title    optionalString
	desc     optionalString
	remind   optionalString
}

func (c *editCmd) Name() string     { return "edit" }
func (c *editCmd) Synopsis() string { return "Change a task" }
func (c *editCmd) Usage() string {
	return "taskctl edit [--list <list-name>] [--title <text>] [--desc <text>] [--remind <time>|\"\"] <n>"
}
func (c *editCmd) NeedsAuth() bool { return true }

func (c *editCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.desc, c.remind = optionalString{}, optionalString{}, optionalString{}
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.Var(&c.title, "title", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.remind, "remind", "")
}

func (c *editCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) != 1 {
		return report(env.Err, userErrorf("usage: %s", c.Usage()))
	}
	if !c.title.set && !c.desc.set && !c.remind.set {
		return report(env.Err, userErrorf("nothing to change (use --title, --desc or --remind)"))
	}

	var upd client.TaskUpdate
	if c.title.set {
		title := strings.TrimSpace(c.title.value)
		if title == "" {
			return report(env.Err, userErrorf("title must not be empty"))
		}
		upd.Title = &title
	}
	if c.desc.set {
		upd.Description = &c.desc.value
	}
	if c.remind.set {
		// пустое значение снимает напоминание
		at := ""
		if c.remind.value != "" {
			var err error
			if at, err = parseRemind(c.remind.value); err != nil {
				return report(env.Err, err)
			}
		}
		upd.RemindAt = &at
	}

	return updateTask(ctx, env, c.listName, args[0], upd)
}

type starCmd struct {
	listName string
	off      bool
}

func (c *starCmd) Name() string     { return "star" }
func (c *starCmd) Synopsis() string { return "Star or unstar a task" }
func (c *starCmd) Usage() string    { return "taskctl star [--list <list-name>] [--off] <n>" }
func (c *starCmd) NeedsAuth() bool  { return true }

func (c *starCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.BoolVar(&c.off, "off", false, "")
}

func (c *starCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) != 1 {
		return report(env.Err, userErrorf("usage: %s", c.Usage()))
	}
	starred := !c.off
	return updateTask(ctx, env, c.listName, args[0], client.TaskUpdate{Starred: &starred})
}

func updateTask(ctx context.Context, env *Env, listName, ref string, upd client.TaskUpdate) int {
	list, err := resolveList(ctx, env, listName)
	if err != nil {
		return report(env.Err, err)
	}
	task, err := resolveTask(ctx, env, list, ref)
	if err != nil {
		return report(env.Err, err)
	}
	if _, err := env.API.UpdateTask(ctx, env.Session, list.ID, task.ID, upd); err != nil {
		return report(env.Err, err)
	}
	env.ok("ok")
	return ExitOK
}

type rmCmd struct {
	listName string
}

func (c *rmCmd) Name() string     { return "rm" }
func (c *rmCmd) Synopsis() string { return "Delete a task" }
func (c *rmCmd) Usage() string    { return "taskctl rm [--list <list-name>] <n>" }
func (c *rmCmd) NeedsAuth() bool  { return true }

func (c *rmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *rmCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) != 1 {
		return report(env.Err, userErrorf("task number required"))
	}
	list, err := resolveList(ctx, env, c.listName)
	if err != nil {
		return report(env.Err, err)
	}
	task, err := resolveTask(ctx, env, list, args[0])
	if err != nil {
		return report(env.Err, err)
	}
	if err := env.API.DeleteTask(ctx, env.Session, list.ID, task.ID); err != nil {
		return report(env.Err, err)
	}
	env.ok("ok")
	return ExitOK
}

type starredCmd struct{}

func (c *starredCmd) Name() string                 { return "starred" }
func (c *starredCmd) Synopsis() string             { return "Show starred tasks from all lists" }
func (c *starredCmd) Usage() string                { return "taskctl starred" }
func (c *starredCmd) NeedsAuth() bool              { return true }
func (c *starredCmd) RegisterFlags(*flag.FlagSet) {}

func (c *starredCmd) Run(ctx context.Context, env *Env, _ []string) int {
	tasks, err := env.API.Starred(ctx, env.Session)
	if err != nil {
		return report(env.Err, err)
	}
	if len(tasks) == 0 {
		printf(env, "  (no starred tasks)\n")
		return ExitOK
	}

	lists, err := env.API.Lists(ctx, env.Session)
	if err != nil {
		return report(env.Err, err)
	}
	names := make(map[string]string, len(lists))
	for _, l := range lists {
		names[l.ID] = l.Name
	}

	for i, t := range tasks {
		formatTask(env.Out, i+1, t, names[t.ListID])
	}
	return ExitOK
}
