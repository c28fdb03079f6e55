package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
)

type helpCmd struct {
	registry *Registry
}

func (c *helpCmd) Name() string                 { return "help" }
func (c *helpCmd) Synopsis() string             { return "Show commands or usage of one command" }
func (c *helpCmd) Usage() string                { return "taskctl help [command]" }
func (c *helpCmd) NeedsAuth() bool              { return false }
func (c *helpCmd) RegisterFlags(*flag.FlagSet) {}

func (c *helpCmd) Run(_ context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		cmd, ok := c.registry.Find(args[0])
		if !ok {
			return report(env.Err, userErrorf("unknown command: %s", args[0]))
		}
		printf(env, "%s\n\n  %s\n", cmd.Synopsis(), cmd.Usage())
		return ExitOK
	}

	printf(env, "usage: taskctl [--server <url>] [--config <dir>] [--quiet] <command> [args]\n\n")
	tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	for _, cmd := range c.registry.All() {
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.Name(), cmd.Synopsis())
	}
	tw.Flush()
	return ExitOK
}
