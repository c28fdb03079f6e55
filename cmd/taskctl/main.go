package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/sun1tar/taskmanager/internal/cli"
	"github.com/sun1tar/taskmanager/internal/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	hc := &http.Client{Timeout: 30 * time.Second}
	factory := func(server string) cli.API { return client.New(server, hc) }

	code := cli.NewDispatcher(cli.DefaultRegistry(), factory).Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
