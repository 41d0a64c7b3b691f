// Package main provides the plandy CLI: the API server, one-shot graph runs,
// direct allocation, conflict checks, and the replan daemon.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/plandyhq/plandy/pkg/log"
)

func main() {
	cmd := &cli.Command{
		Name:                  "plandy",
		Usage:                 "Personal scheduling: workflow graph runs and schedule allocation",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			APICommand(),
			RunCommand(),
			AllocateCommand(),
			ConflictsCommand(),
			SuggestCommand(),
			ReplanCommand(),
			GraphCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.WithModule("cli").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
