package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/plandyhq/plandy/pkg/graph"
)

// GraphCommand prints the fixed workflow topology.
func GraphCommand() *cli.Command {
	return &cli.Command{
		Name:  "graph",
		Usage: "Print the workflow graph topology",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (json, mermaid)",
				Value:   "json",
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			if command.String("format") == "mermaid" {
				fmt.Println(graph.Mermaid())

				return nil
			}

			return printJSON(graph.Info())
		},
	}
}
