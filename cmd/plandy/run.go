package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/plandyhq/plandy/pkg/config"
	"github.com/plandyhq/plandy/pkg/graph"
	"github.com/plandyhq/plandy/pkg/log"
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/registry"
)

// RunCommand drives one request through the workflow graph and prints the
// terminal state as JSON.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run one request through the workflow graph",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to a JSON schedule request",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("run")

			req, err := readRequest(command.String("input"))
			if err != nil {
				return err
			}

			cfg := config.Default()
			stages := registry.Default(logger, cfg, nil)
			engine := graph.NewEngine(cfg, logger, stages.Stages())

			state, err := engine.Run(ctx, *req)
			if err != nil {
				return err
			}

			return printJSON(state)
		},
	}
}

func readRequest(path string) (*models.ScheduleRequest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}

	var req models.ScheduleRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("parsing request file: %w", err)
	}

	return &req, nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
