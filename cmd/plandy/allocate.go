package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/plandyhq/plandy/pkg/log"
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/schedule"
)

// allocateInput is the file format the allocate and suggest commands read.
type allocateInput struct {
	Tasks       []models.Task      `json:"tasks"`
	Constraints models.Constraints `json:"constraints"`
	Existing    models.Placement   `json:"existing,omitempty"`
}

// AllocateCommand runs the allocation engine directly, without the graph or
// any storage.
func AllocateCommand() *cli.Command {
	return &cli.Command{
		Name:  "allocate",
		Usage: "Allocate tasks into time windows and print the placement",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to a JSON file with tasks and constraints",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			input, err := readAllocateInput(command.String("input"))
			if err != nil {
				return err
			}

			result, err := schedule.Allocate(input.Tasks, input.Constraints, input.Existing)
			if err != nil {
				return err
			}

			return printJSON(result)
		},
	}
}

// SuggestCommand prints free windows able to hold a task of the given
// duration.
func SuggestCommand() *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "Suggest free time windows for a task duration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to a JSON file with constraints and existing placements",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "duration",
				Aliases:  []string{"d"},
				Usage:    "Task duration in minutes",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of suggestions",
				Value: 5,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			input, err := readAllocateInput(command.String("input"))
			if err != nil {
				return err
			}

			windows, err := schedule.SuggestWindows(command.Int("duration"), input.Constraints, input.Existing, command.Int("limit"))
			if err != nil {
				return err
			}

			return printJSON(windows)
		},
	}
}

func readAllocateInput(path string) (*allocateInput, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input file: %w", err)
	}

	var input allocateInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return nil, fmt.Errorf("parsing input file: %w", err)
	}

	return &input, nil
}
