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

// ConflictsCommand reports every overlapping pair in a placement document.
func ConflictsCommand() *cli.Command {
	return &cli.Command{
		Name:  "conflicts",
		Usage: "Detect overlapping placements in a schedule document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to a JSON placement document",
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

			payload, err := os.ReadFile(command.String("input"))
			if err != nil {
				return fmt.Errorf("reading placement file: %w", err)
			}

			var placement models.Placement
			if err := json.Unmarshal(payload, &placement); err != nil {
				return fmt.Errorf("parsing placement file: %w", err)
			}

			conflicts := schedule.FindConflicts(placement)

			return printJSON(conflicts)
		},
	}
}
