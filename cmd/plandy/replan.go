package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	cli "github.com/urfave/cli/v3"

	"github.com/plandyhq/plandy/pkg/cmd"
	"github.com/plandyhq/plandy/pkg/log"
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/services"
)

// ReplanCommand runs a daemon that periodically retries conflicted tasks in
// every stored schedule of the given users.
func ReplanCommand() *cli.Command {
	return &cli.Command{
		Name:  "replan",
		Usage: "Periodically re-allocate conflicted tasks in stored schedules",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression for replan runs",
				Value:   "*/30 * * * *",
				Sources: cli.EnvVars("REPLAN_CRON"),
			},
			&cli.StringSliceFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "User IDs whose schedules are replanned",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "constraints",
				Aliases:  []string{"c"},
				Usage:    "Path to a JSON constraints file used for replanning",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Storage URL (file://, postgres:// or redis://)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (memory, kafka)",
				Value:   "memory",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
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

			logger := log.WithModule("replan")

			constraints, err := readConstraints(command.String("constraints"))
			if err != nil {
				return err
			}

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			scheduler := services.NewScheduler(store, eventBus, logger)
			users := command.StringSlice("user")

			c := cron.New()

			_, err = c.AddFunc(command.String("schedule"), func() {
				replanAll(ctx, logger, scheduler, users, *constraints)
			})
			if err != nil {
				return fmt.Errorf("invalid cron expression: %w", err)
			}

			logger.InfoContext(ctx, "Starting replan daemon",
				"cron", command.String("schedule"), "users", len(users))
			c.Start()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig

			logger.InfoContext(ctx, "Stopping replan daemon")
			<-c.Stop().Done()

			return nil
		},
	}
}

// replanAll retries the conflicted tasks of every schedule. Schedules
// without conflicted tasks are left untouched.
func replanAll(ctx context.Context, logger *slog.Logger, scheduler *services.Scheduler, users []string, constraints models.Constraints) {
	for _, userID := range users {
		schedules, err := scheduler.Schedules(ctx, userID)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to list schedules", "user_id", userID, "error", err)

			continue
		}

		for _, sched := range schedules {
			conflicted := conflictedTaskIDs(sched.Tasks)
			if len(conflicted) == 0 {
				continue
			}

			_, result, err := scheduler.Reschedule(ctx, sched.ID, conflicted, constraints)
			if err != nil {
				logger.ErrorContext(ctx, "Replan failed", "schedule_id", sched.ID, "error", err)

				continue
			}

			logger.InfoContext(ctx, "Replanned schedule",
				"schedule_id", sched.ID,
				"retried", len(conflicted),
				"still_conflicted", len(result.Issues))
		}
	}
}

func conflictedTaskIDs(tasks []models.Task) []string {
	var ids []string

	for _, task := range tasks {
		if task.Status == models.TaskStatusConflicted {
			ids = append(ids, task.ID)
		}
	}

	return ids
}

func readConstraints(path string) (*models.Constraints, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading constraints file: %w", err)
	}

	var constraints models.Constraints
	if err := json.Unmarshal(payload, &constraints); err != nil {
		return nil, fmt.Errorf("parsing constraints file: %w", err)
	}

	return &constraints, nil
}
