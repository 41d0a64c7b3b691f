package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	cli "github.com/urfave/cli/v3"

	"github.com/plandyhq/plandy/pkg/cmd"
	"github.com/plandyhq/plandy/pkg/config"
	"github.com/plandyhq/plandy/pkg/eventbus"
	"github.com/plandyhq/plandy/pkg/graph"
	"github.com/plandyhq/plandy/pkg/log"
	"github.com/plandyhq/plandy/pkg/otelhelper"
	"github.com/plandyhq/plandy/pkg/persistence"
	"github.com/plandyhq/plandy/pkg/registry"
	"github.com/plandyhq/plandy/pkg/services"
	"github.com/plandyhq/plandy/pkg/web"
)

const defaultPort = 9091

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	engine      *graph.Engine
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	engine *graph.Engine,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: store,
		engine:      engine,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	schedulerService := services.NewScheduler(a.persistence, a.eventBus, a.logger)
	feedbackService := services.NewFeedback(a.persistence, a.logger)

	handlers := web.NewAPIHandlers(a.engine, schedulerService, feedbackService, a.validate,
		func(c fiber.Ctx) error {
			return a.persistence.HealthCheck(c.Context())
		})

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Plandy API")
	})

	app.Post("/runs", handlers.CreateRun)

	s := app.Group("/schedules")
	s.Get("/", handlers.GetSchedules)
	s.Post("/", handlers.AllocateSchedule)
	s.Get("/:id", handlers.GetSchedule)
	s.Delete("/:id", handlers.DeleteSchedule)
	s.Post("/:id/reschedule", handlers.RescheduleSchedule)
	s.Post("/conflicts", handlers.FindConflicts)
	s.Post("/suggest", handlers.SuggestTimes)

	f := app.Group("/feedback")
	f.Get("/", handlers.GetFeedback)
	f.Post("/", handlers.CreateFeedback)

	app.Get("/graph", handlers.GetGraph)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}

func APICommand() *cli.Command {
	return &cli.Command{
		Name:    "api",
		Aliases: []string{"a"},
		Usage:   "Start the HTTP API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
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
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing (exports via OTLP HTTP)",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Plandy API")

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

			opts := []graph.Option{graph.WithPublisher(eventBus)}

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "plandy-api")
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}

				opts = append(opts, graph.WithTracer(tracer))
			}

			cfg := config.Default()
			stages := registry.Default(logger, cfg, nil)
			engine := graph.NewEngine(cfg, logger, stages.Stages(), opts...)

			api := NewAPI(logger, store, engine, eventBus)

			return api.Start(command.Int("port"))
		},
	}
}
