// Package registry assembles the stage set the graph engine runs.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/plandyhq/plandy/pkg/config"
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/protocol"
	"github.com/plandyhq/plandy/pkg/stages/communication"
	"github.com/plandyhq/plandy/pkg/stages/data"
	"github.com/plandyhq/plandy/pkg/stages/health"
	"github.com/plandyhq/plandy/pkg/stages/plan"
	"github.com/plandyhq/plandy/pkg/stages/supervisor"
	"github.com/plandyhq/plandy/pkg/stages/worklife"
)

type Registry struct {
	logger *slog.Logger
	stages map[models.StageName]protocol.Stage
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		stages: make(map[models.StageName]protocol.Stage),
	}
}

func (r *Registry) Register(stage protocol.Stage) {
	r.stages[stage.Name()] = stage
}

func (r *Registry) Stage(name models.StageName) (protocol.Stage, error) {
	stage, ok := r.stages[name]
	if !ok {
		return nil, fmt.Errorf("stage %q not registered", name)
	}

	return stage, nil
}

func (r *Registry) Stages() []protocol.Stage {
	out := make([]protocol.Stage, 0, len(r.stages))
	for _, stage := range r.stages {
		out = append(out, stage)
	}

	return out
}

// Default registers the canonical six stages. A nil renderer selects the
// built-in deterministic text renderer.
func Default(logger *slog.Logger, cfg config.Config, renderer protocol.Renderer) *Registry {
	r := NewRegistry(logger)

	r.Register(supervisor.New(logger))
	r.Register(health.New(logger))
	r.Register(plan.New(logger, cfg))
	r.Register(data.New(logger))
	r.Register(worklife.New(logger))
	r.Register(communication.New(logger, renderer))

	return r
}
