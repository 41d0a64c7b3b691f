package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/plandyhq/plandy/pkg/graph"
	"github.com/plandyhq/plandy/pkg/persistence"
	"github.com/plandyhq/plandy/pkg/services"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.Is(err, persistence.ErrScheduleNotFound):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("schedule_not_found").
			WithDetail("schedule not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}

// handleRunError maps graph run failures onto RFC 7807 problems. Budget
// exhaustion and timeouts are server-side failures; validation errors
// surfaced by stages map to 400.
func handleRunError(c fiber.Ctx, err error) error {
	var runErr *graph.RunError
	if !errors.As(err, &runErr) {
		return internalError(c, err)
	}

	problemType := "run_failed"

	switch {
	case errors.Is(err, graph.ErrStepBudgetExceeded):
		problemType = "step_budget_exceeded"
	case errors.Is(err, graph.ErrStageTimeout):
		problemType = "stage_timeout"
	case errors.Is(err, graph.ErrContractViolation):
		problemType = "contract_violation"
	}

	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(runErr.Error())

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}
