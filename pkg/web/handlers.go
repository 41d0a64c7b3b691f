// Package web provides HTTP handlers and REST API endpoints for the
// scheduling service.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/plandyhq/plandy/pkg/graph"
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/services"
)

type APIHandlers struct {
	engine    *graph.Engine
	scheduler *services.Scheduler
	feedback  *services.Feedback
	validator *validator.Validate
	healthFn  func(c fiber.Ctx) error
}

func NewAPIHandlers(
	engine *graph.Engine,
	scheduler *services.Scheduler,
	feedback *services.Feedback,
	validator *validator.Validate,
	healthFn func(c fiber.Ctx) error,
) *APIHandlers {
	return &APIHandlers{
		engine:    engine,
		scheduler: scheduler,
		feedback:  feedback,
		validator: validator,
		healthFn:  healthFn,
	}
}

// CreateRun drives one request through the workflow graph and returns the
// terminal state.
func (h *APIHandlers) CreateRun(c fiber.Ctx) error {
	var req RunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, err := h.engine.Run(c.Context(), models.ScheduleRequest{
		UserID:      req.UserID,
		Intent:      req.Intent,
		Tasks:       req.Tasks,
		Constraints: req.Constraints,
		Existing:    req.Existing,
		Feedback:    req.Feedback,
	})
	if err != nil {
		return handleRunError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(RunResponse{
		RunID:          state.RunID,
		Steps:          state.Steps,
		RoutingHistory: state.RoutingHistory,
		Message:        state.Message,
		PlanReport:     state.PlanReport,
		HealthReport:   state.HealthReport,
		Analytics:      state.Analytics,
		BalanceReport:  state.BalanceReport,
	})
}

// AllocateSchedule runs the allocation engine directly and persists the
// result.
func (h *APIHandlers) AllocateSchedule(c fiber.Ctx) error {
	var req AllocateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	sched, result, err := h.scheduler.Allocate(c.Context(), services.AllocateParams{
		UserID:      req.UserID,
		Title:       req.Title,
		Tasks:       req.Tasks,
		Constraints: req.Constraints,
		Existing:    req.Existing,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"schedule": sched,
		"issues":   result.Issues,
	})
}

// RescheduleSchedule re-allocates around the changed tasks of a stored
// schedule.
func (h *APIHandlers) RescheduleSchedule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Schedule ID is required")
	}

	var req RescheduleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	sched, result, err := h.scheduler.Reschedule(c.Context(), id, req.Changed, req.Constraints)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"schedule": sched,
		"diff":     result.Diff,
		"issues":   result.Issues,
	})
}

// FindConflicts validates an imported placement document and reports every
// overlapping pair.
func (h *APIHandlers) FindConflicts(c fiber.Ctx) error {
	var req ConflictsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	placement, err := parsePlacementDocument(req.Placement)
	if err != nil {
		return badRequest(c, err.Error())
	}

	conflicts := h.scheduler.Conflicts(c.Context(), placement)

	return c.JSON(fiber.Map{
		"conflicts": conflicts,
		"count":     len(conflicts),
	})
}

// SuggestTimes returns free windows able to hold a task of the requested
// duration.
func (h *APIHandlers) SuggestTimes(c fiber.Ctx) error {
	var req SuggestRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	limit := req.Limit
	if limit == 0 {
		limit = 5
	}

	windows, err := h.scheduler.SuggestTimes(c.Context(), req.DurationMinutes, req.Constraints, req.Existing, limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"windows": windows})
}

func (h *APIHandlers) GetSchedule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Schedule ID is required")
	}

	sched, err := h.scheduler.Schedule(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(sched)
}

func (h *APIHandlers) GetSchedules(c fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return badRequest(c, "user_id query parameter is required")
	}

	schedules, err := h.scheduler.Schedules(c.Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"schedules": schedules,
		"count":     len(schedules),
	})
}

func (h *APIHandlers) DeleteSchedule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Schedule ID is required")
	}

	if err := h.scheduler.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// CreateFeedback classifies and stores user feedback.
func (h *APIHandlers) CreateFeedback(c fiber.Ctx) error {
	var req FeedbackRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	record, err := h.feedback.Submit(c.Context(), req.UserID, req.Text, req.Rating)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *APIHandlers) GetFeedback(c fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return badRequest(c, "user_id query parameter is required")
	}

	records, err := h.feedback.ByUser(c.Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"feedback": records,
		"count":    len(records),
	})
}

// GetGraph describes the fixed topology.
func (h *APIHandlers) GetGraph(c fiber.Ctx) error {
	if c.Query("format") == "mermaid" {
		c.Set("Content-Type", "text/plain; charset=utf-8")

		return c.SendString(graph.Mermaid())
	}

	return c.JSON(graph.Info())
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if h.healthFn != nil {
		if err := h.healthFn(c); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"status":    "unhealthy",
				"message":   "Plandy API is unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now().UTC(),
			})
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"message":   "Plandy API is healthy",
		"timestamp": time.Now().UTC(),
	})
}
