// Package events defines the run lifecycle notifications published on the
// event bus.
package events

import (
	"time"

	"github.com/plandyhq/plandy/pkg/models"
)

type EventType string

// Topic is the event bus topic every run lifecycle event is published on.
const Topic = "plandy.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	RunStartedEvent        EventType = "run.started"
	StageCompletedEvent    EventType = "run.stage.completed"
	RunCompletedEvent      EventType = "run.completed"
	RunFailedEvent         EventType = "run.failed"
	ScheduleAllocatedEvent EventType = "schedule.allocated"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
}

type RunStarted struct {
	BaseEvent

	Intent    string `json:"intent,omitempty"`
	TaskCount int    `json:"task_count"`
}

func (e RunStarted) GetType() EventType {
	return RunStartedEvent
}

type StageCompleted struct {
	BaseEvent

	Stage models.StageName `json:"stage"`
	Next  models.StageName `json:"next"`
	Step  int              `json:"step"`
}

func (e StageCompleted) GetType() EventType {
	return StageCompletedEvent
}

type RunCompleted struct {
	BaseEvent

	Steps    int           `json:"steps"`
	Duration time.Duration `json:"duration"`
}

func (e RunCompleted) GetType() EventType {
	return RunCompletedEvent
}

type RunFailed struct {
	BaseEvent

	Stage models.StageName `json:"stage"`
	Error string           `json:"error"`
}

func (e RunFailed) GetType() EventType {
	return RunFailedEvent
}

type ScheduleAllocated struct {
	BaseEvent

	ScheduleID string `json:"schedule_id"`
	Placed     int    `json:"placed"`
	Issues     int    `json:"issues"`
}

func (e ScheduleAllocated) GetType() EventType {
	return ScheduleAllocatedEvent
}
