// Package file provides file-based persistence for schedules and feedback,
// one JSON document per record.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/persistence"
)

const dirMode = 0o755

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root string
}

// NewPersistence creates a file store rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) schedulesDir() string {
	return filepath.Join(p.root, "schedules")
}

func (p *Persistence) feedbackDir() string {
	return filepath.Join(p.root, "feedback")
}

func (p *Persistence) SaveSchedule(_ context.Context, schedule *models.Schedule) error {
	if err := os.MkdirAll(p.schedulesDir(), dirMode); err != nil {
		return &persistence.StoreError{Op: "SaveSchedule", ScheduleID: schedule.ID, Err: err}
	}

	payload, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return &persistence.StoreError{Op: "SaveSchedule", ScheduleID: schedule.ID, Err: err}
	}

	path := filepath.Join(p.schedulesDir(), schedule.ID+".json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return &persistence.StoreError{Op: "SaveSchedule", ScheduleID: schedule.ID, Err: err}
	}

	return nil
}

func (p *Persistence) ScheduleByID(_ context.Context, id string) (*models.Schedule, error) {
	path := filepath.Join(p.schedulesDir(), id+".json")

	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", persistence.ErrScheduleNotFound, id)
		}

		return nil, &persistence.StoreError{Op: "ScheduleByID", ScheduleID: id, Err: err}
	}

	var schedule models.Schedule
	if err := json.Unmarshal(payload, &schedule); err != nil {
		return nil, &persistence.StoreError{Op: "ScheduleByID", ScheduleID: id, Err: err}
	}

	return &schedule, nil
}

func (p *Persistence) Schedules(ctx context.Context, userID string) ([]*models.Schedule, error) {
	entries, err := os.ReadDir(p.schedulesDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, &persistence.StoreError{Op: "Schedules", Err: err}
	}

	var schedules []*models.Schedule

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		schedule, err := p.ScheduleByID(ctx, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}

		if userID == "" || schedule.UserID == userID {
			schedules = append(schedules, schedule)
		}
	}

	return schedules, nil
}

func (p *Persistence) DeleteSchedule(_ context.Context, id string) error {
	path := filepath.Join(p.schedulesDir(), id+".json")

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", persistence.ErrScheduleNotFound, id)
		}

		return &persistence.StoreError{Op: "DeleteSchedule", ScheduleID: id, Err: err}
	}

	return nil
}

func (p *Persistence) SaveFeedback(_ context.Context, record *models.FeedbackRecord) error {
	dir := filepath.Join(p.feedbackDir(), record.UserID)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return &persistence.StoreError{Op: "SaveFeedback", Err: err}
	}

	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return &persistence.StoreError{Op: "SaveFeedback", Err: err}
	}

	path := filepath.Join(dir, record.ID+".json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return &persistence.StoreError{Op: "SaveFeedback", Err: err}
	}

	return nil
}

func (p *Persistence) FeedbackByUser(_ context.Context, userID string) ([]*models.FeedbackRecord, error) {
	dir := filepath.Join(p.feedbackDir(), userID)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, &persistence.StoreError{Op: "FeedbackByUser", Err: err}
	}

	var records []*models.FeedbackRecord

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		payload, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, &persistence.StoreError{Op: "FeedbackByUser", Err: err}
		}

		var record models.FeedbackRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, &persistence.StoreError{Op: "FeedbackByUser", Err: err}
		}

		records = append(records, &record)
	}

	return records, nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to clean up for files.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}
