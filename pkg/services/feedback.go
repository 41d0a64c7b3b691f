package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/plandyhq/plandy/pkg/feedback"
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/persistence"
)

// Feedback classifies free-form user feedback and stores the records that
// the health and data stages later read back.
type Feedback struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewFeedback(store persistence.Persistence, logger *slog.Logger) *Feedback {
	return &Feedback{
		persistence: store,
		logger:      logger.With("module", "feedback_service"),
	}
}

// Submit classifies text and persists the record.
func (f *Feedback) Submit(ctx context.Context, userID, text string, rating float64) (*models.FeedbackRecord, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	if strings.TrimSpace(text) == "" {
		return nil, &ServiceError{Op: "feedback.Submit", Message: "feedback text cannot be empty", Err: ErrInvalidRequest}
	}

	record := feedback.Classify(userID, text)
	record.Rating = rating

	if err := f.persistence.SaveFeedback(ctx, &record); err != nil {
		return nil, &ServiceError{Op: "feedback.Submit", Message: "persisting feedback", Err: err}
	}

	f.logger.InfoContext(ctx, "Feedback recorded",
		"feedback_id", record.ID,
		"user_id", userID,
		"category", record.Category,
		"sentiment", record.Sentiment)

	return &record, nil
}

// ByUser returns all stored feedback for a user, newest first per the
// backing store's ordering.
func (f *Feedback) ByUser(ctx context.Context, userID string) ([]*models.FeedbackRecord, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	return f.persistence.FeedbackByUser(ctx, userID)
}
