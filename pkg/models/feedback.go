package models

import "time"

// FeedbackCategory groups user feedback by topic.
type FeedbackCategory string

const (
	FeedbackCategorySchedule FeedbackCategory = "schedule"
	FeedbackCategoryHealth   FeedbackCategory = "health"
	FeedbackCategoryBalance  FeedbackCategory = "balance"
	FeedbackCategoryGeneral  FeedbackCategory = "general"
)

// FeedbackRecord is user feedback already reduced to a category and a
// sentiment score in [-1, 1]. The core consumes it typed; the text-to-score
// reduction lives in pkg/feedback.
type FeedbackRecord struct {
	ID        string           `json:"id"        validate:"required"`
	UserID    string           `json:"user_id"   validate:"required"`
	Text      string           `json:"text"`
	Category  FeedbackCategory `json:"category"`
	Sentiment float64          `json:"sentiment" validate:"min=-1,max=1"`
	Rating    float64          `json:"rating,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
