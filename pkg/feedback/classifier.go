// Package feedback reduces free-text user feedback to the typed category and
// sentiment score the core consumes. It is a deliberately small lexicon
// classifier; anything smarter belongs to an external collaborator behind the
// same shape.
package feedback

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plandyhq/plandy/pkg/models"
)

var categoryKeywords = map[models.FeedbackCategory][]string{
	models.FeedbackCategorySchedule: {"schedule", "meeting", "deadline", "calendar", "task", "plan"},
	models.FeedbackCategoryHealth:   {"tired", "sleep", "sick", "exercise", "energy", "health"},
	models.FeedbackCategoryBalance:  {"overtime", "weekend", "family", "vacation", "balance", "burnout"},
}

var positiveWords = []string{
	"good", "great", "happy", "better", "helpful", "love", "relaxed", "productive",
}

var negativeWords = []string{
	"bad", "worse", "unhappy", "stressed", "overwhelmed", "exhausted", "hate", "tired", "burnout",
}

// Classify builds a FeedbackRecord from raw text.
func Classify(userID, text string) models.FeedbackRecord {
	lower := strings.ToLower(text)

	return models.FeedbackRecord{
		ID:        "fb-" + uuid.New().String()[:8],
		UserID:    userID,
		Text:      text,
		Category:  categorize(lower),
		Sentiment: score(lower),
		CreatedAt: time.Now(),
	}
}

func categorize(lower string) models.FeedbackCategory {
	best := models.FeedbackCategoryGeneral
	bestHits := 0

	// Fixed evaluation order keeps classification deterministic on ties.
	for _, category := range []models.FeedbackCategory{
		models.FeedbackCategorySchedule,
		models.FeedbackCategoryHealth,
		models.FeedbackCategoryBalance,
	} {
		hits := 0

		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(lower, keyword) {
				hits++
			}
		}

		if hits > bestHits {
			best = category
			bestHits = hits
		}
	}

	return best
}

// score counts sentiment words and normalizes to [-1, 1].
func score(lower string) float64 {
	var positive, negative int

	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			positive++
		}
	}

	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return 0
	}

	return float64(positive-negative) / float64(total)
}
