package web

import (
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/plandyhq/plandy/pkg/models"
)

// placementSchema validates imported placement documents, such as calendar
// exports, before they reach the conflict detector.
const placementSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"properties": {
			"start": {"type": "string", "format": "date-time"},
			"end":   {"type": "string", "format": "date-time"}
		},
		"required": ["start", "end"],
		"additionalProperties": false
	}
}`

var compiledPlacementSchema = gojsonschema.NewStringLoader(placementSchema)

// parsePlacementDocument validates a raw placement document against the
// schema and converts it into the typed placement.
func parsePlacementDocument(doc map[string]any) (models.Placement, error) {
	result, err := gojsonschema.Validate(compiledPlacementSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating placement document: %w", err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("invalid placement document: %s", result.Errors()[0].String())
	}

	placement := make(models.Placement, len(doc))

	for taskID, raw := range doc {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid placement entry for task %q", taskID)
		}

		start, err := time.Parse(time.RFC3339, entry["start"].(string))
		if err != nil {
			return nil, fmt.Errorf("task %q: parsing start: %w", taskID, err)
		}

		end, err := time.Parse(time.RFC3339, entry["end"].(string))
		if err != nil {
			return nil, fmt.Errorf("task %q: parsing end: %w", taskID, err)
		}

		window, err := models.NewTimeWindow(start, end)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", taskID, err)
		}

		placement[taskID] = window
	}

	return placement, nil
}
