package gemini

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/plantscope/plantscope/internal/model"
)

// stripCodeFence removes surrounding markdown code-fence markup from a model
// reply, returning the payload between the fences. Replies without fences
// are returned trimmed.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "```") {
		return text
	}
	parts := strings.SplitN(text, "```", 3)
	if len(parts) < 2 {
		return text
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

// parseVisionReply extracts the structured identification from the vision
// model's reply text. Missing plant or disease fields default to "Unknown";
// a missing confidence defaults to 50, matching the model's prompt contract.
func parseVisionReply(text string) (model.RemoteResult, error) {
	payload := stripCodeFence(text)

	var raw struct {
		Plant      string          `json:"plant"`
		Disease    string          `json:"disease"`
		Confidence json.RawMessage `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return model.RemoteResult{}, fmt.Errorf("gemini: malformed vision reply: %w", err)
	}

	confidence := 50.0
	if len(raw.Confidence) > 0 {
		var err error
		confidence, err = parseConfidence(raw.Confidence)
		if err != nil {
			return model.RemoteResult{}, err
		}
	}

	plant := raw.Plant
	if plant == "" {
		plant = "Unknown"
	}
	disease := raw.Disease
	if disease == "" {
		disease = "Unknown"
	}

	return model.RemoteResult{
		Plant:      plant,
		Condition:  disease,
		Confidence: confidence,
	}, nil
}

// parseConfidence accepts the numeric confidence either as a JSON number or
// as a numeric string (the model occasionally quotes it).
func parseConfidence(raw json.RawMessage) (float64, error) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		num, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
		if err == nil {
			return num, nil
		}
	}
	return 0, fmt.Errorf("gemini: non-numeric confidence %s", string(raw))
}
