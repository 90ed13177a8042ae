// Package advice turns a finalized diagnosis into display-ready treatment
// text. Healthy diagnoses never trigger a remote call.
package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plantscope/plantscope/internal/model"
	"github.com/plantscope/plantscope/internal/remote/gemini"
)

// Advisor is the remote language model producing treatment text.
type Advisor interface {
	Advise(ctx context.Context, disease string) (string, error)
}

const (
	healthyMessage     = "Your plant looks healthy! Keep up the good care. 🌱"
	unavailableMessage = "Treatment advice unavailable — no Gemini API key configured."
)

// Composer produces treatment text for diagnoses. remote may be nil when
// the cloud advisor is not configured.
type Composer struct {
	remote Advisor
}

// NewComposer creates a Composer around the given advisor.
func NewComposer(remote Advisor) *Composer {
	return &Composer{remote: remote}
}

// For returns treatment text for a diagnosis. It never fails: advisor
// unavailability or errors degrade to a user-facing explanation.
func (c *Composer) For(ctx context.Context, diag model.Diagnosis) string {
	if strings.Contains(strings.ToLower(diag.Disease), "healthy") {
		return healthyMessage
	}

	if c.remote == nil {
		return unavailableMessage
	}

	text, err := c.remote.Advise(ctx, diag.Disease)
	if err != nil {
		if errors.Is(err, gemini.ErrUnavailable) {
			return unavailableMessage
		}
		return fmt.Sprintf("Could not generate treatment advice: %v", err)
	}
	return text
}
