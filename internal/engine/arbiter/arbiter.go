// Package arbiter implements the dual-model decision procedure: trust the
// fast local classifier when it is confident, escalate to the remote vision
// model when it is not, and degrade to the local result when the remote
// path yields nothing.
package arbiter

import (
	"context"
	"image"
	"strings"

	"github.com/rs/zerolog"

	"github.com/plantscope/plantscope/internal/model"
)

// DefaultThreshold is the local-confidence cutoff (percent) below which the
// remote vision model is consulted.
const DefaultThreshold = 40.0

// LocalClassifier is the fixed-taxonomy local predictor. It never fails for
// a validly-decoded image; an error is a defect and is propagated.
type LocalClassifier interface {
	Classify(img image.Image) (model.LocalResult, error)
}

// RemoteClassifier is the broad-coverage cloud vision predictor. Any error
// (unavailable, network failure, malformed reply) is absorbed by the
// arbiter, never surfaced to the request.
type RemoteClassifier interface {
	Identify(ctx context.Context, img image.Image) (model.RemoteResult, error)
}

// Arbiter produces exactly one Diagnosis per request from the two
// predictors.
type Arbiter struct {
	local     LocalClassifier
	remote    RemoteClassifier
	threshold float64
	log       zerolog.Logger
}

// New creates an Arbiter. remote may be nil when the cloud models are not
// configured.
func New(local LocalClassifier, remote RemoteClassifier, threshold float64, log zerolog.Logger) *Arbiter {
	return &Arbiter{local: local, remote: remote, threshold: threshold, log: log}
}

// Classify runs the decision procedure on a decoded image.
//
// The local result is returned verbatim when its confidence meets the
// threshold. Below the threshold the remote model is consulted; a successful
// remote result overrides the local one unconditionally, even at a lower
// confidence, because remote coverage (any plant species) outweighs local
// precision once the local model has signaled an out-of-taxonomy case. A
// failed or unavailable remote call falls back to the original local result.
func (a *Arbiter) Classify(ctx context.Context, img image.Image) (model.Diagnosis, error) {
	local, err := a.local.Classify(img)
	if err != nil {
		return model.Diagnosis{}, err
	}
	a.log.Info().Str("disease", local.Label).Float64("confidence", local.Confidence).Msg("local classification")

	localDiag := model.Diagnosis{
		Disease:    local.Label,
		Confidence: local.Confidence,
		ClassIndex: local.Index,
		Source:     model.SourceLocal,
	}

	if local.Confidence >= a.threshold {
		return localDiag, nil
	}

	a.log.Info().
		Float64("confidence", local.Confidence).
		Float64("threshold", a.threshold).
		Msg("local confidence below threshold, trying remote vision")

	if a.remote == nil {
		a.log.Warn().Msg("remote vision not configured, returning local result")
		return localDiag, nil
	}

	remote, err := a.remote.Identify(ctx, img)
	if err != nil {
		a.log.Warn().Err(err).Msg("remote vision unavailable, returning local result")
		return localDiag, nil
	}

	diag := model.Diagnosis{
		Disease:    composeLabel(remote.Plant, remote.Condition),
		Confidence: remote.Confidence,
		ClassIndex: model.TaxonomyIndexNone,
		Source:     model.SourceRemoteVision,
		Plant:      remote.Plant,
	}
	a.log.Info().Str("disease", diag.Disease).Float64("confidence", diag.Confidence).Msg("remote classification")
	return diag, nil
}

// composeLabel builds the disease label for a remote result. A condition of
// "healthy" in any casing is normalized to "Healthy".
func composeLabel(plant, condition string) string {
	if strings.EqualFold(condition, "healthy") {
		return plant + " — Healthy"
	}
	return plant + " — " + condition
}
