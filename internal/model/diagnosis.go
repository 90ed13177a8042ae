package model

// Source identifies which predictor produced a Diagnosis.
type Source string

const (
	SourceLocal        Source = "LOCAL"
	SourceRemoteVision Source = "REMOTE_VISION"
)

// ModelName returns the wire-level model marker for this source.
func (s Source) ModelName() string {
	switch s {
	case SourceRemoteVision:
		return "Gemini Vision"
	default:
		return "ViT (PlantVillage)"
	}
}

// TaxonomyIndexNone marks diagnoses not drawn from the fixed class table.
const TaxonomyIndexNone = -1

// Diagnosis is the normalized result record returned to callers, regardless
// of which predictor produced it. Disease is always a non-empty,
// human-readable label. ClassIndex is a valid index into the class table for
// local results and TaxonomyIndexNone for remote ones. Plant is set only
// when the remote vision model identified the species.
type Diagnosis struct {
	Disease    string
	Confidence float64
	ClassIndex int
	Source     Source
	Plant      string
}

// LocalResult is the output of the fixed-taxonomy local classifier.
type LocalResult struct {
	Index      int
	Label      string
	Confidence float64 // percent, 0-100
}

// RemoteResult is the parsed reply of the remote vision model: a best-effort
// plant identification with a self-reported confidence. Condition is the raw
// condition string ("Healthy" for healthy plants).
type RemoteResult struct {
	Plant      string
	Condition  string
	Confidence float64 // percent, self-reported by the model
}
