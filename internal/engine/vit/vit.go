// Package vit wraps the locally-hosted ViT image classifier trained on the
// fixed PlantVillage disease taxonomy.
package vit

import (
	"fmt"
	"image"
	"math"

	"github.com/plantscope/plantscope/internal/engine/classtable"
	"github.com/plantscope/plantscope/internal/model"
)

// inferenceSession is the slice of the ONNX session the classifier needs.
type inferenceSession interface {
	infer(pixels []float32) ([]float32, error)
	close() error
}

// Classifier runs local ViT inference and maps the predicted index to a
// disease label via the class table. Safe for concurrent use; the session
// and table are read-only after construction.
type Classifier struct {
	sess  inferenceSession
	table *classtable.Table
	side  int
}

// New loads the ONNX model at modelPath and binds it to the class table.
// The model's output class count must match the table.
func New(modelPath string, table *classtable.Table) (*Classifier, error) {
	sess, err := newONNXSession(modelPath)
	if err != nil {
		return nil, fmt.Errorf("vit: %w", err)
	}

	if int(sess.numClasses) != table.Len() {
		sess.close()
		return nil, fmt.Errorf("vit: model has %d output classes, class table has %d",
			sess.numClasses, table.Len())
	}

	return &Classifier{sess: sess, table: table, side: int(sess.inputSide)}, nil
}

// Classify runs inference on a decoded image and returns the top class.
// It never fails for a validly-decoded image once the model is loaded; an
// inference error here indicates a defect and is propagated as-is.
func (c *Classifier) Classify(img image.Image) (model.LocalResult, error) {
	pixels := preprocess(img, c.side)

	logits, err := c.sess.infer(pixels)
	if err != nil {
		return model.LocalResult{}, fmt.Errorf("vit: %w", err)
	}

	probs := softmax(logits)
	idx := argmax(probs)

	return model.LocalResult{
		Index:      idx,
		Label:      c.table.Label(idx),
		Confidence: round2(probs[idx] * 100),
	}, nil
}

// Close releases ONNX Runtime resources.
func (c *Classifier) Close() error {
	if c.sess != nil {
		return c.sess.close()
	}
	return nil
}

// softmax converts logits to probabilities, shifted by the max for
// numerical stability.
func softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}
	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		if float64(l) > maxLogit {
			maxLogit = float64(l)
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func argmax(v []float64) int {
	best := 0
	for i, x := range v {
		if x > v[best] {
			best = i
		}
	}
	return best
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
