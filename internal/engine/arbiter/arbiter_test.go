package arbiter

import (
	"context"
	"errors"
	"image"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/plantscope/plantscope/internal/model"
)

type fakeLocal struct {
	result model.LocalResult
	err    error
	calls  int
}

func (f *fakeLocal) Classify(img image.Image) (model.LocalResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeRemote struct {
	result model.RemoteResult
	err    error
	calls  int
}

func (f *fakeRemote) Identify(ctx context.Context, img image.Image) (model.RemoteResult, error) {
	f.calls++
	return f.result, f.err
}

func testImage() image.Image {
	return image.NewNRGBA(image.Rect(0, 0, 4, 4))
}

func newArbiter(local LocalClassifier, remote RemoteClassifier) *Arbiter {
	return New(local, remote, DefaultThreshold, zerolog.Nop())
}

func TestClassify_ConfidentLocalSkipsRemote(t *testing.T) {
	local := &fakeLocal{result: model.LocalResult{Index: 3, Label: "Tomato — Late Blight", Confidence: 85}}
	remote := &fakeRemote{result: model.RemoteResult{Plant: "Basil", Condition: "Rust", Confidence: 99}}

	diag, err := newArbiter(local, remote).Classify(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	want := model.Diagnosis{
		Disease:    "Tomato — Late Blight",
		Confidence: 85,
		ClassIndex: 3,
		Source:     model.SourceLocal,
	}
	if diag != want {
		t.Errorf("expected %+v, got %+v", want, diag)
	}
	if remote.calls != 0 {
		t.Errorf("expected no remote call, got %d", remote.calls)
	}
}

func TestClassify_ThresholdBoundaryTrustsLocal(t *testing.T) {
	local := &fakeLocal{result: model.LocalResult{Index: 1, Label: "Apple — Apple Scab", Confidence: 40}}
	remote := &fakeRemote{}

	diag, err := newArbiter(local, remote).Classify(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if diag.Source != model.SourceLocal {
		t.Errorf("expected LOCAL at exact threshold, got %s", diag.Source)
	}
	if remote.calls != 0 {
		t.Errorf("expected no remote call at exact threshold, got %d", remote.calls)
	}
}

func TestClassify_LowConfidenceUsesRemote(t *testing.T) {
	local := &fakeLocal{result: model.LocalResult{Index: 7, Label: "Potato — Early Blight", Confidence: 12}}
	remote := &fakeRemote{result: model.RemoteResult{Plant: "Basil", Condition: "Healthy", Confidence: 90}}

	diag, err := newArbiter(local, remote).Classify(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	want := model.Diagnosis{
		Disease:    "Basil — Healthy",
		Confidence: 90,
		ClassIndex: model.TaxonomyIndexNone,
		Source:     model.SourceRemoteVision,
		Plant:      "Basil",
	}
	if diag != want {
		t.Errorf("expected %+v, got %+v", want, diag)
	}
	if remote.calls != 1 {
		t.Errorf("expected 1 remote call, got %d", remote.calls)
	}
}

func TestClassify_RemoteOverridesEvenAtZeroConfidence(t *testing.T) {
	local := &fakeLocal{result: model.LocalResult{Index: 2, Label: "Grape — Black Rot", Confidence: 30}}
	remote := &fakeRemote{result: model.RemoteResult{Plant: "Fern", Condition: "Leaf Spot", Confidence: 0}}

	diag, err := newArbiter(local, remote).Classify(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if diag.Source != model.SourceRemoteVision {
		t.Errorf("expected REMOTE_VISION, got %s", diag.Source)
	}
	if diag.Confidence != 0 {
		t.Errorf("expected remote confidence 0 passed through, got %v", diag.Confidence)
	}
}

func TestClassify_RemoteFailureFallsBackToLocal(t *testing.T) {
	localResult := model.LocalResult{Index: 5, Label: "Corn — Common Rust", Confidence: 18}

	for _, remoteErr := range []error{
		errors.New("network: connection reset"),
		errors.New("gemini: malformed vision reply"),
	} {
		local := &fakeLocal{result: localResult}
		remote := &fakeRemote{err: remoteErr}

		diag, err := newArbiter(local, remote).Classify(context.Background(), testImage())
		if err != nil {
			t.Fatalf("Classify must absorb remote failure, got error: %v", err)
		}
		if diag.Source != model.SourceLocal {
			t.Errorf("expected LOCAL fallback, got %s", diag.Source)
		}
		if diag.Disease != localResult.Label || diag.Confidence != localResult.Confidence {
			t.Errorf("expected original local result, got %+v", diag)
		}
	}
}

func TestClassify_NilRemoteFallsBackToLocal(t *testing.T) {
	local := &fakeLocal{result: model.LocalResult{Index: 0, Label: "Apple — Apple Scab", Confidence: 5}}

	diag, err := newArbiter(local, nil).Classify(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if diag.Source != model.SourceLocal {
		t.Errorf("expected LOCAL, got %s", diag.Source)
	}
}

func TestClassify_LocalErrorPropagated(t *testing.T) {
	wantErr := errors.New("inference defect")
	local := &fakeLocal{err: wantErr}

	if _, err := newArbiter(local, &fakeRemote{}).Classify(context.Background(), testImage()); !errors.Is(err, wantErr) {
		t.Fatalf("expected local error propagated, got %v", err)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	local := &fakeLocal{result: model.LocalResult{Index: 9, Label: "Peach — Bacterial Spot", Confidence: 22}}
	remote := &fakeRemote{result: model.RemoteResult{Plant: "Rose", Condition: "Black Spot", Confidence: 77}}
	arb := newArbiter(local, remote)

	first, err := arb.Classify(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	second, err := arb.Classify(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical diagnoses, got %+v then %+v", first, second)
	}
}

func TestComposeLabel(t *testing.T) {
	tests := []struct {
		plant, condition, want string
	}{
		{"Basil", "Healthy", "Basil — Healthy"},
		{"Basil", "healthy", "Basil — Healthy"},
		{"Basil", "HEALTHY", "Basil — Healthy"},
		{"Mint", "Rust", "Mint — Rust"},
		{"Aloe Vera", "Root Rot", "Aloe Vera — Root Rot"},
	}
	for _, tt := range tests {
		if got := composeLabel(tt.plant, tt.condition); got != tt.want {
			t.Errorf("composeLabel(%q, %q) = %q, want %q", tt.plant, tt.condition, got, tt.want)
		}
	}
}
