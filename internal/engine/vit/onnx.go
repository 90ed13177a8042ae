package vit

import (
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// defaultInputSide is used when the model declares dynamic spatial dims.
const defaultInputSide = 224

// onnxSession wraps a DynamicAdvancedSession for ViT-style image classifiers.
type onnxSession struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	inputSide  int64
	numClasses int64
}

// newONNXSession loads the ONNX model and creates an inference session.
// It validates the model's input/output tensor names and shapes.
func newONNXSession(modelPath string) (*onnxSession, error) {
	// Resolve the ONNX Runtime shared library path. We ship it alongside the
	// model files in the models/ directory.
	modelDir := filepath.Dir(modelPath)
	libPath := filepath.Join(modelDir, "libonnxruntime.so")

	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	// Inspect model to discover tensor names and shapes.
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	// Validate expected image input — a single [batch, 3, H, W] tensor.
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected 1 input tensor, got %d", len(inputs))
	}
	inputName := inputs[0].Name
	inDims := inputs[0].Dimensions
	if len(inDims) != 4 {
		return nil, fmt.Errorf("onnx: expected 4D input tensor, got %v", inDims)
	}
	if inDims[1] != 3 {
		return nil, fmt.Errorf("onnx: expected 3-channel input, got %d channels", inDims[1])
	}
	inputSide := inDims[2]
	if inputSide <= 0 {
		inputSide = defaultInputSide
	}
	if inDims[3] > 0 && inDims[3] != inputSide {
		return nil, fmt.Errorf("onnx: non-square input %dx%d not supported", inDims[2], inDims[3])
	}

	// Validate output — expect a single logits tensor with shape [batch, classes].
	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}
	outputName := outputs[0].Name
	outDims := outputs[0].Dimensions
	if len(outDims) != 2 {
		return nil, fmt.Errorf("onnx: expected 2D logits tensor, got %v", outDims)
	}
	numClasses := outDims[1]
	if numClasses <= 0 {
		return nil, fmt.Errorf("onnx: model declares dynamic class dimension %v", outDims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputName},
		[]string{outputName},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxSession{
		session:    session,
		inputName:  inputName,
		outputName: outputName,
		inputSide:  inputSide,
		numClasses: numClasses,
	}, nil
}

// infer runs a single inference call. pixels is a flat [3 * side * side]
// CHW slice for one image. Returns the raw logits as a flat float32 slice of
// length numClasses.
func (s *onnxSession) infer(pixels []float32) ([]float32, error) {
	shape := ort.NewShape(1, 3, s.inputSide, s.inputSide)

	tIn, err := ort.NewTensor(shape, pixels)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer tIn.Destroy()

	outShape := ort.NewShape(1, s.numClasses)
	tOut, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	err = s.session.Run(
		[]ort.Value{tIn},
		[]ort.Value{tOut},
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	// Copy data out before tensor is destroyed.
	src := tOut.GetData()
	result := make([]float32, len(src))
	copy(result, src)
	return result, nil
}

// close releases the ONNX session resources.
func (s *onnxSession) close() error {
	return s.session.Destroy()
}
