package inference

import (
	"context"
	"errors"
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/saturnino-fabrica-de-software/soma/internal/numgrid"
)

var (
	ErrModelNotFound = errors.New("inference: model file not found")
	ErrOutputType    = errors.New("inference: unsupported output tensor type")
)

// Engine runs a forward pass over one preprocessed input.
type Engine interface {
	Run(ctx context.Context, input *numgrid.Grid) ([]*numgrid.Grid, error)
	OutputNames() []string
	Close() error
}

// InitRuntime loads the onnxruntime shared library and creates the process-wide environment.
func InitRuntime(libPath string) error {
	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// ShutdownRuntime releases the environment. Sessions must be closed first.
func ShutdownRuntime() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

type SessionConfig struct {
	ModelPath string
	// InputName defaults to the first input declared by the model.
	InputName      string
	IntraOpThreads int
}

// Session is an Engine backed by an onnxruntime dynamic session.
// Output tensors are allocated per call, so Run may be used concurrently.
type Session struct {
	session *ort.DynamicAdvancedSession
	model   string
	input   string
	outputs []string
}

func NewSession(cfg SessionConfig) (*Session, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("read model metadata %s: %w", cfg.ModelPath, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s declares no inputs or outputs", cfg.ModelPath)
	}

	inputName := cfg.InputName
	if inputName == "" {
		inputName = inputs[0].Name
	}
	outputNames := make([]string, len(outputs))
	for i, o := range outputs {
		outputNames[i] = o.Name
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer opts.Destroy()

	if cfg.IntraOpThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("set intra-op threads: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, []string{inputName}, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", cfg.ModelPath, err)
	}

	return &Session{
		session: session,
		model:   cfg.ModelPath,
		input:   inputName,
		outputs: outputNames,
	}, nil
}

func (s *Session) OutputNames() []string {
	return append([]string(nil), s.outputs...)
}

func (s *Session) Run(ctx context.Context, input *numgrid.Grid) ([]*numgrid.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shape := input.Shape()
	dims := make([]int64, len(shape))
	for i, d := range shape {
		dims[i] = int64(d)
	}

	in, err := ort.NewTensor(ort.NewShape(dims...), input.Data())
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer in.Destroy()

	values := make([]ort.Value, len(s.outputs))
	defer func() {
		for _, v := range values {
			if v != nil {
				v.Destroy()
			}
		}
	}()

	if err := s.session.Run([]ort.Value{in}, values); err != nil {
		return nil, fmt.Errorf("run %s: %w", s.model, err)
	}

	grids := make([]*numgrid.Grid, len(values))
	for i, v := range values {
		t, ok := v.(*ort.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("%w: output %s is %T", ErrOutputType, s.outputs[i], v)
		}

		outShape := t.GetShape()
		gridShape := make([]int, len(outShape))
		for j, d := range outShape {
			gridShape[j] = int(d)
		}

		data := append([]float32(nil), t.GetData()...)
		g, err := numgrid.New(data, gridShape...)
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", s.outputs[i], err)
		}
		grids[i] = g
	}
	return grids, nil
}

func (s *Session) Close() error {
	return s.session.Destroy()
}
