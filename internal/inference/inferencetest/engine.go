// Package inferencetest provides a scripted inference.Engine for tests.
package inferencetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/saturnino-fabrica-de-software/soma/internal/numgrid"
)

// Engine returns the same outputs on every call and records the inputs it saw.
type Engine struct {
	Names   []string
	Outputs []*numgrid.Grid
	Err     error

	mu     sync.Mutex
	inputs []*numgrid.Grid
	closed bool
}

func (e *Engine) Run(ctx context.Context, input *numgrid.Grid) ([]*numgrid.Grid, error) {
	e.mu.Lock()
	e.inputs = append(e.inputs, input)
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Outputs, nil
}

func (e *Engine) OutputNames() []string {
	if e.Names != nil {
		return e.Names
	}
	names := make([]string, len(e.Outputs))
	for i := range names {
		names[i] = fmt.Sprintf("output%d", i)
	}
	return names
}

func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

// Inputs returns every input passed to Run.
func (e *Engine) Inputs() []*numgrid.Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*numgrid.Grid(nil), e.inputs...)
}

func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
