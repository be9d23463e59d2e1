package mock

import (
	"context"
	"crypto/sha256"
	"math"
	"sync"

	"github.com/saturnino-fabrica-de-software/soma/internal/bbox"
	"github.com/saturnino-fabrica-de-software/soma/internal/imaging"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider"
)

// Detector finge uma detecção: uma face centralizada cobrindo 80% da imagem.
// Used by the "mock" backend so the services run without model files.
type Detector struct {
	Confidence float32
}

func NewDetector() *Detector {
	return &Detector{Confidence: 0.99}
}

func (d *Detector) Detect(ctx context.Context, img *imaging.Image, threshold float32) (provider.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Confidence < threshold {
		return provider.FaceDetection{}, nil
	}

	// unit-square layout of a frontal face
	b := bbox.New(0.1, 0.1, 0.9, 0.9, d.Confidence, []bbox.Point{
		{X: 0.35, Y: 0.4},
		{X: 0.65, Y: 0.4},
		{X: 0.5, Y: 0.55},
		{X: 0.4, Y: 0.7},
		{X: 0.6, Y: 0.7},
	})
	scaled, err := b.ApplyImageScale(img.Width(), img.Height(), 1, 1)
	if err != nil {
		return nil, err
	}
	return provider.FaceDetection{scaled}, nil
}

// Extractor gera embedding determinístico baseado no hash dos pixels.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Detect(ctx context.Context, img *imaging.Image, _ float32) (provider.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := img.EncodePNG()
	if err != nil {
		return nil, err
	}
	return provider.FaceEmbedding(generateEmbedding(data)), nil
}

// generateEmbedding maps the sha256 of data onto a unit-length vector
func generateEmbedding(data []byte) []float32 {
	hash := sha256.Sum256(data)
	embedding := make([]float64, provider.EmbeddingSize)
	hashLen := len(hash)

	for i := range embedding {
		idx := i % hashLen
		// rotate bytes so the pattern does not repeat every 32 values
		v := hash[idx] ^ byte(i/hashLen*31)
		embedding[i] = (float64(v)/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(embedding))
	for i, v := range embedding {
		if norm > 0 {
			v /= norm
		}
		out[i] = float32(v)
	}
	return out
}

// Call records one Scripted invocation.
type Call struct {
	Width, Height int
	Threshold     float32
}

// Scripted returns Results[i] and Errs[i] on the i-th call; the last entry
// repeats once the script runs out.
type Scripted struct {
	Results []provider.Result
	Errs    []error

	mu    sync.Mutex
	calls []Call
}

func (s *Scripted) Detect(ctx context.Context, img *imaging.Image, threshold float32) (provider.Result, error) {
	s.mu.Lock()
	i := len(s.calls)
	s.calls = append(s.calls, Call{Width: img.Width(), Height: img.Height(), Threshold: threshold})
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := pick(s.Errs, i); err != nil {
		return nil, err
	}
	if res := pick(s.Results, i); res != nil {
		return res, nil
	}
	return provider.FaceDetection{}, nil
}

func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func pick[T any](items []T, i int) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[min(i, len(items)-1)]
}

var (
	_ provider.Detector = (*Detector)(nil)
	_ provider.Detector = (*Extractor)(nil)
	_ provider.Detector = (*Scripted)(nil)
)
