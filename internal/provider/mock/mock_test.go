package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/soma/internal/bbox"
	"github.com/saturnino-fabrica-de-software/soma/internal/imaging"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider"
)

func TestDetector_Detect(t *testing.T) {
	d := NewDetector()
	ctx := context.Background()

	tests := []struct {
		name      string
		threshold float32
		wantFaces int
	}{
		{name: "below confidence", threshold: 0.5, wantFaces: 1},
		{name: "above confidence", threshold: 0.995, wantFaces: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := d.Detect(ctx, imaging.New(100, 200), tt.threshold)
			require.NoError(t, err)

			faces, ok := res.(provider.FaceDetection)
			require.True(t, ok)
			assert.Len(t, faces, tt.wantFaces)
		})
	}

	res, err := d.Detect(ctx, imaging.New(100, 200), 0.1)
	require.NoError(t, err)
	f := res.(provider.FaceDetection)[0]
	assert.Equal(t, bbox.SpacePixel, f.Space)
	assert.InDelta(t, 10, f.X1, 1e-4)
	assert.InDelta(t, 180, f.Y2, 1e-4)
	assert.Len(t, f.Keypoints, 5)
}

func TestExtractor_Detect(t *testing.T) {
	e := NewExtractor()
	ctx := context.Background()

	img := imaging.New(8, 8)
	img.SetRGB(1, 1, 200, 10, 10)

	res, err := e.Detect(ctx, img, 0)
	require.NoError(t, err)
	emb, ok := res.(provider.FaceEmbedding)
	require.True(t, ok)
	assert.Len(t, emb, provider.EmbeddingSize)

	var norm float64
	for _, v := range emb {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-4)

	again, err := e.Detect(ctx, img, 0)
	require.NoError(t, err)
	assert.Equal(t, emb, again)

	other, err := e.Detect(ctx, imaging.New(8, 8), 0)
	require.NoError(t, err)
	assert.NotEqual(t, emb, other)
}

func TestScripted(t *testing.T) {
	boom := errors.New("boom")
	face := provider.FaceDetection{bbox.New(0, 0, 1, 1, 0.8, nil)}
	s := &Scripted{
		Results: []provider.Result{nil, face},
		Errs:    []error{boom, nil},
	}
	ctx := context.Background()

	_, err := s.Detect(ctx, imaging.New(3, 2), 0.4)
	assert.ErrorIs(t, err, boom)

	res, err := s.Detect(ctx, imaging.New(2, 3), 0.4)
	require.NoError(t, err)
	assert.Equal(t, face, res)

	// script exhausted: last entry repeats
	res, err = s.Detect(ctx, imaging.New(2, 3), 0.4)
	require.NoError(t, err)
	assert.Equal(t, face, res)

	calls := s.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, Call{Width: 3, Height: 2, Threshold: 0.4}, calls[0])
}

func TestScripted_EmptyScript(t *testing.T) {
	res, err := (&Scripted{}).Detect(context.Background(), imaging.New(1, 1), 0.5)
	require.NoError(t, err)
	assert.Equal(t, provider.FaceDetection{}, res)
}
