package face

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/saturnino-fabrica-de-software/soma/internal/config"
	"github.com/saturnino-fabrica-de-software/soma/internal/inference"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider/arcface"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider/rekognition"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider/scrfd"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider/yolo"
)

// Detectors is the set of models the face service routes to.
type Detectors struct {
	// Detect serves general detection: the ensemble, or the single-shot model alone.
	Detect provider.Detector
	// Retina is the anchor-grid model; nil when only the single-shot model is loaded.
	Retina provider.Detector
	// Largest serves largest-face and alignment requests.
	Largest provider.Detector
	// Embed is the embedding extractor; nil in detect-only mode.
	Embed provider.Detector

	closers []io.Closer
	runtime bool
}

// Close releases every model session and the onnxruntime environment.
func (d *Detectors) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c.Close())
	}
	if d.runtime {
		errs = append(errs, inference.ShutdownRuntime())
	}
	return errors.Join(errs...)
}

// NewDetectors creates the detectors selected by DETECTOR_BACKEND.
//
// Backends:
//   - onnx: local YOLO, SCRFD (unless FORCE_YOLO) and ArcFace (unless ONLY_DETECT) models
//   - rekognition: AWS Rekognition for detection, local ArcFace for embeddings
//   - mock: scripted detector and hash embeddings, for dev/test without models
func NewDetectors(ctx context.Context, cfg *config.FaceConfig, logger *slog.Logger) (*Detectors, error) {
	switch cfg.Backend {
	case config.BackendMock:
		return newMockDetectors(cfg), nil
	case config.BackendRekognition:
		return newRekognitionDetectors(ctx, cfg, logger)
	case config.BackendONNX, "":
		return newONNXDetectors(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown detector backend: %s (supported: %s, %s, %s)",
			cfg.Backend, config.BackendONNX, config.BackendRekognition, config.BackendMock)
	}
}

func newMockDetectors(cfg *config.FaceConfig) *Detectors {
	det := mock.NewDetector()
	d := &Detectors{Detect: det, Largest: det}
	if !cfg.ForceYOLO {
		d.Retina = det
		d.Detect = NewEnsemble(det, det)
	}
	if !cfg.OnlyDetect {
		d.Embed = mock.NewExtractor()
	}
	return d
}

func newRekognitionDetectors(ctx context.Context, cfg *config.FaceConfig, logger *slog.Logger) (*Detectors, error) {
	rekogCfg := rekognition.Config{Region: cfg.AWSRegion, MinQuality: cfg.MinQuality}
	client, err := rekognition.NewClient(ctx, rekogCfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	det := rekognition.NewDetector(client, rekogCfg, logger)

	d := &Detectors{Detect: det, Largest: det}
	if cfg.OnlyDetect {
		return d, nil
	}

	if err := requireModels(cfg.ArcFaceModel); err != nil {
		return nil, err
	}
	if err := inference.InitRuntime(cfg.ORTLibPath); err != nil {
		return nil, err
	}
	d.runtime = true

	embed, err := openSession(cfg, cfg.ArcFaceModel, arcface.InputName)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.closers = append(d.closers, embed)
	d.Embed = arcface.NewExtractor(embed, logger)
	return d, nil
}

func newONNXDetectors(cfg *config.FaceConfig, logger *slog.Logger) (_ *Detectors, err error) {
	models := []string{cfg.YOLOModel}
	if !cfg.ForceYOLO {
		models = append(models, cfg.SCRFDModel)
	}
	if !cfg.OnlyDetect {
		models = append(models, cfg.ArcFaceModel)
	}
	if err := requireModels(models...); err != nil {
		return nil, err
	}

	if err := inference.InitRuntime(cfg.ORTLibPath); err != nil {
		return nil, err
	}
	d := &Detectors{runtime: true}
	defer func() {
		if err != nil {
			_ = d.Close()
		}
	}()

	yoloSession, err := openSession(cfg, cfg.YOLOModel, yolo.InputName)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, yoloSession)
	yoloDet, err := yolo.NewDetector(yoloSession, yolo.DefaultInputSize, cfg.NMSIoU, logger)
	if err != nil {
		return nil, err
	}
	d.Detect, d.Largest = yoloDet, yoloDet

	if !cfg.ForceYOLO {
		retinaSession, err := openSession(cfg, cfg.SCRFDModel, scrfd.InputName)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, retinaSession)
		retina, err := scrfd.NewDetector(retinaSession, scrfd.DefaultParams(), cfg.NMSIoU, logger)
		if err != nil {
			return nil, err
		}
		d.Retina = retina
		d.Detect = NewEnsemble(yoloDet, retina)
	}

	if !cfg.OnlyDetect {
		embedSession, err := openSession(cfg, cfg.ArcFaceModel, arcface.InputName)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, embedSession)
		d.Embed = arcface.NewExtractor(embedSession, logger)
	}

	logger.Info("detectors loaded",
		"force_yolo", cfg.ForceYOLO,
		"only_detect", cfg.OnlyDetect,
		"sessions", len(d.closers),
	)
	return d, nil
}

func openSession(cfg *config.FaceConfig, model, input string) (*inference.Session, error) {
	s, err := inference.NewSession(inference.SessionConfig{
		ModelPath:      model,
		InputName:      input,
		IntraOpThreads: cfg.IntraOpThreads,
	})
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", model, err)
	}
	return s, nil
}

func requireModels(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%w: %s", inference.ErrModelNotFound, p)
		}
	}
	return nil
}
