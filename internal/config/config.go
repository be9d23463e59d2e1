package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Detector backends for the face service.
const (
	BackendONNX        = "onnx"
	BackendMock        = "mock"
	BackendRekognition = "rekognition"
)

// Server holds the settings every service shares.
type Server struct {
	Address     string `envconfig:"SERVER_ADDRESS" default:"0.0.0.0"`
	Port        int    `envconfig:"SERVER_PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	BodyLimitMB int    `envconfig:"BODY_LIMIT_MB" default:"16"`
}

func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

func (s Server) IsDevelopment() bool {
	return s.Environment == "development"
}

func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// FaceConfig configures the detection and embedding service.
type FaceConfig struct {
	Server

	Backend    string `envconfig:"DETECTOR_BACKEND" default:"onnx"`
	ForceYOLO  bool   `envconfig:"FORCE_YOLO" default:"true"`
	OnlyDetect bool   `envconfig:"ONLY_DETECT" default:"false"`

	DetectThreshold  float32 `envconfig:"DETECT_THRESHOLD" default:"0.1"`
	LargestThreshold float32 `envconfig:"LARGEST_THRESHOLD" default:"0.5"`
	NMSIoU           float32 `envconfig:"NMS_IOU" default:"0.5"`
	AlignSize        int     `envconfig:"ALIGN_SIZE" default:"112"`

	ORTLibPath     string `envconfig:"ORT_LIB_PATH"`
	IntraOpThreads int    `envconfig:"ORT_INTRA_OP_THREADS" default:"0"`
	YOLOModel      string `envconfig:"YOLO_MODEL" default:"./models/yoloface_8n.onnx"`
	SCRFDModel     string `envconfig:"SCRFD_MODEL" default:"./models/det_10g.onnx"`
	ArcFaceModel   string `envconfig:"ARCFACE_MODEL" default:"./models/arcfaceresnet100-8.onnx"`

	AWSRegion  string  `envconfig:"AWS_REGION" default:"us-east-1"`
	MinQuality float64 `envconfig:"REKOGNITION_MIN_QUALITY" default:"0"`
}

// StoreConfig configures the similarity store service.
type StoreConfig struct {
	Server

	DatabaseURL   string `envconfig:"DATABASE_URL" required:"true"`
	MaxConns      int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns      int32  `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate   bool   `envconfig:"AUTO_MIGRATE" default:"true"`
	MaxMatchCount int    `envconfig:"MAX_MATCH_COUNT" default:"100"`
}

// GatewayConfig configures the orchestration gateway.
type GatewayConfig struct {
	Server

	FaceAPIAddress  string        `envconfig:"FACE_API_ADDRESS" required:"true"`
	StoreAPIAddress string        `envconfig:"DB_API_ADDRESS" required:"true"`
	RequestTimeout  time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"30s"`
	MaxRetries      int           `envconfig:"UPSTREAM_MAX_RETRIES" default:"3"`
	RateLimit       int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

func LoadFace() (*FaceConfig, error) {
	var cfg FaceConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	switch cfg.Backend {
	case BackendONNX, BackendMock, BackendRekognition:
	default:
		return nil, fmt.Errorf("load config: unknown DETECTOR_BACKEND %q", cfg.Backend)
	}
	return &cfg, nil
}

func LoadStore() (*StoreConfig, error) {
	var cfg StoreConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func LoadGateway() (*GatewayConfig, error) {
	var cfg GatewayConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
