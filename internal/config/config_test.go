package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadFace(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*FaceConfig) bool
	}{
		{
			name:    "uses defaults when optional vars missing",
			envVars: map[string]string{},
			wantErr: false,
			check: func(c *FaceConfig) bool {
				return c.Port == 3000 &&
					c.Environment == "development" &&
					c.Backend == BackendONNX &&
					c.ForceYOLO &&
					!c.OnlyDetect &&
					c.DetectThreshold == 0.1 &&
					c.LargestThreshold == 0.5 &&
					c.AlignSize == 112
			},
		},
		{
			name: "reads overrides",
			envVars: map[string]string{
				"SERVER_PORT":      "8080",
				"ENV":              "production",
				"DETECTOR_BACKEND": "mock",
				"FORCE_YOLO":       "false",
				"ONLY_DETECT":      "true",
				"DETECT_THRESHOLD": "0.3",
			},
			wantErr: false,
			check: func(c *FaceConfig) bool {
				return c.Port == 8080 &&
					c.IsProduction() &&
					c.Backend == BackendMock &&
					!c.ForceYOLO &&
					c.OnlyDetect &&
					c.DetectThreshold == 0.3
			},
		},
		{
			name: "fails on unknown backend",
			envVars: map[string]string{
				"DETECTOR_BACKEND": "tensorflow",
			},
			wantErr: true,
		},
		{
			name: "fails on malformed threshold",
			envVars: map[string]string{
				"DETECT_THRESHOLD": "high",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := LoadFace()

			if tt.wantErr {
				if err == nil {
					t.Errorf("LoadFace() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadFace() unexpected error: %v", err)
				return
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("LoadFace() config check failed, got: %+v", cfg)
			}
		})
	}
}

func TestLoadStore(t *testing.T) {
	os.Clearenv()
	if _, err := LoadStore(); err == nil {
		t.Errorf("LoadStore() expected error without DATABASE_URL")
	}

	os.Setenv("DATABASE_URL", "postgres://localhost/soma")
	cfg, err := LoadStore()
	if err != nil {
		t.Fatalf("LoadStore() unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/soma" || cfg.MaxConns != 25 || !cfg.AutoMigrate {
		t.Errorf("LoadStore() config check failed, got: %+v", cfg)
	}
}

func TestLoadGateway(t *testing.T) {
	os.Clearenv()
	os.Setenv("FACE_API_ADDRESS", "http://face:3000")
	if _, err := LoadGateway(); err == nil {
		t.Errorf("LoadGateway() expected error without DB_API_ADDRESS")
	}

	os.Setenv("DB_API_ADDRESS", "http://store:3001")
	os.Setenv("UPSTREAM_TIMEOUT", "5s")
	cfg, err := LoadGateway()
	if err != nil {
		t.Fatalf("LoadGateway() unexpected error: %v", err)
	}
	if cfg.RequestTimeout != 5*time.Second || cfg.MaxRetries != 3 || cfg.RateLimit != 120 {
		t.Errorf("LoadGateway() config check failed, got: %+v", cfg)
	}
}

func TestServer_Addr(t *testing.T) {
	s := Server{Address: "127.0.0.1", Port: 9995}
	if got := s.Addr(); got != "127.0.0.1:9995" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestServer_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"development", "development", true},
		{"production", "production", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Server{Environment: tt.env}
			if got := s.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}
