package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoader_Load(t *testing.T) {
	// 创建临时配置文件
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, ".config.yaml")

	configContent := `
server:
  ip: "127.0.0.1"
  port: 8080
log:
  log_level: "DEBUG"
  log_dir: "/tmp/logs"
  log_file: "test.log"
pool:
  workers: 4
  queue_size: 16
emotion:
  enabled: true
  endpoint: "/emotion"
  engine:
    type: "stub"
    sample_rate: 16000
scene:
  enabled: true
  endpoint: "/scene"
  engine:
    type: "stub"
    sample_rate: 16000
  class_map:
    url: "http://127.0.0.1:9999/class_map.csv"
    timeout: 5s
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader().WithDotEnv(false).WithPath(configFile)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.IP != "127.0.0.1" {
		t.Errorf("expected server IP 127.0.0.1, got %s", cfg.Server.IP)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "DEBUG" {
		t.Errorf("expected log level DEBUG, got %s", cfg.Log.Level)
	}
	if cfg.Pool.Workers != 4 {
		t.Errorf("expected 4 pool workers, got %d", cfg.Pool.Workers)
	}
	if cfg.Scene.ClassMap.Timeout != 5*time.Second {
		t.Errorf("expected 5s class map timeout, got %v", cfg.Scene.ClassMap.Timeout)
	}
	if loader.LoadedPath() != configFile {
		t.Errorf("expected loaded path %s, got %s", configFile, loader.LoadedPath())
	}
}

func TestLoader_Load_MissingFileUsesDefaults(t *testing.T) {
	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("missing config file should fall back to defaults, got %v", err)
	}
	if cfg.Server.Port != 8077 {
		t.Errorf("expected default port 8077, got %d", cfg.Server.Port)
	}
	if loader.LoadedPath() != "defaults" {
		t.Errorf("expected loaded path defaults, got %s", loader.LoadedPath())
	}
	if len(cfg.Scene.Buckets) == 0 {
		t.Error("default config should carry the bucket table")
	}
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("AUDIOCLASSIFY_PORT", "9090")
	t.Setenv("AUDIOCLASSIFY_POOL_WORKERS", "8")

	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "absent.yaml"))
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected env override port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Pool.Workers != 8 {
		t.Errorf("expected env override workers 8, got %d", cfg.Pool.Workers)
	}
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader()

	base := func() *Config { return DefaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "invalid server port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero pool workers",
			mutate:  func(c *Config) { c.Pool.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "endpoint without leading slash",
			mutate:  func(c *Config) { c.Emotion.Endpoint = "emotion" },
			wantErr: true,
		},
		{
			name:    "onnx engine without model path",
			mutate:  func(c *Config) { c.Emotion.Engine.Type = "onnx" },
			wantErr: true,
		},
		{
			name: "scene without class map source",
			mutate: func(c *Config) {
				c.Scene.ClassMap.URL = ""
				c.Scene.ClassMap.Path = ""
			},
			wantErr: true,
		},
		{
			name:    "disabled classifier skips engine checks",
			mutate:  func(c *Config) { c.Emotion.Enabled = false; c.Emotion.Engine.SampleRate = 0 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := loader.validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
