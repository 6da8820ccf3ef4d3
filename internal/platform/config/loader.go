package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	platformerrors "audioclassify-server-go/internal/platform/errors"
	"audioclassify-server-go/internal/utils"
)

const (
	// EnvConfigPath 指定配置文件路径的环境变量
	EnvConfigPath     = "AUDIOCLASSIFY_CONFIG"
	defaultConfigFile = ".config.yaml"
)

// Loader 从 YAML 文件加载配置，文件缺失时回退到默认配置。
type Loader struct {
	useDotEnv  bool
	path       string
	loadedPath string
}

// NewLoader creates a loader that reads .config.yaml from the working directory.
func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the configuration file location (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// LoadedPath reports where the last Load call found its configuration.
func (l *Loader) LoadedPath() string {
	return l.loadedPath
}

// Load 读取配置文件并套用环境变量覆盖，最后做一次校验。
func (l *Loader) Load() (*Config, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("未找到 .env 文件，使用系统环境变量")
		}
	}

	path := l.path
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = filepath.Join(utils.GetProjectDir(), defaultConfigFile)
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindConfig, "config.load", "解析配置文件失败", err)
		}
		l.loadedPath = path
	case os.IsNotExist(err):
		l.loadedPath = "defaults"
	default:
		return nil, platformerrors.Wrap(platformerrors.KindConfig, "config.load", "读取配置文件失败", err)
	}

	l.applyEnvOverrides(cfg)

	if err := l.validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides 套用少量运维常用的环境变量覆盖
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUDIOCLASSIFY_IP"); v != "" {
		cfg.Server.IP = v
	}
	if v := os.Getenv("AUDIOCLASSIFY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("AUDIOCLASSIFY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AUDIOCLASSIFY_CLASS_MAP_URL"); v != "" {
		cfg.Scene.ClassMap.URL = v
	}
	if v := os.Getenv("AUDIOCLASSIFY_POOL_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Pool.Workers = workers
		}
	}
	if v := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY"); v != "" {
		cfg.Emotion.Engine.LibraryPath = v
		cfg.Scene.Engine.LibraryPath = v
	}
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return platformerrors.New(platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("服务端口无效: %d", cfg.Server.Port))
	}
	if cfg.Pool.Workers < 1 {
		return platformerrors.New(platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("推理工作池大小无效: %d", cfg.Pool.Workers))
	}
	if cfg.Pool.QueueSize < 0 {
		return platformerrors.New(platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("推理队列长度无效: %d", cfg.Pool.QueueSize))
	}

	if cfg.Emotion.Enabled {
		if err := validateClassifier("emotion", cfg.Emotion.Endpoint, cfg.Emotion.Engine); err != nil {
			return err
		}
	}
	if cfg.Scene.Enabled {
		if err := validateClassifier("scene", cfg.Scene.Endpoint, cfg.Scene.Engine); err != nil {
			return err
		}
		if cfg.Scene.ClassMap.URL == "" && cfg.Scene.ClassMap.Path == "" {
			return platformerrors.New(platformerrors.KindConfig, "config.validate",
				"场景分类需要配置类别表 URL 或本地路径")
		}
		if cfg.Scene.ClassMap.Timeout <= 0 {
			return platformerrors.New(platformerrors.KindConfig, "config.validate",
				"类别表拉取超时必须为正数")
		}
	}
	return nil
}

func validateClassifier(name, endpoint string, engine EngineConfig) error {
	if endpoint == "" || !strings.HasPrefix(endpoint, "/") {
		return platformerrors.New(platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("%s 端点路径无效: %q", name, endpoint))
	}
	if engine.Type == "" {
		return platformerrors.New(platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("%s 引擎类型不能为空", name))
	}
	if engine.SampleRate <= 0 {
		return platformerrors.New(platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("%s 引擎采样率无效: %d", name, engine.SampleRate))
	}
	if engine.Type == "onnx" && engine.ModelPath == "" {
		return platformerrors.New(platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("%s 引擎缺少模型路径", name))
	}
	return nil
}
