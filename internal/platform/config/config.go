package config

import (
	"time"
)

type Config struct {
	Server  ServerConfig     `yaml:"server" mapstructure:"server"`
	Log     LogConfig        `yaml:"log" mapstructure:"log"`
	Web     WebConfig        `yaml:"web" mapstructure:"web"`
	Emotion ClassifierConfig `yaml:"emotion" mapstructure:"emotion"`
	Scene   SceneConfig      `yaml:"scene" mapstructure:"scene"`
	Pool    PoolConfig       `yaml:"pool" mapstructure:"pool"`
	Metrics MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
}

type ServerConfig struct {
	IP   string `yaml:"ip" mapstructure:"ip"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level" mapstructure:"log_level"`
	Dir   string `yaml:"log_dir" mapstructure:"log_dir"`
	File  string `yaml:"log_file" mapstructure:"log_file"`
}

type WebConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	StaticDir string `yaml:"static_dir" mapstructure:"static_dir"`
}

// EngineConfig 描述一个推理引擎实例的装配参数
type EngineConfig struct {
	Type         string `yaml:"type" mapstructure:"type"`
	ModelPath    string `yaml:"model_path" mapstructure:"model_path"`
	MetadataPath string `yaml:"metadata_path" mapstructure:"metadata_path"`
	SampleRate   int    `yaml:"sample_rate" mapstructure:"sample_rate"`
	LibraryPath  string `yaml:"library_path" mapstructure:"library_path"`
}

// ClassifierConfig 单个分类端点的配置
type ClassifierConfig struct {
	Enabled  bool         `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string       `yaml:"endpoint" mapstructure:"endpoint"`
	Engine   EngineConfig `yaml:"engine" mapstructure:"engine"`
}

// SceneConfig 场景分类端点的配置，比情感端点多出类别表与桶映射
type SceneConfig struct {
	Enabled  bool                `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string              `yaml:"endpoint" mapstructure:"endpoint"`
	Engine   EngineConfig        `yaml:"engine" mapstructure:"engine"`
	ClassMap ClassMapConfig      `yaml:"class_map" mapstructure:"class_map"`
	Buckets  map[string][]string `yaml:"buckets,omitempty" mapstructure:"buckets"`
}

// ClassMapConfig 类别表获取配置。Path 非空时优先使用本地文件，否则启动时拉取 URL。
type ClassMapConfig struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Path    string        `yaml:"path,omitempty" mapstructure:"path"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PoolConfig 推理工作池配置
type PoolConfig struct {
	Workers   int `yaml:"workers" mapstructure:"workers"`
	QueueSize int `yaml:"queue_size" mapstructure:"queue_size"`
}

type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}
