package config

import "time"

// DefaultClassMapURL 指向 AudioSet/YAMNet 的类别表 CSV
const DefaultClassMapURL = "https://raw.githubusercontent.com/tensorflow/models/master/research/audioset/yamnet/yamnet_class_map.csv"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8077,
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:   true,
			StaticDir: "./web",
		},
		Emotion: ClassifierConfig{
			Enabled:  true,
			Endpoint: "/emotion",
			Engine: EngineConfig{
				Type:       "stub",
				SampleRate: 16000,
			},
		},
		Scene: SceneConfig{
			Enabled:  true,
			Endpoint: "/scene",
			Engine: EngineConfig{
				Type:       "stub",
				SampleRate: 16000,
			},
			ClassMap: ClassMapConfig{
				URL:     DefaultClassMapURL,
				Timeout: 10 * time.Second,
			},
			Buckets: DefaultBuckets(),
		},
		Pool: PoolConfig{
			Workers:   2,
			QueueSize: 64,
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
	}
}

// DefaultBuckets 返回默认的桶映射表：桶名 -> 细粒度类别名集合。
// 未命中任何桶的类别计入 other，因此 other 无需在此列出成员。
func DefaultBuckets() map[string][]string {
	return map[string][]string{
		"speech": {
			"Speech",
			"Male speech, man speaking",
			"Female speech, woman speaking",
			"Child speech, kid speaking",
			"Conversation",
			"Narration, monologue",
			"Whispering",
		},
		"music": {
			"Music",
			"Musical instrument",
			"Singing",
			"Guitar",
			"Piano",
			"Drum",
			"Violin, fiddle",
			"Choir",
			"Humming",
		},
		"silence": {
			"Silence",
		},
		"noise": {
			"Noise",
			"White noise",
			"Pink noise",
			"Static",
			"Hum",
			"Mains hum",
			"Engine",
			"Vehicle",
			"Car",
			"Traffic noise, roadway noise",
			"Wind noise (microphone)",
			"Air conditioning",
		},
	}
}
