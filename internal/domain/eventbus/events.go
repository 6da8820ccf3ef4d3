package eventbus

// 事件类型定义
const (
	// 分类相关事件
	EventEmotionResult = "classify:emotion:result"
	EventSceneResult   = "classify:scene:result"
	EventClassifyError = "classify:error"

	// 系统事件
	EventSystemError = "system:error"
	EventSystemInfo  = "system:info"
)

// ClassifyEventData 一次分类调用的结果事件
type ClassifyEventData struct {
	Endpoint   string  `json:"endpoint"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	LatencyMs  float64 `json:"latency_ms"`
	Samples    int     `json:"samples"`
}

// ClassifyErrorData 分类失败事件
type ClassifyErrorData struct {
	Endpoint string `json:"endpoint"`
	Message  string `json:"message"`
}

// SystemEventData 系统级事件
type SystemEventData struct {
	Level   string      `json:"level"` // error, warn, info
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
