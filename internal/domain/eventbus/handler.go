package eventbus

import (
	"sync"

	"audioclassify-server-go/internal/utils"
)

// EventHandler 事件处理器接口
type EventHandler interface {
	Handle(eventType string, data interface{})
}

// DefaultEventHandler 默认事件处理器：记录结果日志并维护按端点的计数。
type DefaultEventHandler struct {
	mu      sync.Mutex
	tallies map[string]int64
}

// NewDefaultEventHandler 创建默认事件处理器
func NewDefaultEventHandler() *DefaultEventHandler {
	return &DefaultEventHandler{tallies: make(map[string]int64)}
}

// Handle 处理事件
func (h *DefaultEventHandler) Handle(eventType string, data interface{}) {
	switch eventType {
	case EventEmotionResult, EventSceneResult:
		if d, ok := data.(ClassifyEventData); ok {
			h.handleResult(d)
		}
	case EventClassifyError:
		if d, ok := data.(ClassifyErrorData); ok {
			h.handleError(d)
		}
	case EventSystemError, EventSystemInfo:
		if d, ok := data.(SystemEventData); ok {
			h.handleSystem(d)
		}
	default:
		utils.DefaultLogger.DebugTag("事件", "未处理的事件类型: %s", eventType)
	}
}

func (h *DefaultEventHandler) handleResult(data ClassifyEventData) {
	h.mu.Lock()
	h.tallies[data.Endpoint]++
	count := h.tallies[data.Endpoint]
	h.mu.Unlock()

	utils.DefaultLogger.InfoTag("事件",
		"分类完成: 端点=%s 标签=%s 置信度=%.4f 耗时=%.2fms 累计=%d",
		data.Endpoint, data.Label, data.Confidence, data.LatencyMs, count)
}

func (h *DefaultEventHandler) handleError(data ClassifyErrorData) {
	utils.DefaultLogger.WarnTag("事件", "分类失败: 端点=%s %s", data.Endpoint, data.Message)
}

func (h *DefaultEventHandler) handleSystem(data SystemEventData) {
	switch data.Level {
	case "error":
		utils.DefaultLogger.ErrorTag("事件", "系统事件: %s", data.Message)
	case "warn":
		utils.DefaultLogger.WarnTag("事件", "系统事件: %s", data.Message)
	default:
		utils.DefaultLogger.InfoTag("事件", "系统事件: %s", data.Message)
	}
}

// Tally 返回某个端点累计处理成功的次数
func (h *DefaultEventHandler) Tally(endpoint string) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tallies[endpoint]
}

// SetupEventHandlers 设置事件处理器，在日志初始化完成后调用一次。
func SetupEventHandlers() {
	handler := NewDefaultEventHandler()

	for _, topic := range []string{
		EventEmotionResult,
		EventSceneResult,
		EventClassifyError,
		EventSystemError,
		EventSystemInfo,
	} {
		topic := topic
		// 分类结果走异步总线发布，处理器也要挂在异步总线上
		SubscribeAsync(topic, func(args ...interface{}) {
			if len(args) > 0 {
				handler.Handle(topic, args[0])
			}
		})
	}
}
