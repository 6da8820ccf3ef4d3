// Package emotion 整段语音情感分类：把情感模型的原始输出对齐到固定情感词表。
package emotion

import (
	"context"
	"time"

	"audioclassify-server-go/internal/domain/classify"
	"audioclassify-server-go/internal/domain/engine"
	"audioclassify-server-go/internal/domain/eventbus"
	platformerrors "audioclassify-server-go/internal/platform/errors"
	"audioclassify-server-go/internal/utils"
)

// Labels 固定的情感词表。顺序即位置回退映射的顺序，不要调整。
var Labels = []string{"neutral", "happy", "angry", "sad", "frustrated", "surprised"}

// Classifier 持有一个进程生命周期的情感引擎
type Classifier struct {
	engine engine.Engine
	logger *utils.Logger
}

// New 创建情感分类器
func New(eng engine.Engine, logger *utils.Logger) (*Classifier, error) {
	if eng == nil {
		return nil, platformerrors.New(platformerrors.KindClassify, "emotion.new", "缺少推理引擎")
	}
	return &Classifier{engine: eng, logger: logger}, nil
}

// Classify 对整段采样做一次情感分类。
// latency_ms 只统计模型推理本身，不含解码与后处理。
func (c *Classifier) Classify(ctx context.Context, samples []float32) (*classify.Result, error) {
	start := time.Now()
	out, err := c.engine.Infer(ctx, samples)
	latency := time.Since(start)

	if err != nil {
		eventbus.PublishAsync(eventbus.EventClassifyError, eventbus.ClassifyErrorData{
			Endpoint: "emotion",
			Message:  err.Error(),
		})
		return nil, platformerrors.Wrap(platformerrors.KindClassify, "emotion.classify", "情感推理失败", err)
	}

	dist := collapse(out)

	// 模型什么都没给时回退到确定性的 neutral 结果
	if dist.Len() == 0 {
		dist.Set("neutral", 1.0)
	}

	label, confidence := dist.Argmax()
	result := &classify.Result{
		Label:      label,
		Confidence: classify.Round4(confidence),
		Scores:     dist.Scores(),
		LatencyMs:  classify.Round2(float64(latency.Nanoseconds()) / 1e6),
	}

	c.logger.DebugTag("情感", "label=%s confidence=%.4f latency=%.2fms", result.Label, result.Confidence, result.LatencyMs)
	eventbus.PublishAsync(eventbus.EventEmotionResult, eventbus.ClassifyEventData{
		Endpoint:   "emotion",
		Label:      result.Label,
		Confidence: result.Confidence,
		LatencyMs:  result.LatencyMs,
		Samples:    len(samples),
	})

	return result, nil
}

// collapse 把模型返回的标签对齐到固定词表：
// 字面命中词表的标签直接采用，否则按位置回退到词表同下标的标签，
// 下标越界时保留原始标签。这是沿袭下来的兼容策略——上游模型的
// 标签顺序没有契约保证，位置回退可能悄悄错位。
// 缺失的得分按 0.0 处理，同一映射键后写的覆盖先写的。
func collapse(out *engine.Output) *classify.Distribution {
	dist := classify.NewDistribution()
	if out == nil {
		return dist
	}

	for i, raw := range out.Labels {
		mapped := raw
		if !inVocabulary(raw) && i < len(Labels) {
			mapped = Labels[i]
		}

		var score float64
		if i < len(out.Scores) {
			score = float64(out.Scores[i])
		}
		dist.Set(mapped, score)
	}
	return dist
}

func inVocabulary(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Close 释放底层引擎
func (c *Classifier) Close() error {
	return c.engine.Close()
}
