package scene

import (
	"context"
	"time"

	"audioclassify-server-go/internal/domain/classify"
	"audioclassify-server-go/internal/domain/engine"
	"audioclassify-server-go/internal/domain/eventbus"
	platformerrors "audioclassify-server-go/internal/platform/errors"
	"audioclassify-server-go/internal/utils"
)

// Classifier 持有逐帧音频事件引擎、类别名表与桶映射表，三者在启动后只读。
type Classifier struct {
	engine     engine.Engine
	classNames []string
	table      *Table
	logger     *utils.Logger
}

// New 创建场景分类器
func New(eng engine.Engine, classNames []string, table *Table, logger *utils.Logger) (*Classifier, error) {
	if eng == nil {
		return nil, platformerrors.New(platformerrors.KindClassify, "scene.new", "缺少推理引擎")
	}
	if len(classNames) == 0 {
		return nil, platformerrors.New(platformerrors.KindClassify, "scene.new", "缺少类别名表")
	}
	if table == nil {
		return nil, platformerrors.New(platformerrors.KindClassify, "scene.new", "缺少桶映射表")
	}
	return &Classifier{engine: eng, classNames: classNames, table: table, logger: logger}, nil
}

// Classify 对整段采样做一次场景分类：
// 逐帧得分先沿时间轴取均值得到每个细粒度类别一个分数，再按桶映射求和折叠，
// 最后把桶得分归一化到和为 1（全零时跳过）。latency_ms 只统计推理本身。
func (c *Classifier) Classify(ctx context.Context, samples []float32) (*classify.Result, error) {
	start := time.Now()
	out, err := c.engine.Infer(ctx, samples)
	latency := time.Since(start)

	if err != nil {
		eventbus.PublishAsync(eventbus.EventClassifyError, eventbus.ClassifyErrorData{
			Endpoint: "scene",
			Message:  err.Error(),
		})
		return nil, platformerrors.Wrap(platformerrors.KindClassify, "scene.classify", "场景推理失败", err)
	}

	classScores := averageFrames(out)
	dist := c.collapse(classScores)
	dist.Normalize()

	label, confidence := dist.Argmax()
	result := &classify.Result{
		Label:      label,
		Confidence: classify.Round4(confidence),
		Scores:     dist.Scores(),
		LatencyMs:  classify.Round2(float64(latency.Nanoseconds()) / 1e6),
	}

	c.logger.DebugTag("场景", "label=%s confidence=%.4f latency=%.2fms", result.Label, result.Confidence, result.LatencyMs)
	eventbus.PublishAsync(eventbus.EventSceneResult, eventbus.ClassifyEventData{
		Endpoint:   "scene",
		Label:      result.Label,
		Confidence: result.Confidence,
		LatencyMs:  result.LatencyMs,
		Samples:    len(samples),
	})

	return result, nil
}

// averageFrames 沿时间轴求均值，得到每个细粒度类别一个分数
func averageFrames(out *engine.Output) []float64 {
	if out == nil || len(out.Frames) == 0 {
		return nil
	}

	classes := len(out.Frames[0])
	sums := make([]float64, classes)
	for _, frame := range out.Frames {
		for i, v := range frame {
			if i >= classes {
				break
			}
			sums[i] += float64(v)
		}
	}
	for i := range sums {
		sums[i] /= float64(len(out.Frames))
	}
	return sums
}

// collapse 把细粒度类别得分按名字求和进所属桶。
// 所有桶都出现在结果分布里，哪怕得分为零。
func (c *Classifier) collapse(classScores []float64) *classify.Distribution {
	dist := classify.NewDistribution()
	for _, bucket := range c.table.Buckets() {
		dist.Set(bucket, 0)
	}

	for i, score := range classScores {
		if i >= len(c.classNames) {
			break
		}
		dist.Add(c.table.BucketFor(c.classNames[i]), score)
	}
	return dist
}

// Close 释放底层引擎
func (c *Classifier) Close() error {
	return c.engine.Close()
}
