package emotion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audioclassify-server-go/internal/domain/engine"
)

func newClassifier(t *testing.T, out *engine.Output) *Classifier {
	t.Helper()
	c, err := New(engine.NewStub(out), nil)
	require.NoError(t, err)
	return c
}

func TestClassify_LiteralLabels(t *testing.T) {
	c := newClassifier(t, &engine.Output{
		Labels: []string{"happy", "angry"},
		Scores: []float32{0.3, 0.7},
	})

	result, err := c.Classify(context.Background(), []float32{0.1})
	require.NoError(t, err)

	assert.Equal(t, "angry", result.Label)
	assert.InDelta(t, 0.7, result.Confidence, 1e-9)
	assert.InDelta(t, 0.3, result.Scores["happy"], 1e-9)
	assert.InDelta(t, 0.7, result.Scores["angry"], 1e-9)
	// 模型没返回的情感标签不出现在分布里
	assert.Len(t, result.Scores, 2)
}

func TestClassify_EmptyOutputFallsBackToNeutral(t *testing.T) {
	c := newClassifier(t, &engine.Output{})

	result, err := c.Classify(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "neutral", result.Label)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, map[string]float64{"neutral": 1.0}, result.Scores)
}

func TestClassify_PositionalFallback(t *testing.T) {
	// 非词表标签按位置映射到固定词表
	c := newClassifier(t, &engine.Output{
		Labels: []string{"中性", "开心", "生气"},
		Scores: []float32{0.2, 0.5, 0.3},
	})

	result, err := c.Classify(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "happy", result.Label)
	assert.InDelta(t, 0.2, result.Scores["neutral"], 1e-9)
	assert.InDelta(t, 0.5, result.Scores["happy"], 1e-9)
	assert.InDelta(t, 0.3, result.Scores["angry"], 1e-9)
}

func TestClassify_OverflowIndexKeepsRawLabel(t *testing.T) {
	labels := []string{"a", "b", "c", "d", "e", "f", "beyond-vocab"}
	scores := []float32{0, 0, 0, 0, 0, 0, 0.9}
	c := newClassifier(t, &engine.Output{Labels: labels, Scores: scores})

	result, err := c.Classify(context.Background(), nil)
	require.NoError(t, err)

	// 第 7 个标签超出词表长度，保留原始标签
	assert.Equal(t, "beyond-vocab", result.Label)
}

func TestClassify_MissingScoresDefaultToZero(t *testing.T) {
	c := newClassifier(t, &engine.Output{
		Labels: []string{"happy", "angry"},
		Scores: []float32{0.4},
	})

	result, err := c.Classify(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "happy", result.Label)
	assert.Zero(t, result.Scores["angry"])
}

func TestClassify_EngineError(t *testing.T) {
	stub := engine.NewStub(nil)
	stub.Err = errors.New("model exploded")
	c, err := New(stub, nil)
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), nil)
	assert.Error(t, err)
}

func TestNew_RequiresEngine(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}
