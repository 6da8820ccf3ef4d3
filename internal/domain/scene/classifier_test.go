package scene

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audioclassify-server-go/internal/domain/engine"
	platformconfig "audioclassify-server-go/internal/platform/config"
)

func newClassifier(t *testing.T, classNames []string, frames [][]float32) *Classifier {
	t.Helper()
	c, err := New(
		engine.NewStub(&engine.Output{Frames: frames}),
		classNames,
		NewTable(platformconfig.DefaultBuckets()),
		nil,
	)
	require.NoError(t, err)
	return c
}

func TestClassify_CollapsesIntoBuckets(t *testing.T) {
	classNames := []string{"Speech", "Singing", "Engine", "Dog barking"}
	// 两帧取均值：Speech=0.4, Singing=0.1, Engine=0.1, Dog barking=0.4
	frames := [][]float32{
		{0.5, 0.1, 0.1, 0.3},
		{0.3, 0.1, 0.1, 0.5},
	}

	result, err := newClassifier(t, classNames, frames).Classify(context.Background(), []float32{0.1})
	require.NoError(t, err)

	// Dog barking 未命中任何桶，计入 other；与 speech 并列 0.4 时 speech 先插入胜出
	assert.Equal(t, "speech", result.Label)
	assert.InDelta(t, 0.4, result.Scores["speech"], 1e-4)
	assert.InDelta(t, 0.1, result.Scores["music"], 1e-4)
	assert.InDelta(t, 0.1, result.Scores["noise"], 1e-4)
	assert.InDelta(t, 0.4, result.Scores["other"], 1e-4)

	var sum float64
	for _, v := range result.Scores {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
}

func TestClassify_AllBucketsPresent(t *testing.T) {
	result, err := newClassifier(t, []string{"Speech"}, [][]float32{{1.0}}).
		Classify(context.Background(), nil)
	require.NoError(t, err)

	for _, bucket := range []string{"speech", "music", "silence", "noise", "other"} {
		_, ok := result.Scores[bucket]
		assert.True(t, ok, "bucket %s missing from scores", bucket)
	}
}

func TestClassify_ZeroScoresSkipNormalization(t *testing.T) {
	result, err := newClassifier(t, []string{"Speech", "Music"}, [][]float32{{0, 0}}).
		Classify(context.Background(), nil)
	require.NoError(t, err)

	var sum float64
	for _, v := range result.Scores {
		assert.False(t, math.IsNaN(v), "score must not be NaN")
		sum += v
	}
	assert.Zero(t, sum)
	// 全零时 argmax 落在第一个桶
	assert.Equal(t, "speech", result.Label)
	assert.Zero(t, result.Confidence)
}

func TestClassify_NoFrames(t *testing.T) {
	result, err := newClassifier(t, []string{"Speech"}, nil).Classify(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "speech", result.Label)
	assert.Zero(t, result.Confidence)
}

func TestClassify_NormalizedSumIsOne(t *testing.T) {
	classNames := []string{"Speech", "Music", "Engine"}
	frames := [][]float32{{0.9, 0.5, 0.2}}

	result, err := newClassifier(t, classNames, frames).Classify(context.Background(), nil)
	require.NoError(t, err)

	var sum float64
	for _, v := range result.Scores {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
}

func TestNew_Validation(t *testing.T) {
	table := NewTable(platformconfig.DefaultBuckets())
	stub := engine.NewStub(&engine.Output{})

	_, err := New(nil, []string{"Speech"}, table, nil)
	assert.Error(t, err)

	_, err = New(stub, nil, table, nil)
	assert.Error(t, err)

	_, err = New(stub, []string{"Speech"}, nil, nil)
	assert.Error(t, err)
}
