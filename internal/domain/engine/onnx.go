package engine

import (
	"context"
	"math"
	"os"
	"sync"

	"github.com/bytedance/sonic"
	ort "github.com/yalue/onnxruntime_go"

	platformerrors "audioclassify-server-go/internal/platform/errors"
)

func init() {
	Register("onnx", func(cfg Config) (Engine, error) {
		return NewOnnx(cfg)
	})
}

var (
	runtimeMu   sync.Mutex
	runtimeRefs int
)

// InitRuntime 初始化 onnxruntime 环境，进程内按引用计数共享一份。
func InitRuntime(libraryPath string) error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	if runtimeRefs == 0 {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return platformerrors.Wrap(platformerrors.KindEngine, "engine.runtime", "初始化 onnxruntime 失败", err)
		}
	}
	runtimeRefs++
	return nil
}

// ShutdownRuntime 归还一次运行时引用，最后一个引用释放环境。
func ShutdownRuntime() error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	if runtimeRefs == 0 {
		return nil
	}
	runtimeRefs--
	if runtimeRefs == 0 {
		return ort.DestroyEnvironment()
	}
	return nil
}

// onnxMetadata 随模型发布的描述文件，声明标签表与输入输出约定
type onnxMetadata struct {
	Labels      []string `json:"labels"`
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	InputLayout string   `json:"input_layout"` // flat: [N]，batch: [1,N]
	Output      string   `json:"output"`       // probabilities 或 logits
	FrameWise   bool     `json:"frame_wise"`
}

// Onnx 基于 onnxruntime 动态会话的推理引擎。
// 波形长度逐请求变化，因此不能用固定形状的预分配张量。
type Onnx struct {
	session  *ort.DynamicAdvancedSession
	metadata onnxMetadata
}

// NewOnnx 加载模型与元数据并建立会话。调用前必须先 InitRuntime。
func NewOnnx(cfg Config) (*Onnx, error) {
	metaRaw, err := os.ReadFile(cfg.MetadataPath)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindEngine, "engine.onnx", "读取模型元数据失败", err)
	}

	var meta onnxMetadata
	if err := sonic.Unmarshal(metaRaw, &meta); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindEngine, "engine.onnx", "解析模型元数据失败", err)
	}
	if meta.InputName == "" {
		meta.InputName = "input"
	}
	if meta.OutputName == "" {
		meta.OutputName = "output"
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{meta.InputName}, []string{meta.OutputName}, nil)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindEngine, "engine.onnx", "创建 ONNX 会话失败", err)
	}

	return &Onnx{session: session, metadata: meta}, nil
}

// Infer 对整段波形跑一次会话，按元数据声明整形输出。
func (o *Onnx) Infer(ctx context.Context, samples []float32) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shape := ort.NewShape(int64(len(samples)))
	if o.metadata.InputLayout == "batch" {
		shape = ort.NewShape(1, int64(len(samples)))
	}

	input, err := ort.NewTensor(shape, samples)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindEngine, "engine.onnx", "创建输入张量失败", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := o.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindEngine, "engine.onnx", "模型推理失败", err)
	}
	defer outputs[0].Destroy()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, platformerrors.New(platformerrors.KindEngine, "engine.onnx", "模型输出不是 float32 张量")
	}

	if o.metadata.FrameWise {
		return &Output{Frames: o.reshapeFrames(tensor)}, nil
	}
	return o.utteranceOutput(tensor), nil
}

// utteranceOutput 把一维得分向量和元数据标签配对，必要时做 softmax
func (o *Onnx) utteranceOutput(tensor *ort.Tensor[float32]) *Output {
	scores := make([]float32, len(tensor.GetData()))
	copy(scores, tensor.GetData())

	if o.metadata.Output == "logits" {
		scores = softmax(scores)
	}

	labels := o.metadata.Labels
	if len(scores) > len(labels) {
		scores = scores[:len(labels)]
	}
	return &Output{Labels: labels[:min(len(labels), len(scores))], Scores: scores}
}

// reshapeFrames 把 [帧数, 类别数]（或带 batch 维）的扁平数据还原为帧矩阵
func (o *Onnx) reshapeFrames(tensor *ort.Tensor[float32]) [][]float32 {
	shape := tensor.GetShape()
	data := tensor.GetData()

	dims := make([]int64, 0, len(shape))
	for _, d := range shape {
		if d > 1 || len(dims) > 0 {
			dims = append(dims, d)
		}
	}
	if len(dims) < 2 {
		if len(data) == 0 {
			return nil
		}
		row := make([]float32, len(data))
		copy(row, data)
		return [][]float32{row}
	}

	classes := int(dims[len(dims)-1])
	frames := len(data) / classes
	out := make([][]float32, 0, frames)
	for f := 0; f < frames; f++ {
		row := make([]float32, classes)
		copy(row, data[f*classes:(f+1)*classes])
		out = append(out, row)
	}
	return out
}

func (o *Onnx) Close() error {
	if o.session != nil {
		return o.session.Destroy()
	}
	return nil
}

func softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return logits
	}
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	var sum float64
	out := make([]float32, len(logits))
	for i, v := range logits {
		e := math.Exp(float64(v - maxVal))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
