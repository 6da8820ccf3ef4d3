// Package engine 把预训练模型封装为不透明的推理引擎。
// 上层只关心 Output 的两种形态：整段音频一组标签得分，或逐帧的多类得分矩阵。
package engine

import "context"

// Output 引擎推理的原始输出。
// 整段（utterance）模型填 Labels/Scores，逐帧模型填 Frames（帧 x 类别）。
type Output struct {
	Labels []string
	Scores []float32
	Frames [][]float32
}

// Engine 推理引擎接口。实现必须在进程启动时构建一次，之后只读。
type Engine interface {
	// Infer 对整段采样做一次阻塞推理。空输入的行为由具体模型决定。
	Infer(ctx context.Context, samples []float32) (*Output, error)
	Close() error
}

// Config 引擎装配参数
type Config struct {
	Type         string
	ModelPath    string
	MetadataPath string
	SampleRate   int
	LibraryPath  string
}
