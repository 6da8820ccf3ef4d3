// Package classify 承载分类结果的公共外形：线上契约结构体与确定性的分布运算。
package classify

import "math"

// Result 分类结果，字段名即线上 JSON 契约，不要改动 tag。
type Result struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
	LatencyMs  float64            `json:"latency_ms"`
}

// Distribution 按插入顺序记录键的得分分布。
// map 遍历顺序不确定，argmax 依赖首个最大键，必须保序。
type Distribution struct {
	keys   []string
	scores map[string]float64
}

// NewDistribution 创建空分布
func NewDistribution() *Distribution {
	return &Distribution{scores: make(map[string]float64)}
}

// Set 写入一个键的得分，重复写入覆盖旧值但保留首次插入的位置。
func (d *Distribution) Set(key string, score float64) {
	if _, ok := d.scores[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.scores[key] = score
}

// Add 在现有得分上累加
func (d *Distribution) Add(key string, score float64) {
	if _, ok := d.scores[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.scores[key] += score
}

// Len 返回分布中键的数量
func (d *Distribution) Len() int {
	return len(d.keys)
}

// Argmax 返回得分最高的键及其得分，并列时取先插入者。空分布返回空串。
func (d *Distribution) Argmax() (string, float64) {
	if len(d.keys) == 0 {
		return "", 0
	}
	best := d.keys[0]
	bestScore := d.scores[best]
	for _, k := range d.keys[1:] {
		if d.scores[k] > bestScore {
			best = k
			bestScore = d.scores[k]
		}
	}
	return best, bestScore
}

// Sum 返回所有得分之和
func (d *Distribution) Sum() float64 {
	var total float64
	for _, k := range d.keys {
		total += d.scores[k]
	}
	return total
}

// Normalize 将得分按总和归一化，总和为零时不做任何事（避免除零）。
func (d *Distribution) Normalize() {
	total := d.Sum()
	if total == 0 {
		return
	}
	for _, k := range d.keys {
		d.scores[k] /= total
	}
}

// Scores 导出为普通 map，得分统一保留 4 位小数。
func (d *Distribution) Scores() map[string]float64 {
	out := make(map[string]float64, len(d.keys))
	for _, k := range d.keys {
		out[k] = Round4(d.scores[k])
	}
	return out
}

// Round4 得分保留 4 位小数
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Round2 延迟毫秒数保留 2 位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
