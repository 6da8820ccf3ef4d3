// Package audio 提供请求音频的解码与重采样：裸 float32 PCM、16bit PCM、WAV 与 MP3。
package audio

import (
	"encoding/binary"
	"math"
)

// DecodeFloat32LE 将小端 float32 字节流解码为采样序列。
// 长度不足 4 字节整组的尾部会被静默丢弃，空输入返回空序列，不做取值范围校验。
func DecodeFloat32LE(data []byte) []float32 {
	n := len(data) / 4
	samples := make([]float32, n)
	for i := range n {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples
}

// DecodePCM16LE 将小端 16bit PCM 解码为 [-1,1] 区间的 float32 采样序列。
func DecodePCM16LE(data []byte) []float32 {
	n := len(data) / 2
	samples := make([]float32, n)
	for i := range n {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(s) / math.MaxInt16
	}
	return samples
}

// EncodeFloat32LE 将采样序列编码回小端 float32 字节流，与 DecodeFloat32LE 互逆。
func EncodeFloat32LE(samples []float32) []byte {
	buf := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	return buf
}
