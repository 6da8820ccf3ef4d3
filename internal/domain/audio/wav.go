package audio

import (
	"encoding/binary"
	"math"

	platformerrors "audioclassify-server-go/internal/platform/errors"
)

const (
	wavFormatPCM       = 1
	wavFormatIEEEFloat = 3
)

// ParseWAV 解析 RIFF/WAVE 字节流，返回单声道 float32 采样与源采样率。
// 支持 16bit PCM 与 IEEE float32 两种编码，多声道按均值混合为单声道。
func ParseWAV(data []byte) ([]float32, int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, platformerrors.New(platformerrors.KindDecode, "audio.wav", "不是有效的 RIFF/WAVE 数据")
	}

	var (
		format     uint16
		channels   int
		sampleRate int
		bits       int
		pcm        []byte
		haveFmt    bool
	)

	// 逐块遍历，fmt 块给出编码参数，data 块给出样本字节
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, platformerrors.New(platformerrors.KindDecode, "audio.wav", "fmt 块长度不足")
			}
			format = binary.LittleEndian.Uint16(data[body:])
			channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			bits = int(binary.LittleEndian.Uint16(data[body+14:]))
			haveFmt = true
		case "data":
			pcm = data[body : body+size]
		}

		// RIFF 块按 2 字节对齐
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !haveFmt || pcm == nil {
		return nil, 0, platformerrors.New(platformerrors.KindDecode, "audio.wav", "缺少 fmt 或 data 块")
	}
	if channels < 1 {
		return nil, 0, platformerrors.New(platformerrors.KindDecode, "audio.wav", "声道数无效")
	}

	var interleaved []float32
	switch {
	case format == wavFormatPCM && bits == 16:
		interleaved = DecodePCM16LE(pcm)
	case format == wavFormatIEEEFloat && bits == 32:
		interleaved = DecodeFloat32LE(pcm)
	default:
		return nil, 0, platformerrors.New(platformerrors.KindDecode, "audio.wav", "不支持的编码格式")
	}

	return mixToMono(interleaved, channels), sampleRate, nil
}

// SamplesToWAV 将 float32 采样编码为 16bit 单声道 WAV 字节流，与 ParseWAV 互逆。
func SamplesToWAV(samples []float32, sampleRate int) []byte {
	dataLen := len(samples) * 2
	totalLen := 44 + dataLen

	buf := make([]byte, totalLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(totalLen-8))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(buf[22:24], 1) // 单声道
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	for i, s := range samples {
		clamped := max(float32(-1.0), min(float32(1.0), s))
		val := int16(clamped * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(val))
	}

	return buf
}

// mixToMono 将交织的多声道采样按均值混合为单声道
func mixToMono(interleaved []float32, channels int) []float32 {
	if channels == 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range channels {
			sum += interleaved[i*channels+ch]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
