package audio

import (
	"bytes"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"

	platformerrors "audioclassify-server-go/internal/platform/errors"
)

// DecodeMP3 将 MP3 字节流解码为单声道 float32 采样，并返回源采样率。
// go-mp3 固定输出 16bit 双声道小端 PCM，这里解码后做左右声道均值混合。
func DecodeMP3(data []byte) ([]float32, int, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, platformerrors.Wrap(platformerrors.KindDecode, "audio.mp3", "MP3 解码失败", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, platformerrors.Wrap(platformerrors.KindDecode, "audio.mp3", "读取 MP3 PCM 数据失败", err)
	}

	stereo := DecodePCM16LE(raw)
	return mixToMono(stereo, 2), decoder.SampleRate(), nil
}
