package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestDecodeFloat32LE(t *testing.T) {
	samples := []float32{0.5, -0.25, 1.0}
	buf := EncodeFloat32LE(samples)

	decoded := DecodeFloat32LE(buf)
	if len(decoded) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(decoded))
	}
	for i, s := range samples {
		if decoded[i] != s {
			t.Errorf("sample %d: expected %v, got %v", i, s, decoded[i])
		}
	}
}

func TestDecodeFloat32LE_TruncatesTrailingBytes(t *testing.T) {
	// 对所有余数 r∈{0,1,2,3}：4n+r 字节必须恰好解出 n 个采样
	for r := 0; r < 4; r++ {
		buf := make([]byte, 8+r)
		binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(0.1))
		binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(0.2))

		decoded := DecodeFloat32LE(buf)
		if len(decoded) != 2 {
			t.Errorf("len %d bytes: expected 2 samples, got %d", len(buf), len(decoded))
		}
	}
}

func TestDecodeFloat32LE_Empty(t *testing.T) {
	if got := DecodeFloat32LE(nil); len(got) != 0 {
		t.Errorf("nil input should yield empty slice, got %d samples", len(got))
	}
	if got := DecodeFloat32LE([]byte{1, 2, 3}); len(got) != 0 {
		t.Errorf("undersized input should yield empty slice, got %d samples", len(got))
	}
}

func TestDecodePCM16LE(t *testing.T) {
	buf := make([]byte, 4)
	pos := int16(math.MaxInt16)
	neg := int16(-math.MaxInt16)
	binary.LittleEndian.PutUint16(buf[0:], uint16(pos))
	binary.LittleEndian.PutUint16(buf[2:], uint16(neg))

	decoded := DecodePCM16LE(buf)
	if len(decoded) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(decoded))
	}
	if decoded[0] != 1.0 || decoded[1] != -1.0 {
		t.Errorf("expected [1.0 -1.0], got %v", decoded)
	}
}
