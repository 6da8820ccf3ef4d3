package audio

import "testing"

func TestResample_Identity(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3}
	out := Resample(samples, 16000, 16000)
	if len(out) != len(samples) {
		t.Fatalf("same-rate resample should be identity, got %d samples", len(out))
	}
}

func TestResample_Downsample(t *testing.T) {
	samples := make([]float32, 32000)
	out := Resample(samples, 32000, 16000)
	if len(out) != 16000 {
		t.Errorf("expected 16000 samples after 2:1 downsample, got %d", len(out))
	}
}

func TestResample_Upsample(t *testing.T) {
	samples := make([]float32, 8000)
	out := Resample(samples, 8000, 16000)
	if len(out) != 16000 {
		t.Errorf("expected 16000 samples after 1:2 upsample, got %d", len(out))
	}
}

func TestResample_Empty(t *testing.T) {
	if out := Resample(nil, 8000, 16000); len(out) != 0 {
		t.Errorf("empty input should stay empty, got %d samples", len(out))
	}
}
