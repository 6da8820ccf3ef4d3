package classify

import "testing"

func TestDistribution_ArgmaxPrefersFirstInserted(t *testing.T) {
	d := NewDistribution()
	d.Set("neutral", 0.5)
	d.Set("happy", 0.5)
	d.Set("angry", 0.2)

	label, score := d.Argmax()
	if label != "neutral" {
		t.Errorf("tie must resolve to first inserted key, got %s", label)
	}
	if score != 0.5 {
		t.Errorf("expected score 0.5, got %v", score)
	}
}

func TestDistribution_ArgmaxEmpty(t *testing.T) {
	label, score := NewDistribution().Argmax()
	if label != "" || score != 0 {
		t.Errorf("empty distribution should yield empty argmax, got %s=%v", label, score)
	}
}

func TestDistribution_SetOverwritesKeepingPosition(t *testing.T) {
	d := NewDistribution()
	d.Set("speech", 0.1)
	d.Set("music", 0.9)
	d.Set("speech", 0.9)

	label, _ := d.Argmax()
	if label != "speech" {
		t.Errorf("overwritten key keeps its insertion slot, expected speech, got %s", label)
	}
}

func TestDistribution_NormalizeZeroSumIsNoop(t *testing.T) {
	d := NewDistribution()
	d.Set("speech", 0)
	d.Set("music", 0)
	d.Normalize()

	for k, v := range d.Scores() {
		if v != 0 {
			t.Errorf("zero-sum normalize must not change %s, got %v", k, v)
		}
	}
}

func TestDistribution_NormalizeSumsToOne(t *testing.T) {
	d := NewDistribution()
	d.Set("speech", 2)
	d.Set("music", 1)
	d.Set("noise", 1)
	d.Normalize()

	if sum := d.Sum(); sum < 0.999 || sum > 1.001 {
		t.Errorf("normalized distribution should sum to ~1.0, got %v", sum)
	}
}

func TestRounding(t *testing.T) {
	if got := Round4(0.123456); got != 0.1235 {
		t.Errorf("Round4(0.123456) = %v, expected 0.1235", got)
	}
	if got := Round2(12.345); got != 12.35 {
		t.Errorf("Round2(12.345) = %v, expected 12.35", got)
	}
}
