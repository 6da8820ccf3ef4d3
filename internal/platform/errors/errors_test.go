package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "error with cause",
			err: Wrap(KindConfig, "load", "failed to load config",
				errors.New("file not found")),
			contains: []string{"[config:load]", "failed to load config", "file not found"},
		},
		{
			name:     "error without cause",
			err:      New(KindClassify, "emotion", "empty sample buffer"),
			contains: []string{"[classify:emotion]", "empty sample buffer"},
		},
		{
			name: "engine error with cause",
			err: Wrap(KindEngine, "onnx.infer", "session run failed",
				errors.New("invalid tensor shape")),
			contains: []string{"[engine:onnx.infer]", "session run failed", "invalid tensor shape"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(errStr, substr) {
					t.Errorf("error string %q does not contain %q", errStr, substr)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(KindClassMap, "fetch", "wrapped", originalErr)

	if !errors.Is(wrappedErr, originalErr) {
		t.Error("Unwrap should return the original error")
	}
}

func TestWrap_NilCause(t *testing.T) {
	if err := Wrap(KindConfig, "load", "message", nil); err != nil {
		t.Errorf("Wrap with nil cause should return nil, got %v", err)
	}
}

func TestWrap_AlreadyTyped(t *testing.T) {
	inner := New(KindEngine, "init", "runtime missing")
	outer := Wrap(KindBootstrap, "step", "bootstrap step failed", inner)

	if outer != inner {
		t.Errorf("Wrap should pass through an already typed error, got %v", outer)
	}
}

func TestIsKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     Kind
		expected bool
	}{
		{
			name:     "direct error kind match",
			err:      New(KindConfig, "test", "message"),
			kind:     KindConfig,
			expected: true,
		},
		{
			name:     "wrapped error kind match",
			err:      Wrap(KindDecode, "test", "message", errors.New("cause")),
			kind:     KindDecode,
			expected: true,
		},
		{
			name:     "error kind mismatch",
			err:      New(KindConfig, "test", "message"),
			kind:     KindClassify,
			expected: false,
		},
		{
			name:     "non-typed error",
			err:      errors.New("plain error"),
			kind:     KindConfig,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			kind:     KindConfig,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsKind(tt.err, tt.kind)
			if result != tt.expected {
				t.Errorf("IsKind() = %v, expected %v", result, tt.expected)
			}
		})
	}
}
