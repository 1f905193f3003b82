package core

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"png signature", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, FormatPNG},
		{"jpeg soi", []byte{0xFF, 0xD8, 0xFF, 0xE0}, FormatJPEG},
		{"arbitrary bytes", []byte("not an image at all"), FormatJPEG},
		{"empty", nil, FormatJPEG},
		{"truncated signature", []byte{0x89, 0x50, 0x4E}, FormatJPEG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data); got != tt.expected {
				t.Errorf("DetectFormat = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTextMapPreservesOrder(t *testing.T) {
	m := NewTextMap()
	m.Set("Author", "Alice")
	m.Set("Title", "Sunset")
	m.Set("Comment", "test shot")
	m.Set("Author", "Bob") // update keeps position

	keys := m.Keys()
	want := []string{"Author", "Title", "Comment"}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], k)
		}
	}
	if v, _ := m.Get("Author"); v != "Bob" {
		t.Errorf("Author = %q, want Bob", v)
	}
}

func TestTextMapNilSafe(t *testing.T) {
	var m *TextMap
	if m.Len() != 0 {
		t.Error("nil map should report zero length")
	}
	if _, ok := m.Get("x"); ok {
		t.Error("nil map should not find keys")
	}
	if m.Keys() != nil {
		t.Error("nil map should have no keys")
	}
}

func TestPipelineErrorMatching(t *testing.T) {
	cause := errors.New("boom")
	err := ErrTransformFailed.WithCause(cause)

	if !errors.Is(err, ErrTransformFailed) {
		t.Error("wrapped error should match its sentinel")
	}
	if errors.Is(err, ErrDecodeFailed) {
		t.Error("wrapped error should not match a different sentinel")
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable via Unwrap")
	}
}
