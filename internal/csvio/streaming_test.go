package csvio

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestWrapForLoading(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		label    string
		expected string
	}{
		{
			name:     "file with UTF-8 BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he�lo",
		},
		{
			name:     "UTF-16 BOM overrides label",
			input:    []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00},
			label:    "windows-1252",
			expected: "hi",
		},
		{
			name:     "windows-1252 decoded",
			input:    []byte{'c', 'a', 'f', 0xE9},
			label:    "windows-1252",
			expected: "café",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := WrapForLoading(bytes.NewReader(tt.input), tt.label, 0)
			if err != nil {
				t.Fatalf("WrapForLoading: %v", err)
			}
			result, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestWrapForLoading_UnknownEncoding(t *testing.T) {
	_, err := WrapForLoading(strings.NewReader("x"), "klingon", 0)
	if err == nil || !strings.Contains(err.Error(), "unknown encoding") {
		t.Errorf("err = %v, want unknown encoding", err)
	}
}

func TestCountingReader_Limit(t *testing.T) {
	r := NewCountingReader(strings.NewReader(strings.Repeat("a", 100)), 10)
	_, err := io.ReadAll(r)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestCountingReader_Counts(t *testing.T) {
	r := NewCountingReader(strings.NewReader("hello"), 0)
	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if r.BytesRead != 5 {
		t.Errorf("BytesRead = %d, want 5", r.BytesRead)
	}
}
