package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewCanvas(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantErr  error
	}{
		{"valid name", "Ideas", "Ideas", nil},
		{"trims whitespace", "  Ideas  ", "Ideas", nil},
		{"empty name", "", "", ErrEmptyCanvasName},
		{"whitespace only", "   ", "", ErrEmptyCanvasName},
		{"max length", strings.Repeat("a", 255), strings.Repeat("a", 255), nil},
		{"too long", strings.Repeat("a", 256), "", ErrCanvasNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas, err := NewCanvas(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewCanvas() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if canvas != nil {
					t.Error("expected nil canvas on error")
				}
				return
			}
			if canvas.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", canvas.Name, tt.wantName)
			}
			if canvas.ID == uuid.Nil {
				t.Error("expected non-nil ID")
			}
		})
	}
}

func TestMediaKind_IsValid(t *testing.T) {
	for _, kind := range MediaKinds {
		if !kind.IsValid() {
			t.Errorf("%s should be valid", kind)
		}
	}
	for _, kind := range []MediaKind{"", "videos", "../images"} {
		if kind.IsValid() {
			t.Errorf("%q should be invalid", kind)
		}
	}
}
