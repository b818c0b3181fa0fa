package source_resolver

import (
	"context"
	"testing"
)

func TestPickRoutesInput(t *testing.T) {
	r := New(context.Background(), "", "")

	tests := []struct {
		input string
		want  string
	}{
		{"never gonna give you up", "youtube"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "youtube"},
		{"https://youtu.be/dQw4w9WgXcQ", "youtube"},
		{"https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT", "spotify"},
		{"spotify:track:4cOdK2wGLETKBW3PvgPWqT", "youtube"}, // URI form is not a URL, treated as search text
	}

	for _, tt := range tests {
		src, err := r.pick(tt.input)
		if err != nil {
			t.Errorf("pick(%q) returned error: %v", tt.input, err)
			continue
		}
		if got := src.SourceName(); got != tt.want {
			t.Errorf("pick(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestResolveRejectsEmptyInput(t *testing.T) {
	r := New(context.Background(), "", "")

	if _, err := r.Resolve(context.Background(), "   "); err == nil {
		t.Error("blank input should fail")
	}
}
