package youtube

import "testing"

func TestIsYouTubeVideoURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://music.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/playlist?list=PL123", false},
		{"https://youtu.be/", false},
		{"https://example.com/watch?v=dQw4w9WgXcQ", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		if got := isYouTubeVideoURL(tt.input); got != tt.want {
			t.Errorf("isYouTubeVideoURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCleanVideoURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=RDdQw4w9WgXcQ&index=2",
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			"https://youtu.be/dQw4w9WgXcQ?si=abc",
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			// no video id to extract, returned untouched
			"https://www.youtube.com/playlist?list=PL123",
			"https://www.youtube.com/playlist?list=PL123",
		},
	}

	for _, tt := range tests {
		if got := cleanVideoURL(tt.input); got != tt.want {
			t.Errorf("cleanVideoURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsURL(t *testing.T) {
	if !isURL("https://example.com/stream") {
		t.Error("https link should be a URL")
	}
	if isURL("never gonna give you up") {
		t.Error("free text should not be a URL")
	}
}
