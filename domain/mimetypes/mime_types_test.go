package mimetypes

import (
	"testing"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		expected MIME
		want     bool
	}{
		{"Plain text with charset", "text/plain; charset=utf-8", TextPlain, true},
		{"PDF", "application/pdf", ApplicationPDF, true},
		{"PNG", "image/png", ImagePNG, true},
		{"JPEG", "image/jpeg", ImageJPEG, true},
		{"MP4", "video/mp4", VideoMP4, true},
		{"WebM", "video/webm", VideoWebM, true},

		// Fallback / mismatch
		{"Mismatch", "text/plain; charset=utf-8", ImagePNG, false},
		{"Garbage", "not a mime", TextPlain, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := Matches(tt.detected, tt.expected)
			if got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.detected, tt.expected, got, tt.want)
			}
		})
	}
}

func TestClassChecks(t *testing.T) {
	tests := []struct {
		name      string
		detected  string
		wantImage bool
		wantVideo bool
	}{
		{"PNG is image", "image/png", true, false},
		{"JPEG with params", "image/jpeg; q=0.9", true, false},
		{"MP4 is video", "video/mp4", false, true},
		{"PDF is neither", "application/pdf", false, false},
		{"Invalid is neither", "///", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsImage(tt.detected); got != tt.wantImage {
				t.Errorf("IsImage(%q) = %v, want %v", tt.detected, got, tt.wantImage)
			}
			if got := IsVideo(tt.detected); got != tt.wantVideo {
				t.Errorf("IsVideo(%q) = %v, want %v", tt.detected, got, tt.wantVideo)
			}
		})
	}
}
