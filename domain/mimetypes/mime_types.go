package mimetypes

import (
	"mime"
	"strings"
)

type MIME string

const (
	Unknown   MIME = "unknown"
	TextPlain MIME = "text/plain"

	ApplicationPDF MIME = "application/pdf"
	ApplicationZIP MIME = "application/zip"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWebP MIME = "image/webp"

	VideoMP4  MIME = "video/mp4"
	VideoWebM MIME = "video/webm"
)

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// IsImage reports whether the detected content type belongs to the image class.
func IsImage(detected string) bool {
	return hasClass(detected, "image")
}

// IsVideo reports whether the detected content type belongs to the video class.
func IsVideo(detected string) bool {
	return hasClass(detected, "video")
}

func hasClass(detected, class string) bool {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, class+"/")
}
