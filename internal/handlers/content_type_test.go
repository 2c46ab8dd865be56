package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		asset string
		want  string
	}{
		{"image.png", "image/png"},
		{"image.jpeg", "image/jpeg"},
		{"image.jpg", "image/jpeg"},
		{"IMAGE.JPG", "image/jpeg"},
		{"file.txt", "text/plain"},
		{"report.json", "application/json"},
		{"file.dmg", "application/octet-stream"},
		{"file-1", "application/octet-stream"},
		{".hidden", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.asset, func(t *testing.T) {
			assert.Equal(t, tt.want, contentTypeFor(tt.asset))
		})
	}
}

func TestAttachmentDisposition(t *testing.T) {
	assert.Equal(t, "attachment; filename=readme.txt", attachmentDisposition("readme.txt"))
	assert.Equal(t, `attachment; filename="my docs.txt"`, attachmentDisposition("my docs.txt"))
}
