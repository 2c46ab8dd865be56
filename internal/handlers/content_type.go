package handlers

import (
	"mime"
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

// contentTypes maps lower-case extensions to bare media types. The table is
// fixed so responses do not depend on the host's mime.types files.
var contentTypes = map[string]string{
	".avif": "image/avif",
	".bmp":  "image/bmp",
	".css":  "text/css",
	".csv":  "text/csv",
	".gif":  "image/gif",
	".gz":   "application/gzip",
	".htm":  "text/html",
	".html": "text/html",
	".ico":  "image/x-icon",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".js":   "text/javascript",
	".json": "application/json",
	".md":   "text/markdown",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".tar":  "application/x-tar",
	".txt":  "text/plain",
	".wasm": "application/wasm",
	".webm": "video/webm",
	".webp": "image/webp",
	".xml":  "text/xml",
	".zip":  "application/zip",
}

// contentTypeFor guesses the media type of an asset from its extension.
// Unknown extensions are served as application/octet-stream.
func contentTypeFor(asset string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(asset))]; ok {
		return ct
	}
	return defaultContentType
}

// attachmentDisposition builds a Content-Disposition header value that
// prompts a download under the asset's name.
func attachmentDisposition(asset string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": asset}); v != "" {
		return v
	}
	return "attachment"
}
