package recordings

import (
	"path/filepath"
	"strings"

	"callcenter-platform/internal/validation"
)

// MaxUploadBytes caps a single recording at 50 MiB.
const MaxUploadBytes = 50 << 20

// allowedExtensions is the audio allow-list. Extension and declared MIME
// type are both checked; anything else is rejected before a single byte
// reaches the store.
var allowedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".webm": true,
	".m4a":  true,
	".aac":  true,
}

var allowedMIMEs = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/wave":  true,
	"audio/x-wav": true,
	"audio/ogg":   true,
	"audio/webm":  true,
	"video/webm":  true,
	"audio/mp4":   true,
	"audio/x-m4a": true,
	"audio/aac":   true,
	"audio/aacp":  true,
}

// Validate rejects oversized or non-audio uploads. It must run before any
// store write; a rejected file costs nothing upstream.
func Validate(req UploadRequest) error {
	var fields []string
	if req.Filename == "" {
		fields = append(fields, "filename")
	} else if !allowedExtensions[strings.ToLower(filepath.Ext(req.Filename))] {
		fields = append(fields, "filename")
	}
	if req.ContentType != "" && !allowedMIMEs[baseMIME(req.ContentType)] {
		fields = append(fields, "contentType")
	}
	if req.SizeBytes <= 0 || req.SizeBytes > MaxUploadBytes {
		fields = append(fields, "size")
	}
	if len(fields) > 0 {
		return validation.NewError(fields...)
	}
	return nil
}

// baseMIME strips parameters such as "; codecs=opus".
func baseMIME(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
