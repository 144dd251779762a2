package httpapi

import (
	"errors"
	"net/http"

	"callcenter-platform/internal/recordings"

	"github.com/gin-gonic/gin"
)

const recordingField = "recording"

// maybeUploadRecording pulls the optional recording file from a multipart
// form, validates it locally and only then sends it to the blob store. The
// second return reports whether a file was present at all.
func (h Handlers) maybeUploadRecording(c *gin.Context) (recordings.UploadResult, bool, error) {
	header, err := c.FormFile(recordingField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return recordings.UploadResult{}, false, nil
		}
		return recordings.UploadResult{}, false, err
	}

	f, err := header.Open()
	if err != nil {
		return recordings.UploadResult{}, true, err
	}
	defer f.Close()

	req := recordings.UploadRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
		Body:        f,
	}
	if err := recordings.Validate(req); err != nil {
		return recordings.UploadResult{}, true, err
	}

	res, err := h.Recordings.Upload(c.Request.Context(), req)
	if err != nil {
		return recordings.UploadResult{}, true, err
	}
	return res, true, nil
}
