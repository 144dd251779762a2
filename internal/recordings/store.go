package recordings

import (
	"context"
	"errors"
	"io"
)

// ErrStorage marks a failure of the external blob store after local checks
// passed. The HTTP layer maps it to a bad-gateway response.
var ErrStorage = errors.New("recording store failure")

// UploadRequest is a validated audio file headed for the blob store.
type UploadRequest struct {
	Filename    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

// UploadResult identifies a stored recording. PublicID is the provider-side
// handle used for later management; URL is what clients play back.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Store is the external blob-store contract. Implementations receive only
// requests that already passed Validate; they never re-check size or format.
type Store interface {
	Upload(ctx context.Context, req UploadRequest) (UploadResult, error)
}
