package recordings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"callcenter-platform/internal/config"
)

// HTTPStore posts recordings to a Cloudinary-style unsigned upload endpoint:
// multipart form with the file, an upload preset and a target folder; the
// provider answers JSON carrying secure_url and public_id.
//
// No Go SDK is involved on purpose; the unsigned upload API is plain HTTP.
type HTTPStore struct {
	cfg    config.MediaConfig
	client *http.Client
}

func NewHTTPStore(cfg config.MediaConfig) *HTTPStore {
	return &HTTPStore{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type providerResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
}

func (s *HTTPStore) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", req.Filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if _, err := io.Copy(part, req.Body); err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := mw.WriteField("upload_preset", s.cfg.UploadPreset); err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := mw.WriteField("folder", s.cfg.Folder); err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.UploadURL, &body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{}, fmt.Errorf("%w: provider returned %d", ErrStorage, resp.StatusCode)
	}

	var pr providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return UploadResult{}, fmt.Errorf("%w: bad provider response: %v", ErrStorage, err)
	}
	url := pr.SecureURL
	if url == "" {
		url = pr.URL
	}
	if url == "" || pr.PublicID == "" {
		return UploadResult{}, fmt.Errorf("%w: provider response missing url or public_id", ErrStorage)
	}
	return UploadResult{URL: url, PublicID: pr.PublicID}, nil
}
