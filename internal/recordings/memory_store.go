package recordings

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps uploads in memory for tests. Set Fail to simulate a
// provider outage.
type MemoryStore struct {
	mu      sync.Mutex
	Fail    bool
	uploads map[string][]byte
	seq     int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{uploads: map[string][]byte{}}
}

func (s *MemoryStore) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return UploadResult{}, fmt.Errorf("%w: simulated outage", ErrStorage)
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.seq++
	publicID := fmt.Sprintf("mem/%d/%s", s.seq, req.Filename)
	s.uploads[publicID] = data
	return UploadResult{
		URL:      "memory://" + publicID,
		PublicID: publicID,
	}, nil
}

// Stored returns the bytes saved under a public id, for assertions.
func (s *MemoryStore) Stored(publicID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.uploads[publicID]
	return b, ok
}
