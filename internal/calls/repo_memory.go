package calls

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory repository for tests. It mirrors the atomicity
// and uniqueness guarantees of the Postgres implementation, in particular
// the one-feedback-per-call gate.
type MemoryRepo struct {
	mu       sync.Mutex
	calls    map[string]Call
	feedback map[string]Feedback // keyed by feedback id
	byCall   map[string]string   // call id -> feedback id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		calls:    map[string]Call{},
		feedback: map[string]Feedback{},
		byCall:   map[string]string{},
	}
}

func (r *MemoryRepo) Create(ctx context.Context, c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[c.ID] = c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[id]
	if !ok {
		return Call{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, 0)
	for _, c := range r.calls {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		if f.Priority != "" && c.Priority != f.Priority {
			continue
		}
		if f.AssignedUserID != "" {
			mine := c.AssignedUserID == f.AssignedUserID
			open := f.OpenToo && c.AssignedUserID == ""
			if !mine && !open {
				continue
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CallDate.After(out[j].CallDate) })
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calls[c.ID]; !ok {
		return ErrNotFound
	}
	r.calls[c.ID] = c
	return nil
}

func (r *MemoryRepo) DeleteCascade(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calls[id]; !ok {
		return ErrNotFound
	}
	delete(r.calls, id)
	if fbID, ok := r.byCall[id]; ok {
		delete(r.feedback, fbID)
		delete(r.byCall, id)
	}
	return nil
}

func (r *MemoryRepo) SubmitFeedback(ctx context.Context, fb Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byCall[fb.CallID]; exists {
		return ErrDuplicateFeedback
	}
	r.feedback[fb.ID] = fb
	r.byCall[fb.CallID] = fb.ID
	if c, ok := r.calls[fb.CallID]; ok && c.Status == StatusPending {
		c.Status = StatusCompleted
		c.UpdatedAt = fb.SubmittedAt
		r.calls[fb.CallID] = c
	}
	return nil
}

func (r *MemoryRepo) GetFeedback(ctx context.Context, id string) (Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fb, ok := r.feedback[id]
	if !ok {
		return Feedback{}, ErrFeedbackNotFound
	}
	return fb, nil
}

func (r *MemoryRepo) GetFeedbackByCall(ctx context.Context, callID string) (Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fbID, ok := r.byCall[callID]
	if !ok {
		return Feedback{}, ErrFeedbackNotFound
	}
	return r.feedback[fbID], nil
}

func (r *MemoryRepo) ListFeedback(ctx context.Context, f FeedbackFilter) ([]Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Feedback, 0)
	for _, fb := range r.feedback {
		if f.CallID != "" && fb.CallID != f.CallID {
			continue
		}
		if f.UserID != "" && fb.UserID != f.UserID {
			continue
		}
		out = append(out, fb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (r *MemoryRepo) UpdateFeedbackRecording(ctx context.Context, id, url, publicID string, now time.Time) (Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fb, ok := r.feedback[id]
	if !ok {
		return Feedback{}, ErrFeedbackNotFound
	}
	fb.RecordingURL = url
	fb.RecordingPublicID = publicID
	fb.UpdatedAt = &now
	r.feedback[id] = fb
	return fb, nil
}
