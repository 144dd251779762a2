package customers

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory repository for tests. It mirrors the atomicity
// and uniqueness guarantees of the Postgres implementation.
type MemoryRepo struct {
	mu        sync.Mutex
	customers map[string]Customer
	records   []CallRecord
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{customers: map[string]Customer{}}
}

func (r *MemoryRepo) Create(ctx context.Context, c Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.customers {
		if existing.PhoneNumber == c.PhoneNumber {
			return ErrDuplicatePhone
		}
	}
	r.customers[c.ID] = c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Customer, 0)
	for _, c := range r.customers {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Priority != "" && c.Priority != f.Priority {
			continue
		}
		if f.AssignedTo != "" && c.AssignedTo != f.AssignedTo {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, c Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[c.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range r.customers {
		if id != c.ID && existing.PhoneNumber == c.PhoneNumber {
			return ErrDuplicatePhone
		}
	}
	r.customers[c.ID] = c
	return nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, status CustomerStatus, now time.Time) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = now
	r.customers[id] = c
	return c, nil
}

func (r *MemoryRepo) DeleteCascade(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[id]; !ok {
		return ErrNotFound
	}
	delete(r.customers, id)
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.CustomerID != id {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	return nil
}

func (r *MemoryRepo) InsertRecord(ctx context.Context, rec CallRecord, promote bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if promote {
		if c, ok := r.customers[rec.CustomerID]; ok && c.Status == StatusPending {
			c.Status = StatusContacted
			c.UpdatedAt = rec.CreatedAt
			r.customers[rec.CustomerID] = c
		}
	}
	return nil
}

func (r *MemoryRepo) ListRecords(ctx context.Context, f RecordFilter) ([]CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallRecord, 0)
	for _, rec := range r.records {
		if f.CustomerID != "" && rec.CustomerID != f.CustomerID {
			continue
		}
		if f.UserID != "" && rec.UserID != f.UserID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CallDate.After(out[j].CallDate) })
	return out, nil
}
