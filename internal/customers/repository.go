package customers

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("customer not found")
	// ErrDuplicatePhone signals a phone number collision.
	ErrDuplicatePhone = errors.New("phone number already registered")
)

// ListFilter narrows customer listings. Empty fields match everything.
type ListFilter struct {
	Status     CustomerStatus
	Priority   Priority
	AssignedTo string
}

// RecordFilter narrows call record listings.
type RecordFilter struct {
	CustomerID string
	UserID     string
}

// Repository is the persistence contract for the customer aggregate.
//
// Implementations must guarantee:
//   - DeleteCascade removes the customer and all of its call records
//     atomically; a parent without children being gone (or vice versa) must
//     never be observable.
//   - InsertRecord(rec, promote=true) appends the record and promotes the
//     customer pending -> contacted in the same atomic step; the promotion
//     is a no-op when the customer already left pending.
type Repository interface {
	Create(ctx context.Context, c Customer) error
	Get(ctx context.Context, id string) (Customer, error)
	List(ctx context.Context, f ListFilter) ([]Customer, error)
	Update(ctx context.Context, c Customer) error
	UpdateStatus(ctx context.Context, id string, status CustomerStatus, now time.Time) (Customer, error)
	DeleteCascade(ctx context.Context, id string) error

	InsertRecord(ctx context.Context, rec CallRecord, promote bool) error
	ListRecords(ctx context.Context, f RecordFilter) ([]CallRecord, error)
}
