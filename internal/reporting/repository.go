package reporting

import (
	"context"

	"callcenter-platform/internal/calls"
	"callcenter-platform/internal/customers"
	"callcenter-platform/internal/identity"
)

// Repository abstracts data access for reporting. Implementations return
// full rows; the service aggregates in memory so the counting rules live in
// one place regardless of the backing store.
type Repository interface {
	ListUsers(ctx context.Context) ([]identity.User, error)
	ListCustomers(ctx context.Context, f customers.ListFilter) ([]customers.Customer, error)
	ListCallRecords(ctx context.Context, f customers.RecordFilter) ([]customers.CallRecord, error)
	ListCalls(ctx context.Context, f calls.ListFilter) ([]calls.Call, error)
	ListFeedback(ctx context.Context, f calls.FeedbackFilter) ([]calls.Feedback, error)
}

// SourceRepository satisfies Repository by delegating to the domain
// repositories, so Postgres and memory stores are covered by the same
// adapter.
type SourceRepository struct {
	Users     identity.Repository
	Customers customers.Repository
	Calls     calls.Repository
}

func NewSourceRepository(users identity.Repository, cust customers.Repository, callRepo calls.Repository) *SourceRepository {
	return &SourceRepository{Users: users, Customers: cust, Calls: callRepo}
}

func (r *SourceRepository) ListUsers(ctx context.Context) ([]identity.User, error) {
	return r.Users.List(ctx)
}

func (r *SourceRepository) ListCustomers(ctx context.Context, f customers.ListFilter) ([]customers.Customer, error) {
	return r.Customers.List(ctx, f)
}

func (r *SourceRepository) ListCallRecords(ctx context.Context, f customers.RecordFilter) ([]customers.CallRecord, error) {
	return r.Customers.ListRecords(ctx, f)
}

func (r *SourceRepository) ListCalls(ctx context.Context, f calls.ListFilter) ([]calls.Call, error) {
	return r.Calls.List(ctx, f)
}

func (r *SourceRepository) ListFeedback(ctx context.Context, f calls.FeedbackFilter) ([]calls.Feedback, error) {
	return r.Calls.ListFeedback(ctx, f)
}
