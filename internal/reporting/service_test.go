package reporting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"callcenter-platform/internal/calls"
	"callcenter-platform/internal/customers"
	"callcenter-platform/internal/identity"
	"callcenter-platform/internal/rbac"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
	gets int
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	b, ok := c.data[key]
	return b, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = value
	return nil
}

var (
	admin = rbac.Actor{ID: "a1", Role: rbac.RoleAdmin}
	alice = rbac.Actor{ID: "alice", Role: rbac.RoleUser}
)

func seedRepos(t *testing.T) *SourceRepository {
	t.Helper()
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()

	users := identity.NewMemoryRepo()
	for _, u := range []identity.User{
		{ID: "a1", Username: "boss", Email: "boss@x.test", Role: rbac.RoleAdmin, CreatedAt: now},
		{ID: "alice", Username: "alice", Email: "alice@x.test", Role: rbac.RoleUser, CreatedAt: now},
		{ID: "bob", Username: "bob", Email: "bob@x.test", Role: rbac.RoleUser, CreatedAt: now},
	} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	cust := customers.NewMemoryRepo()
	seedCustomers := []customers.Customer{
		{ID: "c1", CustomerName: "One", PhoneNumber: "1", AssignedTo: "alice", Status: customers.StatusPending, Priority: customers.PriorityMedium, CreatedBy: "a1", CreatedAt: now},
		{ID: "c2", CustomerName: "Two", PhoneNumber: "2", AssignedTo: "alice", Status: customers.StatusContacted, Priority: customers.PriorityHigh, CreatedBy: "a1", CreatedAt: now},
		{ID: "c3", CustomerName: "Three", PhoneNumber: "3", AssignedTo: "bob", Status: customers.StatusCompleted, Priority: customers.PriorityLow, CreatedBy: "a1", CreatedAt: now},
	}
	for _, c := range seedCustomers {
		if err := cust.Create(ctx, c); err != nil {
			t.Fatalf("seed customer: %v", err)
		}
	}
	records := []customers.CallRecord{
		{ID: "r1", CustomerID: "c2", UserID: "alice", CallDate: now, DurationMinutes: 10, CallStatus: customers.OutcomeSuccessful, RecordingURL: "u", CreatedAt: now},
		{ID: "r2", CustomerID: "c1", UserID: "alice", CallDate: now, DurationMinutes: 5, CallStatus: customers.OutcomeBusy, CreatedAt: now},
		{ID: "r3", CustomerID: "c3", UserID: "bob", CallDate: now, DurationMinutes: 7, CallStatus: customers.OutcomeSuccessful, FollowUpRequired: true, CreatedAt: now},
	}
	for _, r := range records {
		if err := cust.InsertRecord(ctx, r, false); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	callRepo := calls.NewMemoryRepo()
	tickets := []calls.Call{
		{ID: "k1", AdminID: "a1", CustomerName: "One", PhoneNumber: "1", CallDate: now, Category: calls.CategorySupport, Priority: calls.PriorityMedium, Status: calls.StatusPending, AssignedUserID: "alice", CreatedAt: now},
		{ID: "k2", AdminID: "a1", CustomerName: "Two", PhoneNumber: "2", CallDate: now, Category: calls.CategorySales, Priority: calls.PriorityLow, Status: calls.StatusPending, CreatedAt: now},
		{ID: "k3", AdminID: "a1", CustomerName: "Three", PhoneNumber: "3", CallDate: now, Category: calls.CategoryOther, Priority: calls.PriorityHigh, Status: calls.StatusInReview, AssignedUserID: "bob", CreatedAt: now},
	}
	for _, c := range tickets {
		if err := callRepo.Create(ctx, c); err != nil {
			t.Fatalf("seed call: %v", err)
		}
	}
	if err := callRepo.SubmitFeedback(ctx, calls.Feedback{ID: "f1", CallID: "k1", UserID: "alice", FeedbackText: "resolved on first try", Rating: 5, SubmittedAt: now}); err != nil {
		t.Fatalf("seed feedback: %v", err)
	}

	return NewSourceRepository(users, cust, callRepo)
}

func TestAdminStats(t *testing.T) {
	svc := NewService(seedRepos(t), nil, 0)

	got, err := svc.AdminStats(context.Background(), admin)
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}

	if got.TotalUsers != 3 || got.TotalAgents != 2 {
		t.Fatalf("user counts wrong: %+v", got)
	}
	if got.TotalCustomers != 3 || got.PendingCustomers != 1 || got.ContactedCustomers != 1 || got.CompletedCustomers != 1 {
		t.Fatalf("customer counts wrong: %+v", got)
	}
	if got.TotalCallRecords != 3 || got.SuccessfulCallCount != 2 || got.TotalCallMinutes != 22 {
		t.Fatalf("record counts wrong: %+v", got)
	}
	if got.RecordedCallCount != 1 || got.FollowUpsOutstanding != 1 {
		t.Fatalf("recording/follow-up counts wrong: %+v", got)
	}
	// Seeding feedback for k1 promoted it to completed.
	if got.TotalCalls != 3 || got.PendingCalls != 1 || got.CompletedCalls != 1 || got.InReviewCalls != 1 || got.OpenCalls != 1 {
		t.Fatalf("ticket counts wrong: %+v", got)
	}
	if got.TotalFeedback != 1 || got.AverageRating != 5 {
		t.Fatalf("feedback stats wrong: %+v", got)
	}

	if _, err := svc.AdminStats(context.Background(), alice); !errors.Is(err, rbac.ErrAccessDenied) {
		t.Fatalf("expected agent denied, got %v", err)
	}
}

func TestAgentStats(t *testing.T) {
	svc := NewService(seedRepos(t), nil, 0)

	got, err := svc.AgentStats(context.Background(), alice, "alice")
	if err != nil {
		t.Fatalf("agent stats: %v", err)
	}
	if got.AssignedCustomers != 2 || got.PendingCustomers != 1 || got.ContactedCustomers != 1 {
		t.Fatalf("customer counts wrong: %+v", got)
	}
	if got.CallRecords != 2 || got.SuccessfulCalls != 1 || got.TotalCallMinutes != 15 {
		t.Fatalf("record counts wrong: %+v", got)
	}
	if got.AssignedCalls != 1 || got.CompletedCalls != 1 || got.SubmittedReports != 1 {
		t.Fatalf("ticket counts wrong: %+v", got)
	}

	// Agents cannot read each other's stats; admins can.
	if _, err := svc.AgentStats(context.Background(), alice, "bob"); !errors.Is(err, rbac.ErrAccessDenied) {
		t.Fatalf("expected cross-agent stats denied, got %v", err)
	}
	if _, err := svc.AgentStats(context.Background(), admin, "bob"); err != nil {
		t.Fatalf("expected admin access, got %v", err)
	}
}

func TestStatsCaching(t *testing.T) {
	cache := newMemoryCache()
	svc := NewService(seedRepos(t), cache, time.Minute)

	first, err := svc.AdminStats(context.Background(), admin)
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache fill, got %d", cache.sets)
	}

	second, err := svc.AdminStats(context.Background(), admin)
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache hit on second read, sets=%d", cache.sets)
	}
	if first != second {
		t.Fatalf("cached result diverged:\n%+v\n%+v", first, second)
	}
}
