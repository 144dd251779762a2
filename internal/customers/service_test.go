package customers

import (
	"context"
	"errors"
	"testing"
	"time"

	"callcenter-platform/internal/identity"
	"callcenter-platform/internal/rbac"
	"callcenter-platform/internal/validation"
)

type fakeDirectory map[string]identity.User

func (f fakeDirectory) GetByID(ctx context.Context, id string) (identity.User, error) {
	u, ok := f[id]
	if !ok {
		return identity.User{}, identity.ErrNotFound
	}
	return u, nil
}

var (
	admin = rbac.Actor{ID: "a1", Role: rbac.RoleAdmin}
	alice = rbac.Actor{ID: "alice", Role: rbac.RoleUser}
	bob   = rbac.Actor{ID: "bob", Role: rbac.RoleUser}
)

func newTestService() *Service {
	dir := fakeDirectory{
		"a1":    {ID: "a1", Username: "boss", Role: rbac.RoleAdmin},
		"alice": {ID: "alice", Username: "alice", Role: rbac.RoleUser},
		"bob":   {ID: "bob", Username: "bob", Role: rbac.RoleUser},
	}
	svc := NewService(NewMemoryRepo(), dir)
	svc.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return svc
}

func mustCreate(t *testing.T, svc *Service, phone, assignee string) Customer {
	t.Helper()
	c, err := svc.Create(context.Background(), admin, CreateInput{
		CustomerName: "Acme",
		PhoneNumber:  phone,
		AssignedTo:   assignee,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return c
}

func TestCreate_AdminOnlyAndDefaults(t *testing.T) {
	svc := newTestService()

	c := mustCreate(t, svc, "+1-555-0100", "alice")
	if c.Status != StatusPending {
		t.Fatalf("expected initial status pending, got %s", c.Status)
	}
	if c.Priority != PriorityMedium {
		t.Fatalf("expected default priority medium, got %s", c.Priority)
	}
	if c.CreatedBy != admin.ID {
		t.Fatalf("expected creator recorded")
	}

	if _, err := svc.Create(context.Background(), alice, CreateInput{CustomerName: "X", PhoneNumber: "+1-555-0101", AssignedTo: "alice"}); !errors.Is(err, rbac.ErrAccessDenied) {
		t.Fatalf("expected agent create denied, got %v", err)
	}
}

func TestCreate_RejectsBadAssignee(t *testing.T) {
	svc := newTestService()

	// Unknown user.
	_, err := svc.Create(context.Background(), admin, CreateInput{CustomerName: "X", PhoneNumber: "+1-555-0102", AssignedTo: "ghost"})
	if _, ok := validation.AsError(err); !ok {
		t.Fatalf("expected validation error for unknown assignee, got %v", err)
	}

	// Admins cannot be assignees.
	_, err = svc.Create(context.Background(), admin, CreateInput{CustomerName: "X", PhoneNumber: "+1-555-0102", AssignedTo: "a1"})
	if _, ok := validation.AsError(err); !ok {
		t.Fatalf("expected validation error for admin assignee, got %v", err)
	}
}

func TestCreate_DuplicatePhone(t *testing.T) {
	svc := newTestService()
	mustCreate(t, svc, "+1-555-0100", "alice")
	_, err := svc.Create(context.Background(), admin, CreateInput{CustomerName: "Other", PhoneNumber: "+1-555-0100", AssignedTo: "bob"})
	if !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}
}

func TestGet_OwnershipAsymmetry(t *testing.T) {
	svc := newTestService()
	c := mustCreate(t, svc, "+1-555-0100", "alice")

	if _, err := svc.Get(context.Background(), alice, c.ID); err != nil {
		t.Fatalf("expected assignee read allowed, got %v", err)
	}
	if _, err := svc.Get(context.Background(), bob, c.ID); !errors.Is(err, rbac.ErrAccessDenied) {
		t.Fatalf("expected non-owner read denied, got %v", err)
	}
	if _, err := svc.Get(context.Background(), admin, c.ID); err != nil {
		t.Fatalf("expected admin read allowed, got %v", err)
	}
}

func TestList_SilentScopingForAgents(t *testing.T) {
	svc := newTestService()
	mustCreate(t, svc, "+1-555-0100", "alice")
	mustCreate(t, svc, "+1-555-0101", "bob")

	// Agents get only their own rows even when asking for someone else's.
	got, err := svc.List(context.Background(), alice, ListFilter{AssignedTo: "bob"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].AssignedTo != "alice" {
		t.Fatalf("expected alice's single customer, got %+v", got)
	}

	all, err := svc.List(context.Background(), admin, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected admin to see both, got %d", len(all))
	}
}

func TestUpdate_AdminAnyFieldIncludingReassign(t *testing.T) {
	svc := newTestService()
	c := mustCreate(t, svc, "+1-555-0100", "alice")

	updated, err := svc.Update(context.Background(), admin, c.ID, UpdateInput{
		CustomerName: "Acme Ltd",
		PhoneNumber:  "+1-555-0199",
		AssignedTo:   "bob",
		Status:       StatusCompleted,
		Priority:     PriorityUrgent,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AssignedTo != "bob" || updated.Status != StatusCompleted {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := svc.Update(context.Background(), alice, c.ID, UpdateInput{}); !errors.Is(err, rbac.ErrAccessDenied) {
		t.Fatalf("expected agent full update denied, got %v", err)
	}
}

func TestUpdateStatus_AgentRules(t *testing.T) {
	svc := newTestService()
	c := mustCreate(t, svc, "+1-555-0100", "alice")

	got, err := svc.UpdateStatus(context.Background(), alice, c.ID, StatusContacted)
	if err != nil {
		t.Fatalf("status update: %v", err)
	}
	if got.Status != StatusContacted {
		t.Fatalf("expected contacted, got %s", got.Status)
	}

	// Agents never set completed; that path is admin-only.
	if _, err := svc.UpdateStatus(context.Background(), alice, c.ID, StatusCompleted); !errors.Is(err, rbac.ErrAccessDenied) {
		t.Fatalf("expected completed denied for agent, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), admin, c.ID, StatusCompleted); err != nil {
		t.Fatalf("expected completed allowed for admin, got %v", err)
	}

	// Non-owner agents are denied outright.
	if _, err := svc.UpdateStatus(context.Background(), bob, c.ID, StatusContacted); !errors.Is(err, rbac.ErrAccessDenied) {
		t.Fatalf("expected non-owner denied, got %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), alice, c.ID, "archived"); err == nil {
		t.Fatalf("expected unknown status rejected")
	}
}

func TestLogCall_AssigneeInvariantAndPromotion(t *testing.T) {
	svc := newTestService()
	c := mustCreate(t, svc, "+1-555-0100", "alice")

	// Non-assignee cannot log.
	_, err := svc.LogCall(context.Background(), bob, RecordInput{CustomerID: c.ID, CallStatus: OutcomeSuccessful})
	if !errors.Is(err, rbac.ErrAccessDenied) {
		t.Fatalf("expected non-assignee log denied, got %v", err)
	}

	// Successful call promotes pending -> contacted.
	rec, err := svc.LogCall(context.Background(), alice, RecordInput{CustomerID: c.ID, CallStatus: OutcomeSuccessful, DurationMinutes: 5})
	if err != nil {
		t.Fatalf("log call: %v", err)
	}
	if rec.UserID != "alice" {
		t.Fatalf("expected record owned by assignee")
	}
	got, _ := svc.Get(context.Background(), admin, c.ID)
	if got.Status != StatusContacted {
		t.Fatalf("expected contacted after successful call, got %s", got.Status)
	}
}

func TestLogCall_PromotionIsIdempotent(t *testing.T) {
	svc := newTestService()
	c := mustCreate(t, svc, "+1-555-0100", "alice")

	for i := 0; i < 2; i++ {
		if _, err := svc.LogCall(context.Background(), alice, RecordInput{CustomerID: c.ID, CallStatus: OutcomeSuccessful}); err != nil {
			t.Fatalf("log call %d: %v", i, err)
		}
	}
	got, _ := svc.Get(context.Background(), admin, c.ID)
	if got.Status != StatusContacted {
		t.Fatalf("expected contacted, got %s", got.Status)
	}

	// Completed customers are never reverted by new successful calls.
	if _, err := svc.UpdateStatus(context.Background(), admin, c.ID, StatusCompleted); err != nil {
		t.Fatalf("admin complete: %v", err)
	}
	if _, err := svc.LogCall(context.Background(), alice, RecordInput{CustomerID: c.ID, CallStatus: OutcomeSuccessful}); err != nil {
		t.Fatalf("log call: %v", err)
	}
	got, _ = svc.Get(context.Background(), admin, c.ID)
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed untouched, got %s", got.Status)
	}

	// Multiple records per customer are valid; history only grows.
	recs, err := svc.ListRecords(context.Background(), admin, RecordFilter{CustomerID: c.ID})
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
}

func TestLogCall_UnsuccessfulDoesNotPromote(t *testing.T) {
	svc := newTestService()
	c := mustCreate(t, svc, "+1-555-0100", "alice")

	for _, outcome := range []CallOutcome{OutcomeNoAnswer, OutcomeBusy, OutcomeVoicemail} {
		if _, err := svc.LogCall(context.Background(), alice, RecordInput{CustomerID: c.ID, CallStatus: outcome}); err != nil {
			t.Fatalf("log %s: %v", outcome, err)
		}
	}
	got, _ := svc.Get(context.Background(), admin, c.ID)
	if got.Status != StatusPending {
		t.Fatalf("expected still pending, got %s", got.Status)
	}
}

func TestDelete_CascadesRecords(t *testing.T) {
	svc := newTestService()
	c := mustCreate(t, svc, "+1-555-0100", "alice")
	if _, err := svc.LogCall(context.Background(), alice, RecordInput{CustomerID: c.ID, CallStatus: OutcomeSuccessful}); err != nil {
		t.Fatalf("log call: %v", err)
	}

	if err := svc.Delete(context.Background(), alice, c.ID); !errors.Is(err, rbac.ErrAccessDenied) {
		t.Fatalf("expected agent delete denied, got %v", err)
	}
	if err := svc.Delete(context.Background(), admin, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Get(context.Background(), admin, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected customer gone, got %v", err)
	}
	recs, err := svc.ListRecords(context.Background(), admin, RecordFilter{CustomerID: c.ID})
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no orphaned records, got %d", len(recs))
	}

	if err := svc.Delete(context.Background(), admin, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListRecords_AgentScoping(t *testing.T) {
	svc := newTestService()
	ca := mustCreate(t, svc, "+1-555-0100", "alice")
	cb := mustCreate(t, svc, "+1-555-0101", "bob")

	if _, err := svc.LogCall(context.Background(), alice, RecordInput{CustomerID: ca.ID, CallStatus: OutcomeBusy}); err != nil {
		t.Fatalf("log call: %v", err)
	}
	if _, err := svc.LogCall(context.Background(), bob, RecordInput{CustomerID: cb.ID, CallStatus: OutcomeBusy}); err != nil {
		t.Fatalf("log call: %v", err)
	}

	recs, err := svc.ListRecords(context.Background(), alice, RecordFilter{})
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(recs) != 1 || recs[0].UserID != "alice" {
		t.Fatalf("expected only alice's records, got %+v", recs)
	}
}

func TestRoundTrip_FieldsPreserved(t *testing.T) {
	svc := newTestService()
	created, err := svc.Create(context.Background(), admin, CreateInput{
		CustomerName: "Roundtrip Inc",
		PhoneNumber:  "+44 20 7946 0958",
		Email:        "ops@roundtrip.example",
		Address:      "1 High Street",
		AssignedTo:   "alice",
		Priority:     PriorityHigh,
		Notes:        "prefers mornings",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(context.Background(), admin, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Fatalf("round-trip mismatch:\ncreated %+v\ngot     %+v", created, got)
	}
}
