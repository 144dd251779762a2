package audit

import (
	"context"
	"database/sql"
	"sync"
)

/* ===================== POSTGRES ===================== */

// PostgresRepo assumes the following table exists (INSERT-only; consider a
// trigger preventing UPDATE/DELETE):
//
//	audit_events (
//	  id             UUID PRIMARY KEY,
//	  type           TEXT NOT NULL,
//	  actor_user_id  UUID NOT NULL,
//	  actor_role     TEXT NOT NULL DEFAULT '',
//	  ip_address     TEXT NOT NULL DEFAULT '',
//	  target_user_id TEXT NOT NULL DEFAULT '',
//	  customer_id    TEXT NOT NULL DEFAULT '',
//	  call_id        TEXT NOT NULL DEFAULT '',
//	  message        TEXT NOT NULL DEFAULT '',
//	  created_at     TIMESTAMPTZ NOT NULL
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, type, actor_user_id, actor_role, ip_address,
  target_user_id, customer_id, call_id, message, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.Type, e.ActorUserID, e.ActorRole, e.IPAddress,
		e.TargetUserID, e.CustomerID, e.CallID, e.Message, e.CreatedAt,
	)
	return err
}

/* ===================== MEMORY ===================== */

// MemoryRepo is an in-memory append-only repository for tests.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
