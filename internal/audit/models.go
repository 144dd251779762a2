package audit

import "time"

// Event is an immutable, append-only audit log record for admin actions.
//
// Invariants:
// - Events are never updated or deleted.
// - Capture is best-effort; the main flow never fails on an audit failure.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event.
	ActorUserID string `json:"actorUserId" db:"actor_user_id"`
	ActorRole   string `json:"actorRole,omitempty" db:"actor_role"`

	// IPAddress stores the resolved client IP when available.
	IPAddress string `json:"ipAddress,omitempty" db:"ip_address"`

	// Target identifiers (optional, depending on the event type).
	TargetUserID string `json:"targetUserId,omitempty" db:"target_user_id"`
	CustomerID   string `json:"customerId,omitempty" db:"customer_id"`
	CallID       string `json:"callId,omitempty" db:"call_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type EventType string

const (
	EventUserCreated        EventType = "user_created"
	EventCustomerCreated    EventType = "customer_created"
	EventCustomerReassigned EventType = "customer_reassigned"
	EventCustomerDeleted    EventType = "customer_deleted"
	EventCallCreated        EventType = "call_created"
	EventCallReassigned     EventType = "call_reassigned"
	EventCallDeleted        EventType = "call_deleted"
)
