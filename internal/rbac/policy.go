package rbac

import "errors"

// ErrAccessDenied is returned when a specific resource is addressed by an
// actor that does not own it. Direct access fails loudly; list access is
// silently narrowed instead (see ScopeAssigned).
var ErrAccessDenied = errors.New("access denied")

// Actor is the authenticated identity a decision is made for. It is passed
// explicitly into Decide so the policy can be exercised without a live
// request context.
type Actor struct {
	ID   string
	Role Role
}

// ResourceKind enumerates the entity families the policy governs.
type ResourceKind string

const (
	ResourceUser       ResourceKind = "user"
	ResourceCustomer   ResourceKind = "customer"
	ResourceCall       ResourceKind = "call"
	ResourceCallRecord ResourceKind = "call_record"
	ResourceFeedback   ResourceKind = "feedback"
)

// Resource describes the target of an operation. For list operations the
// ownership fields are left empty; the decision then carries a scope instead.
type Resource struct {
	Kind ResourceKind

	// AssignedTo is the agent the resource (or its parent) is assigned to.
	// Empty means unassigned.
	AssignedTo string

	// OwnerID is the submitting user of an append-only child record.
	OwnerID string
}

// Operation enumerates the requested actions.
type Operation string

const (
	OpRead         Operation = "read"
	OpList         Operation = "list"
	OpCreate       Operation = "create"
	OpUpdate       Operation = "update"
	OpUpdateStatus Operation = "update_status"
	OpDelete       Operation = "delete"
	OpReassign     Operation = "reassign"
)

// Scope narrows list operations.
type Scope int

const (
	// ScopeNone applies to non-list decisions.
	ScopeNone Scope = iota
	// ScopeAll returns every row.
	ScopeAll
	// ScopeAssigned restricts rows to those assigned to (or owned by) the actor.
	ScopeAssigned
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Scope   Scope
	Reason  error
}

func allow(scope Scope) Decision { return Decision{Allowed: true, Scope: scope} }

func deny() Decision { return Decision{Allowed: false, Reason: ErrAccessDenied} }

// Decide is the single authorization entry point. It must be enforced
// identically regardless of transport.
//
// Rules:
//   - admin: unrestricted over users, customers and calls; read-only over
//     call records and feedback.
//   - agent: sees only resources assigned to itself. Direct access to a
//     non-owned resource is denied; lists are silently scoped to "mine".
//     Agents append call records/feedback for their own assignments only and
//     may adjust a customer's status but never create, delete or reassign.
func Decide(actor Actor, res Resource, op Operation) Decision {
	if actor.ID == "" {
		return deny()
	}
	if _, err := ParseRole(string(actor.Role)); err != nil {
		return deny()
	}

	if actor.Role == RoleAdmin {
		return decideAdmin(res, op)
	}
	return decideAgent(actor, res, op)
}

func decideAdmin(res Resource, op Operation) Decision {
	switch res.Kind {
	case ResourceUser, ResourceCustomer, ResourceCall:
		if op == OpList {
			return allow(ScopeAll)
		}
		return allow(ScopeNone)
	case ResourceCallRecord, ResourceFeedback:
		// Append-only records belong to the submitting agent; admins observe.
		switch op {
		case OpRead:
			return allow(ScopeNone)
		case OpList:
			return allow(ScopeAll)
		default:
			return deny()
		}
	default:
		return deny()
	}
}

func decideAgent(actor Actor, res Resource, op Operation) Decision {
	switch res.Kind {
	case ResourceCustomer, ResourceCall:
		switch op {
		case OpList:
			return allow(ScopeAssigned)
		case OpRead, OpUpdateStatus:
			// Unassigned calls stay readable; an assignment that points
			// elsewhere is the isolation boundary between agents.
			if res.AssignedTo != "" && res.AssignedTo != actor.ID {
				return deny()
			}
			if op == OpUpdateStatus && res.AssignedTo == "" {
				return deny()
			}
			return allow(ScopeNone)
		default:
			return deny()
		}
	case ResourceCallRecord, ResourceFeedback:
		switch op {
		case OpList:
			return allow(ScopeAssigned)
		case OpCreate:
			if res.AssignedTo != "" && res.AssignedTo != actor.ID {
				return deny()
			}
			return allow(ScopeNone)
		case OpRead, OpUpdate:
			if res.OwnerID != actor.ID {
				return deny()
			}
			return allow(ScopeNone)
		default:
			return deny()
		}
	default:
		return deny()
	}
}
