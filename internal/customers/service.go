package customers

import (
	"context"
	"errors"
	"time"

	"callcenter-platform/internal/identity"
	"callcenter-platform/internal/rbac"
	"callcenter-platform/internal/validation"

	"github.com/google/uuid"
)

// UserDirectory is the slice of the identity service the customer aggregate
// needs: resolving assignees.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (identity.User, error)
}

// Service owns the customer lifecycle and its append-only call history.
// Every operation takes the acting identity explicitly; authorization is a
// policy decision, never ambient state.
type Service struct {
	repo  Repository
	users UserDirectory
	clock func() time.Time
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users, clock: time.Now}
}

type CreateInput struct {
	CustomerName string
	PhoneNumber  string
	Email        string
	Address      string
	AssignedTo   string
	Priority     Priority
	Notes        string
}

// Create registers a new customer; admin only. The assignee must be an
// existing agent account.
func (s *Service) Create(ctx context.Context, actor rbac.Actor, in CreateInput) (Customer, error) {
	if d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCustomer}, rbac.OpCreate); !d.Allowed {
		return Customer{}, d.Reason
	}

	now := s.clock().UTC()
	c := Customer{
		ID:           uuid.NewString(),
		CustomerName: in.CustomerName,
		PhoneNumber:  in.PhoneNumber,
		Email:        in.Email,
		Address:      in.Address,
		AssignedTo:   in.AssignedTo,
		Status:       StatusPending,
		Priority:     in.Priority,
		Notes:        in.Notes,
		CreatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}

	if err := c.Validate(); err != nil {
		return Customer{}, err
	}
	if err := s.checkAssignee(ctx, c.AssignedTo); err != nil {
		return Customer{}, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Customer{}, err
	}
	return c, nil
}

// Get fetches one customer. Agents only see their own assignments; a
// non-owned direct fetch is denied, not hidden.
func (s *Service) Get(ctx context.Context, actor rbac.Actor, id string) (Customer, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCustomer, AssignedTo: c.AssignedTo}, rbac.OpRead)
	if !d.Allowed {
		return Customer{}, d.Reason
	}
	return c, nil
}

// List returns customers matching the filter. Agent lists are silently
// narrowed to their own assignments regardless of the requested filter.
func (s *Service) List(ctx context.Context, actor rbac.Actor, f ListFilter) ([]Customer, error) {
	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCustomer}, rbac.OpList)
	if !d.Allowed {
		return nil, d.Reason
	}
	if d.Scope == rbac.ScopeAssigned {
		f.AssignedTo = actor.ID
	}
	return s.repo.List(ctx, f)
}

type UpdateInput struct {
	CustomerName string
	PhoneNumber  string
	Email        string
	Address      string
	AssignedTo   string
	Status       CustomerStatus
	Priority     Priority
	Notes        string
}

// Update replaces every mutable field; admin only. Admins may set any
// status and reassign freely (subject to the assignee existing).
func (s *Service) Update(ctx context.Context, actor rbac.Actor, id string, in UpdateInput) (Customer, error) {
	if d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCustomer}, rbac.OpUpdate); !d.Allowed {
		return Customer{}, d.Reason
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}

	updated := current
	updated.CustomerName = in.CustomerName
	updated.PhoneNumber = in.PhoneNumber
	updated.Email = in.Email
	updated.Address = in.Address
	updated.AssignedTo = in.AssignedTo
	updated.Status = in.Status
	updated.Priority = in.Priority
	updated.Notes = in.Notes
	updated.UpdatedAt = s.clock().UTC()

	if err := updated.Validate(); err != nil {
		return Customer{}, err
	}
	if updated.AssignedTo != current.AssignedTo {
		if err := s.checkAssignee(ctx, updated.AssignedTo); err != nil {
			return Customer{}, err
		}
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return Customer{}, err
	}
	return updated, nil
}

// UpdateStatus is the agent-facing status adjustment. Agents may move their
// own customers between pending and contacted; completed is admin territory.
func (s *Service) UpdateStatus(ctx context.Context, actor rbac.Actor, id string, status CustomerStatus) (Customer, error) {
	if !ValidCustomerStatus(status) {
		return Customer{}, validation.NewError("status")
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCustomer, AssignedTo: c.AssignedTo}, rbac.OpUpdateStatus)
	if !d.Allowed {
		return Customer{}, d.Reason
	}
	if actor.Role != rbac.RoleAdmin && status == StatusCompleted {
		return Customer{}, rbac.ErrAccessDenied
	}

	return s.repo.UpdateStatus(ctx, id, status, s.clock().UTC())
}

// Delete removes a customer and all of its call records atomically; admin
// only.
func (s *Service) Delete(ctx context.Context, actor rbac.Actor, id string) error {
	if d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCustomer}, rbac.OpDelete); !d.Allowed {
		return d.Reason
	}
	return s.repo.DeleteCascade(ctx, id)
}

type RecordInput struct {
	CustomerID        string
	CallDate          time.Time
	DurationMinutes   int
	RecordingURL      string
	RecordingPublicID string
	CallStatus        CallOutcome
	Feedback          string
	FollowUpRequired  bool
	FollowUpDate      *time.Time
}

// LogCall appends an immutable call record. Only the customer's current
// assignee may log; a successful outcome promotes a pending customer to
// contacted in the same atomic write (idempotent on re-logging).
func (s *Service) LogCall(ctx context.Context, actor rbac.Actor, in RecordInput) (CallRecord, error) {
	c, err := s.repo.Get(ctx, in.CustomerID)
	if err != nil {
		return CallRecord{}, err
	}

	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCallRecord, AssignedTo: c.AssignedTo}, rbac.OpCreate)
	if !d.Allowed {
		return CallRecord{}, d.Reason
	}

	now := s.clock().UTC()
	rec := CallRecord{
		ID:                uuid.NewString(),
		CustomerID:        in.CustomerID,
		UserID:            actor.ID,
		CallDate:          in.CallDate,
		DurationMinutes:   in.DurationMinutes,
		RecordingURL:      in.RecordingURL,
		RecordingPublicID: in.RecordingPublicID,
		CallStatus:        in.CallStatus,
		Feedback:          in.Feedback,
		FollowUpRequired:  in.FollowUpRequired,
		FollowUpDate:      in.FollowUpDate,
		CreatedAt:         now,
	}
	if rec.CallDate.IsZero() {
		rec.CallDate = now
	}

	if err := rec.Validate(); err != nil {
		return CallRecord{}, err
	}

	promote := rec.CallStatus == OutcomeSuccessful
	if err := s.repo.InsertRecord(ctx, rec, promote); err != nil {
		return CallRecord{}, err
	}
	return rec, nil
}

// ListRecords returns call history. Agents see their own submissions only.
func (s *Service) ListRecords(ctx context.Context, actor rbac.Actor, f RecordFilter) ([]CallRecord, error) {
	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCallRecord}, rbac.OpList)
	if !d.Allowed {
		return nil, d.Reason
	}
	if d.Scope == rbac.ScopeAssigned {
		f.UserID = actor.ID
	}
	return s.repo.ListRecords(ctx, f)
}

func (s *Service) checkAssignee(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return validation.NewError("assignedTo")
		}
		return err
	}
	if u.Role != rbac.RoleUser {
		return validation.NewError("assignedTo")
	}
	return nil
}
