package calls

import (
	"context"
	"errors"
	"time"

	"callcenter-platform/internal/identity"
	"callcenter-platform/internal/rbac"
	"callcenter-platform/internal/validation"

	"github.com/google/uuid"
)

// UserDirectory is the slice of the identity service the call aggregate
// needs: resolving assignees.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (identity.User, error)
}

// Service owns the call ticket lifecycle and its closing feedback. Every
// operation takes the acting identity explicitly.
type Service struct {
	repo  Repository
	users UserDirectory
	clock func() time.Time
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users, clock: time.Now}
}

type CreateInput struct {
	CustomerID     string
	CustomerName   string
	PhoneNumber    string
	CallDate       time.Time
	DurationMins   int
	Category       CallCategory
	Priority       CallPriority
	AssignedUserID string
	Notes          string
}

// Create opens a new call ticket; admin only. Assignment is optional: an
// unassigned ticket is visible to every agent until an admin assigns it.
func (s *Service) Create(ctx context.Context, actor rbac.Actor, in CreateInput) (Call, error) {
	if d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCall}, rbac.OpCreate); !d.Allowed {
		return Call{}, d.Reason
	}

	now := s.clock().UTC()
	c := Call{
		ID:             uuid.NewString(),
		AdminID:        actor.ID,
		CustomerID:     in.CustomerID,
		CustomerName:   in.CustomerName,
		PhoneNumber:    in.PhoneNumber,
		CallDate:       in.CallDate,
		DurationMins:   in.DurationMins,
		Category:       in.Category,
		Priority:       in.Priority,
		Status:         StatusPending,
		AssignedUserID: in.AssignedUserID,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if c.CallDate.IsZero() {
		c.CallDate = now
	}
	if c.Category == "" {
		c.Category = CategoryOther
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}

	if err := c.Validate(); err != nil {
		return Call{}, err
	}
	if c.AssignedUserID != "" {
		if err := s.checkAssignee(ctx, c.AssignedUserID); err != nil {
			return Call{}, err
		}
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Call{}, err
	}
	return c, nil
}

// Detail pairs a call with its feedback, when one exists and the caller may
// see it.
type Detail struct {
	Call     Call      `json:"call"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// Get fetches one call with its feedback attached. Agents may read their
// own assignments and unassigned tickets; feedback is attached only when
// the caller is its submitter or an admin.
func (s *Service) Get(ctx context.Context, actor rbac.Actor, id string) (Detail, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCall, AssignedTo: c.AssignedUserID}, rbac.OpRead)
	if !d.Allowed {
		return Detail{}, d.Reason
	}

	out := Detail{Call: c}
	fb, err := s.repo.GetFeedbackByCall(ctx, id)
	switch {
	case errors.Is(err, ErrFeedbackNotFound):
		return out, nil
	case err != nil:
		return Detail{}, err
	}
	fd := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceFeedback, OwnerID: fb.UserID}, rbac.OpRead)
	if fd.Allowed {
		out.Feedback = &fb
	}
	return out, nil
}

// List returns calls matching the filter. Agent lists are silently narrowed
// to their own assignments plus unassigned tickets.
func (s *Service) List(ctx context.Context, actor rbac.Actor, f ListFilter) ([]Call, error) {
	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCall}, rbac.OpList)
	if !d.Allowed {
		return nil, d.Reason
	}
	if d.Scope == rbac.ScopeAssigned {
		f.AssignedUserID = actor.ID
		f.OpenToo = true
	}
	return s.repo.List(ctx, f)
}

type UpdateInput struct {
	CustomerID     string
	CustomerName   string
	PhoneNumber    string
	CallDate       time.Time
	DurationMins   int
	Category       CallCategory
	Priority       CallPriority
	Status         CallStatus
	AssignedUserID string
	Notes          string
}

// Update replaces every mutable field; admin only.
func (s *Service) Update(ctx context.Context, actor rbac.Actor, id string, in UpdateInput) (Call, error) {
	if d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCall}, rbac.OpUpdate); !d.Allowed {
		return Call{}, d.Reason
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Call{}, err
	}

	updated := current
	updated.CustomerID = in.CustomerID
	updated.CustomerName = in.CustomerName
	updated.PhoneNumber = in.PhoneNumber
	updated.CallDate = in.CallDate
	updated.DurationMins = in.DurationMins
	updated.Category = in.Category
	updated.Priority = in.Priority
	updated.Status = in.Status
	updated.AssignedUserID = in.AssignedUserID
	updated.Notes = in.Notes
	updated.UpdatedAt = s.clock().UTC()

	if err := updated.Validate(); err != nil {
		return Call{}, err
	}
	if updated.AssignedUserID != "" && updated.AssignedUserID != current.AssignedUserID {
		if err := s.checkAssignee(ctx, updated.AssignedUserID); err != nil {
			return Call{}, err
		}
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return Call{}, err
	}
	return updated, nil
}

// Assign moves a ticket to an agent (or back to the open pool with an empty
// id); admin only.
func (s *Service) Assign(ctx context.Context, actor rbac.Actor, id, userID string) (Call, error) {
	if d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCall}, rbac.OpReassign); !d.Allowed {
		return Call{}, d.Reason
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Call{}, err
	}
	if userID != "" {
		if err := s.checkAssignee(ctx, userID); err != nil {
			return Call{}, err
		}
	}
	c.AssignedUserID = userID
	c.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return Call{}, err
	}
	return c, nil
}

// UpdateStatus is the agent-facing status adjustment. Agents move their own
// tickets between pending and in-review; completed is reserved for the
// feedback path and admin updates.
func (s *Service) UpdateStatus(ctx context.Context, actor rbac.Actor, id string, status CallStatus) (Call, error) {
	if !ValidCallStatus(status) {
		return Call{}, validation.NewError("status")
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Call{}, err
	}
	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCall, AssignedTo: c.AssignedUserID}, rbac.OpUpdateStatus)
	if !d.Allowed {
		return Call{}, d.Reason
	}
	if actor.Role != rbac.RoleAdmin && status == StatusCompleted {
		return Call{}, rbac.ErrAccessDenied
	}

	c.Status = status
	c.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return Call{}, err
	}
	return c, nil
}

// Delete removes a call and its feedback atomically; admin only.
func (s *Service) Delete(ctx context.Context, actor rbac.Actor, id string) error {
	if d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceCall}, rbac.OpDelete); !d.Allowed {
		return d.Reason
	}
	return s.repo.DeleteCascade(ctx, id)
}

type FeedbackInput struct {
	CallID            string
	FeedbackText      string
	Rating            int
	RecordingURL      string
	RecordingPublicID string
}

// SubmitFeedback files the single closing report for a call. The insert and
// the pending -> completed promotion are one atomic write; a second
// submission for the same call fails with ErrDuplicateFeedback no matter
// who sends it.
func (s *Service) SubmitFeedback(ctx context.Context, actor rbac.Actor, in FeedbackInput) (Feedback, error) {
	c, err := s.repo.Get(ctx, in.CallID)
	if err != nil {
		return Feedback{}, err
	}
	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceFeedback, AssignedTo: c.AssignedUserID}, rbac.OpCreate)
	if !d.Allowed {
		return Feedback{}, d.Reason
	}

	fb := Feedback{
		ID:                uuid.NewString(),
		CallID:            in.CallID,
		UserID:            actor.ID,
		FeedbackText:      in.FeedbackText,
		Rating:            in.Rating,
		RecordingURL:      in.RecordingURL,
		RecordingPublicID: in.RecordingPublicID,
		SubmittedAt:       s.clock().UTC(),
	}
	if err := fb.Validate(); err != nil {
		return Feedback{}, err
	}
	if err := s.repo.SubmitFeedback(ctx, fb); err != nil {
		return Feedback{}, err
	}
	return fb, nil
}

// GetFeedback returns one feedback entry. Admins read anything; agents only
// their own submissions.
func (s *Service) GetFeedback(ctx context.Context, actor rbac.Actor, id string) (Feedback, error) {
	fb, err := s.repo.GetFeedback(ctx, id)
	if err != nil {
		return Feedback{}, err
	}
	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceFeedback, OwnerID: fb.UserID}, rbac.OpRead)
	if !d.Allowed {
		return Feedback{}, d.Reason
	}
	return fb, nil
}

// ListFeedback returns feedback entries. Agents see their own submissions
// only.
func (s *Service) ListFeedback(ctx context.Context, actor rbac.Actor, f FeedbackFilter) ([]Feedback, error) {
	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceFeedback}, rbac.OpList)
	if !d.Allowed {
		return nil, d.Reason
	}
	if d.Scope == rbac.ScopeAssigned {
		f.UserID = actor.ID
	}
	return s.repo.ListFeedback(ctx, f)
}

// UpdateFeedbackRecording replaces the recording attached to a feedback
// entry, for re-uploads after a failed or superseded one. Only the
// submitting agent may do this.
func (s *Service) UpdateFeedbackRecording(ctx context.Context, actor rbac.Actor, id, url, publicID string) (Feedback, error) {
	fb, err := s.repo.GetFeedback(ctx, id)
	if err != nil {
		return Feedback{}, err
	}
	d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceFeedback, OwnerID: fb.UserID}, rbac.OpUpdate)
	if !d.Allowed {
		return Feedback{}, d.Reason
	}
	if url == "" {
		return Feedback{}, validation.NewError("recordingUrl")
	}
	return s.repo.UpdateFeedbackRecording(ctx, id, url, publicID, s.clock().UTC())
}

func (s *Service) checkAssignee(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return validation.NewError("assignedUserId")
		}
		return err
	}
	if u.Role != rbac.RoleUser {
		return validation.NewError("assignedUserId")
	}
	return nil
}
