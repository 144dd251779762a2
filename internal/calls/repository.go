package calls

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("call not found")
	ErrFeedbackNotFound  = errors.New("feedback not found")
	ErrDuplicateFeedback = errors.New("feedback already submitted for this call")
)

// ListFilter narrows call listings. Empty fields match everything.
// AssignedUserID has an extra convention: OpenToo widens an agent filter to
// include unassigned calls, which any agent may view.
type ListFilter struct {
	Status         CallStatus
	Category       CallCategory
	Priority       CallPriority
	AssignedUserID string
	OpenToo        bool
}

type FeedbackFilter struct {
	CallID string
	UserID string
}

// Repository persists calls and their feedback. SubmitFeedback is a compound
// atomic operation: it inserts the feedback only if none exists for the call
// yet, and promotes a pending call to completed in the same transaction.
type Repository interface {
	Create(ctx context.Context, c Call) error
	Get(ctx context.Context, id string) (Call, error)
	List(ctx context.Context, f ListFilter) ([]Call, error)
	Update(ctx context.Context, c Call) error
	DeleteCascade(ctx context.Context, id string) error

	SubmitFeedback(ctx context.Context, fb Feedback) error
	GetFeedback(ctx context.Context, id string) (Feedback, error)
	GetFeedbackByCall(ctx context.Context, callID string) (Feedback, error)
	ListFeedback(ctx context.Context, f FeedbackFilter) ([]Feedback, error)
	UpdateFeedbackRecording(ctx context.Context, id, url, publicID string, now time.Time) (Feedback, error)
}
