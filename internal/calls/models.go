package calls

import (
	"strings"
	"time"

	"callcenter-platform/internal/validation"
)

// Call is an admin-created work ticket describing an outreach task. It may
// be assigned to an agent up front or left open for any agent to pick up
// read-only until an admin assigns it.
//
// Status machine: pending -> completed happens automatically when the first
// feedback for the call is accepted; in-review is an admin-set holding state.
type Call struct {
	ID             string       `json:"id" db:"id"`
	AdminID        string       `json:"adminId" db:"admin_id"`
	CustomerID     string       `json:"customerId,omitempty" db:"customer_id"`
	CustomerName   string       `json:"customerName" db:"customer_name"`
	PhoneNumber    string       `json:"phoneNumber" db:"phone_number"`
	CallDate       time.Time    `json:"callDate" db:"call_date"`
	DurationMins   int          `json:"duration" db:"duration_minutes"`
	Category       CallCategory `json:"category" db:"category"`
	Priority       CallPriority `json:"priority" db:"priority"`
	Status         CallStatus   `json:"status" db:"status"`
	AssignedUserID string       `json:"assignedUserId,omitempty" db:"assigned_user_id"`
	Notes          string       `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

type CallCategory string

const (
	CategorySupport   CallCategory = "Support"
	CategorySales     CallCategory = "Sales"
	CategoryComplaint CallCategory = "Complaint"
	CategoryInquiry   CallCategory = "Inquiry"
	CategoryFollowUp  CallCategory = "Follow-up"
	CategoryOther     CallCategory = "Other"
)

func ValidCategory(c CallCategory) bool {
	switch c {
	case CategorySupport, CategorySales, CategoryComplaint, CategoryInquiry, CategoryFollowUp, CategoryOther:
		return true
	default:
		return false
	}
}

type CallPriority string

const (
	PriorityLow    CallPriority = "Low"
	PriorityMedium CallPriority = "Medium"
	PriorityHigh   CallPriority = "High"
	PriorityUrgent CallPriority = "Urgent"
)

func ValidCallPriority(p CallPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

type CallStatus string

const (
	StatusPending   CallStatus = "pending"
	StatusCompleted CallStatus = "completed"
	StatusInReview  CallStatus = "in-review"
)

func ValidCallStatus(s CallStatus) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusInReview:
		return true
	default:
		return false
	}
}

func (c Call) Validate() error {
	var fields []string
	if c.AdminID == "" {
		fields = append(fields, "adminId")
	}
	if c.CustomerName == "" {
		fields = append(fields, "customerName")
	}
	if c.PhoneNumber == "" {
		fields = append(fields, "phoneNumber")
	}
	if c.DurationMins < 0 {
		fields = append(fields, "duration")
	}
	if !ValidCategory(c.Category) {
		fields = append(fields, "category")
	}
	if !ValidCallPriority(c.Priority) {
		fields = append(fields, "priority")
	}
	if !ValidCallStatus(c.Status) {
		fields = append(fields, "status")
	}
	if len(fields) > 0 {
		return validation.NewError(fields...)
	}
	return nil
}

// minFeedbackLen is measured on the trimmed text.
const minFeedbackLen = 10

// Feedback is the single closing report for a call. At most one feedback
// exists per call; the uniqueness is enforced by the repository, not here.
type Feedback struct {
	ID                string     `json:"id" db:"id"`
	CallID            string     `json:"callId" db:"call_id"`
	UserID            string     `json:"userId" db:"user_id"`
	FeedbackText      string     `json:"feedbackText" db:"feedback_text"`
	Rating            int        `json:"rating" db:"rating"`
	RecordingURL      string     `json:"recordingUrl,omitempty" db:"recording_url"`
	RecordingPublicID string     `json:"recordingPublicId,omitempty" db:"recording_public_id"`
	SubmittedAt       time.Time  `json:"submittedAt" db:"submitted_at"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

func (f Feedback) Validate() error {
	var fields []string
	if f.CallID == "" {
		fields = append(fields, "callId")
	}
	if f.UserID == "" {
		fields = append(fields, "userId")
	}
	if len(strings.TrimSpace(f.FeedbackText)) < minFeedbackLen {
		fields = append(fields, "feedbackText")
	}
	if f.Rating < 1 || f.Rating > 5 {
		fields = append(fields, "rating")
	}
	if len(fields) > 0 {
		return validation.NewError(fields...)
	}
	return nil
}
