package customers

import (
	"regexp"
	"time"

	"callcenter-platform/internal/validation"
)

// Customer is a contact assigned to exactly one agent at a time.
//
// Status machine: pending -> contacted happens automatically when the
// assignee logs a successful call; completed is reachable through explicit
// admin updates only. No transition removes call history.
type Customer struct {
	ID           string         `json:"id" db:"id"`
	CustomerName string         `json:"customerName" db:"customer_name"`
	PhoneNumber  string         `json:"phoneNumber" db:"phone_number"`
	Email        string         `json:"email,omitempty" db:"email"`
	Address      string         `json:"address,omitempty" db:"address"`
	AssignedTo   string         `json:"assignedTo" db:"assigned_to"`
	Status       CustomerStatus `json:"status" db:"status"`
	Priority     Priority       `json:"priority" db:"priority"`
	Notes        string         `json:"notes,omitempty" db:"notes"`
	CreatedBy    string         `json:"createdBy" db:"created_by"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`
}

type CustomerStatus string

const (
	StatusPending   CustomerStatus = "pending"
	StatusContacted CustomerStatus = "contacted"
	StatusCompleted CustomerStatus = "completed"
)

func ValidCustomerStatus(s CustomerStatus) bool {
	switch s {
	case StatusPending, StatusContacted, StatusCompleted:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Permissive character class, not full E.164.
var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]+$`)

// Validate enforces field-level invariants at the write boundary. A failing
// write applies nothing.
func (c Customer) Validate() error {
	var fields []string
	if c.CustomerName == "" {
		fields = append(fields, "customerName")
	}
	if c.PhoneNumber == "" || !phonePattern.MatchString(c.PhoneNumber) {
		fields = append(fields, "phoneNumber")
	}
	if c.AssignedTo == "" {
		fields = append(fields, "assignedTo")
	}
	if !ValidCustomerStatus(c.Status) {
		fields = append(fields, "status")
	}
	if !ValidPriority(c.Priority) {
		fields = append(fields, "priority")
	}
	if len(fields) > 0 {
		return validation.NewError(fields...)
	}
	return nil
}

// CallRecord is an immutable log entry for one call attempt against a
// customer. Records are append-only: there is no update or delete path short
// of the parent customer's cascade.
type CallRecord struct {
	ID                string      `json:"id" db:"id"`
	CustomerID        string      `json:"customer" db:"customer_id"`
	UserID            string      `json:"user" db:"user_id"`
	CallDate          time.Time   `json:"callDate" db:"call_date"`
	DurationMinutes   int         `json:"duration" db:"duration_minutes"`
	RecordingURL      string      `json:"callRecording,omitempty" db:"recording_url"`
	RecordingPublicID string      `json:"recordingPublicId,omitempty" db:"recording_public_id"`
	CallStatus        CallOutcome `json:"callStatus" db:"call_status"`
	Feedback          string      `json:"feedback,omitempty" db:"feedback"`
	FollowUpRequired  bool        `json:"followUpRequired" db:"follow_up_required"`
	FollowUpDate      *time.Time  `json:"followUpDate,omitempty" db:"follow_up_date"`
	CreatedAt         time.Time   `json:"createdAt" db:"created_at"`
}

type CallOutcome string

const (
	OutcomeSuccessful CallOutcome = "successful"
	OutcomeNoAnswer   CallOutcome = "no-answer"
	OutcomeBusy       CallOutcome = "busy"
	OutcomeVoicemail  CallOutcome = "voicemail"
)

func ValidCallOutcome(o CallOutcome) bool {
	switch o {
	case OutcomeSuccessful, OutcomeNoAnswer, OutcomeBusy, OutcomeVoicemail:
		return true
	default:
		return false
	}
}

func (r CallRecord) Validate() error {
	var fields []string
	if r.CustomerID == "" {
		fields = append(fields, "customer")
	}
	if r.UserID == "" {
		fields = append(fields, "user")
	}
	if !ValidCallOutcome(r.CallStatus) {
		fields = append(fields, "callStatus")
	}
	if r.DurationMinutes < 0 {
		fields = append(fields, "duration")
	}
	if r.FollowUpRequired && r.FollowUpDate == nil {
		fields = append(fields, "followUpDate")
	}
	if len(fields) > 0 {
		return validation.NewError(fields...)
	}
	return nil
}
