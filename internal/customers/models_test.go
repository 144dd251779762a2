package customers

import (
	"testing"
	"time"

	"callcenter-platform/internal/validation"
)

func validCustomer() Customer {
	return Customer{
		ID:           "c1",
		CustomerName: "Acme Corp",
		PhoneNumber:  "+1-555-0100",
		AssignedTo:   "u1",
		Status:       StatusPending,
		Priority:     PriorityMedium,
		CreatedBy:    "a1",
	}
}

func TestCustomerValidate(t *testing.T) {
	if err := validCustomer().Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	c := validCustomer()
	c.PhoneNumber = "call me maybe"
	err := c.Validate()
	v, ok := validation.AsError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(v.Fields) != 1 || v.Fields[0] != "phoneNumber" {
		t.Fatalf("expected phoneNumber flagged, got %v", v.Fields)
	}

	c = validCustomer()
	c.CustomerName = ""
	c.Priority = "critical"
	err = c.Validate()
	v, _ = validation.AsError(err)
	if v == nil || len(v.Fields) != 2 {
		t.Fatalf("expected two fields flagged, got %v", err)
	}
}

func TestPhonePatternIsPermissive(t *testing.T) {
	for _, ok := range []string{"+1-555-0100", "(020) 7946 0958", "555 0100"} {
		c := validCustomer()
		c.PhoneNumber = ok
		if err := c.Validate(); err != nil {
			t.Fatalf("expected %q accepted, got %v", ok, err)
		}
	}
	for _, bad := range []string{"", "555-CALL", "foo@bar"} {
		c := validCustomer()
		c.PhoneNumber = bad
		if err := c.Validate(); err == nil {
			t.Fatalf("expected %q rejected", bad)
		}
	}
}

func TestCallRecordValidate(t *testing.T) {
	rec := CallRecord{ID: "r1", CustomerID: "c1", UserID: "u1", CallStatus: OutcomeSuccessful, CallDate: time.Now()}
	if err := rec.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	rec.DurationMinutes = -1
	if err := rec.Validate(); err == nil {
		t.Fatalf("expected negative duration rejected")
	}

	rec = CallRecord{ID: "r1", CustomerID: "c1", UserID: "u1", CallStatus: "left-message"}
	err := rec.Validate()
	v, ok := validation.AsError(err)
	if !ok || v.Fields[0] != "callStatus" {
		t.Fatalf("expected callStatus flagged, got %v", err)
	}

	rec = CallRecord{ID: "r1", CustomerID: "c1", UserID: "u1", CallStatus: OutcomeBusy, FollowUpRequired: true}
	if err := rec.Validate(); err == nil {
		t.Fatalf("expected follow-up without date rejected")
	}
}
