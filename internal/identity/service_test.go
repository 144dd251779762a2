package identity

import (
	"context"
	"errors"
	"testing"

	"callcenter-platform/internal/auth"
	"callcenter-platform/internal/rbac"
	"callcenter-platform/internal/validation"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	u, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != rbac.RoleUser {
		t.Fatalf("expected default role user, got %s", u.Role)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.PasswordHash == "hunter22" || u.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	got, err := svc.Login(context.Background(), "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected same user back")
	}
}

func TestLoginFailsClosed(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret99"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(context.Background(), "bob@example.com", "wrong"); !errors.Is(err, auth.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "secret99"); !errors.Is(err, auth.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for unknown email, got %v", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	in := RegisterInput{Username: "carol", Email: "carol@example.com", Password: "secret99"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// Same username, different email still collides.
	in.Email = "carol2@example.com"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on username, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	_, err := svc.Register(context.Background(), RegisterInput{Username: "", Email: "not-an-email", Password: "x"})
	v, ok := validation.AsError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(v.Fields) != 3 {
		t.Fatalf("expected username, email, password flagged, got %v", v.Fields)
	}

	_, err = svc.Register(context.Background(), RegisterInput{Username: "dave", Email: "dave@example.com", Password: "secret99", Role: "superuser"})
	if _, ok := validation.AsError(err); !ok {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	agent := rbac.Actor{ID: "u1", Role: rbac.RoleUser}
	admin := rbac.Actor{ID: "a1", Role: rbac.RoleAdmin}

	if _, err := svc.CreateUser(context.Background(), agent, RegisterInput{Username: "eve", Email: "eve@example.com", Password: "secret99"}); !errors.Is(err, rbac.ErrAccessDenied) {
		t.Fatalf("expected access denied for agent, got %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), admin, RegisterInput{Username: "eve", Email: "eve@example.com", Password: "secret99", Role: "admin"}); err != nil {
		t.Fatalf("expected admin create to succeed, got %v", err)
	}
	if _, err := svc.List(context.Background(), agent); !errors.Is(err, rbac.ErrAccessDenied) {
		t.Fatalf("expected list denied for agent, got %v", err)
	}
}

func TestLookupRole(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	u, err := svc.Register(context.Background(), RegisterInput{Username: "frank", Email: "frank@example.com", Password: "secret99", Role: "admin"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	role, err := svc.LookupRole(context.Background(), u.ID)
	if err != nil || role != "admin" {
		t.Fatalf("expected admin role, got %q/%v", role, err)
	}
	if _, err := svc.LookupRole(context.Background(), "missing"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
