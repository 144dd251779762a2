package identity

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"callcenter-platform/internal/auth"
	"callcenter-platform/internal/rbac"
	"callcenter-platform/internal/validation"

	"github.com/google/uuid"
)

// Permissive shape check only; deliverability is not this system's problem.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service owns account lifecycle: self registration, credential login and
// admin-driven user management.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

func (in RegisterInput) validate() error {
	var fields []string
	if strings.TrimSpace(in.Username) == "" {
		fields = append(fields, "username")
	}
	if !emailPattern.MatchString(strings.TrimSpace(in.Email)) {
		fields = append(fields, "email")
	}
	if len(in.Password) < 6 {
		fields = append(fields, "password")
	}
	if in.Role != "" {
		if _, err := rbac.ParseRole(in.Role); err != nil {
			fields = append(fields, "role")
		}
	}
	if len(fields) > 0 {
		return validation.NewError(fields...)
	}
	return nil
}

// Register creates an account from the public registration endpoint.
// A missing role defaults to agent.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if err := in.validate(); err != nil {
		return User{}, err
	}

	role := rbac.RoleUser
	if in.Role != "" {
		role, _ = rbac.ParseRole(in.Role)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, validation.NewError("password")
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Login verifies credentials and returns the account. Unknown email and bad
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, auth.ErrBadCredentials
		}
		return User{}, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return User{}, auth.ErrBadCredentials
	}
	return u, nil
}

// CreateUser is the admin path for provisioning accounts.
func (s *Service) CreateUser(ctx context.Context, actor rbac.Actor, in RegisterInput) (User, error) {
	if d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceUser}, rbac.OpCreate); !d.Allowed {
		return User{}, d.Reason
	}
	return s.Register(ctx, in)
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all accounts; admin only.
func (s *Service) List(ctx context.Context, actor rbac.Actor) ([]User, error) {
	if d := rbac.Decide(actor, rbac.Resource{Kind: rbac.ResourceUser}, rbac.OpList); !d.Allowed {
		return nil, d.Reason
	}
	return s.repo.List(ctx)
}

// LookupRole adapts the service to auth.IdentityLookup: tokens for deleted
// users stop working the moment the row is gone.
func (s *Service) LookupRole(ctx context.Context, userID string) (string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", auth.ErrUserNotFound
		}
		return "", err
	}
	return string(u.Role), nil
}
