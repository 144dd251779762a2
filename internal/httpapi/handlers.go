package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"callcenter-platform/internal/auth"
	"callcenter-platform/internal/audit"
	"callcenter-platform/internal/calls"
	"callcenter-platform/internal/customers"
	"callcenter-platform/internal/identity"
	"callcenter-platform/internal/rbac"
	"callcenter-platform/internal/recordings"
	"callcenter-platform/internal/reporting"

	"github.com/gin-gonic/gin"
)

// LoginLimiter gates login attempts per client IP. A nil limiter disables
// throttling (tests). Errors are treated as "allowed" so a Redis outage
// never locks everyone out.
type LoginLimiter func(ctx context.Context, clientIP string) (bool, error)

// Handlers groups HTTP handlers for dependency injection. Keep these thin:
// parse input, call internal services, map errors.
type Handlers struct {
	Auth       *auth.Manager
	Users      *identity.Service
	Customers  *customers.Service
	Calls      *calls.Service
	Recordings recordings.Store
	Reports    *reporting.Service
	Audit      *audit.Service
	LoginLimit LoginLimiter
}

func (h Handlers) actor(c *gin.Context) (rbac.Actor, bool) {
	actor, err := rbac.ActorFromContext(c)
	if err != nil {
		respondFail(c, http.StatusUnauthorized, "authentication required")
		return rbac.Actor{}, false
	}
	return actor, true
}

func (h Handlers) audited(c *gin.Context, actor rbac.Actor, e audit.Event) {
	if h.Audit == nil {
		return
	}
	e.ActorUserID = actor.ID
	e.ActorRole = string(actor.Role)
	e.IPAddress = c.ClientIP()
	h.Audit.Record(c.Request.Context(), e)
}

/* ===================== AUTH ===================== */

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type authResponse struct {
	User   identity.User  `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

func (h Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	u, err := h.Users.Register(c.Request.Context(), identity.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, authResponse{User: u, Tokens: pair})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h Handlers) Login(c *gin.Context) {
	if h.LoginLimit != nil {
		allowed, err := h.LoginLimit(c.Request.Context(), c.ClientIP())
		if err == nil && !allowed {
			respondFail(c, http.StatusTooManyRequests, "too many login attempts, try again later")
			return
		}
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	u, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, authResponse{User: u, Tokens: pair})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		respondFail(c, http.StatusBadRequest, "refreshToken required")
		return
	}

	userID, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		respondFail(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	// The account must still exist to mint new tokens.
	if _, err := h.Users.GetByID(c.Request.Context(), userID); err != nil {
		respondFail(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pair)
}

func (h Handlers) Me(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	u, err := h.Users.GetByID(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, u)
}
