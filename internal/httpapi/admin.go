package httpapi

import (
	"net/http"
	"time"

	"callcenter-platform/internal/audit"
	"callcenter-platform/internal/calls"
	"callcenter-platform/internal/customers"
	"callcenter-platform/internal/identity"

	"github.com/gin-gonic/gin"
)

/* ===================== CUSTOMERS ===================== */

type customerRequest struct {
	CustomerName string `json:"customerName"`
	PhoneNumber  string `json:"phoneNumber"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	AssignedTo   string `json:"assignedTo"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	Notes        string `json:"notes"`
}

func (h Handlers) CreateCustomer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	created, err := h.Customers.Create(c.Request.Context(), actor, customers.CreateInput{
		CustomerName: req.CustomerName,
		PhoneNumber:  req.PhoneNumber,
		Email:        req.Email,
		Address:      req.Address,
		AssignedTo:   req.AssignedTo,
		Priority:     customers.Priority(req.Priority),
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audited(c, actor, audit.Event{Type: audit.EventCustomerCreated, CustomerID: created.ID})
	respondOK(c, http.StatusCreated, created)
}

func (h Handlers) ListCustomers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	list, err := h.Customers.List(c.Request.Context(), actor, customers.ListFilter{
		Status:     customers.CustomerStatus(c.Query("status")),
		Priority:   customers.Priority(c.Query("priority")),
		AssignedTo: c.Query("assignedTo"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (h Handlers) GetCustomer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	cust, err := h.Customers.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cust)
}

func (h Handlers) UpdateCustomer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	id := c.Param("id")
	before, err := h.Customers.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.Customers.Update(c.Request.Context(), actor, id, customers.UpdateInput{
		CustomerName: req.CustomerName,
		PhoneNumber:  req.PhoneNumber,
		Email:        req.Email,
		Address:      req.Address,
		AssignedTo:   req.AssignedTo,
		Status:       customers.CustomerStatus(req.Status),
		Priority:     customers.Priority(req.Priority),
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if updated.AssignedTo != before.AssignedTo {
		h.audited(c, actor, audit.Event{
			Type:         audit.EventCustomerReassigned,
			CustomerID:   id,
			TargetUserID: updated.AssignedTo,
		})
	}
	respondOK(c, http.StatusOK, updated)
}

func (h Handlers) DeleteCustomer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.Customers.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	h.audited(c, actor, audit.Event{Type: audit.EventCustomerDeleted, CustomerID: id})
	respondMessage(c, http.StatusOK, "customer and call history deleted")
}

func (h Handlers) ListCallRecords(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	list, err := h.Customers.ListRecords(c.Request.Context(), actor, customers.RecordFilter{
		CustomerID: c.Query("customerId"),
		UserID:     c.Query("userId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

/* ===================== CALLS ===================== */

type callRequest struct {
	CustomerID     string    `json:"customerId"`
	CustomerName   string    `json:"customerName"`
	PhoneNumber    string    `json:"phoneNumber"`
	CallDate       time.Time `json:"callDate"`
	Duration       int       `json:"duration"`
	Category       string    `json:"category"`
	Priority       string    `json:"priority"`
	Status         string    `json:"status"`
	AssignedUserID string    `json:"assignedUserId"`
	Notes          string    `json:"notes"`
}

func (h Handlers) CreateCall(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req callRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	created, err := h.Calls.Create(c.Request.Context(), actor, calls.CreateInput{
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		PhoneNumber:    req.PhoneNumber,
		CallDate:       req.CallDate,
		DurationMins:   req.Duration,
		Category:       calls.CallCategory(req.Category),
		Priority:       calls.CallPriority(req.Priority),
		AssignedUserID: req.AssignedUserID,
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audited(c, actor, audit.Event{
		Type:         audit.EventCallCreated,
		CallID:       created.ID,
		TargetUserID: created.AssignedUserID,
	})
	respondOK(c, http.StatusCreated, created)
}

func (h Handlers) ListCalls(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	list, err := h.Calls.List(c.Request.Context(), actor, calls.ListFilter{
		Status:         calls.CallStatus(c.Query("status")),
		Category:       calls.CallCategory(c.Query("category")),
		Priority:       calls.CallPriority(c.Query("priority")),
		AssignedUserID: c.Query("assignedUserId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (h Handlers) GetCall(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	detail, err := h.Calls.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, detail)
}

func (h Handlers) UpdateCall(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req callRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	updated, err := h.Calls.Update(c.Request.Context(), actor, c.Param("id"), calls.UpdateInput{
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		PhoneNumber:    req.PhoneNumber,
		CallDate:       req.CallDate,
		DurationMins:   req.Duration,
		Category:       calls.CallCategory(req.Category),
		Priority:       calls.CallPriority(req.Priority),
		Status:         calls.CallStatus(req.Status),
		AssignedUserID: req.AssignedUserID,
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, updated)
}

type assignRequest struct {
	AssignedUserID string `json:"assignedUserId"`
}

func (h Handlers) AssignCall(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	updated, err := h.Calls.Assign(c.Request.Context(), actor, c.Param("id"), req.AssignedUserID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audited(c, actor, audit.Event{
		Type:         audit.EventCallReassigned,
		CallID:       updated.ID,
		TargetUserID: updated.AssignedUserID,
	})
	respondOK(c, http.StatusOK, updated)
}

func (h Handlers) DeleteCall(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.Calls.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	h.audited(c, actor, audit.Event{Type: audit.EventCallDeleted, CallID: id})
	respondMessage(c, http.StatusOK, "call and feedback deleted")
}

func (h Handlers) ListFeedback(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	list, err := h.Calls.ListFeedback(c.Request.Context(), actor, calls.FeedbackFilter{
		CallID: c.Query("callId"),
		UserID: c.Query("userId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

/* ===================== USERS & STATS ===================== */

func (h Handlers) CreateUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	u, err := h.Users.CreateUser(c.Request.Context(), actor, identity.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audited(c, actor, audit.Event{Type: audit.EventUserCreated, TargetUserID: u.ID})
	respondOK(c, http.StatusCreated, u)
}

func (h Handlers) ListUsers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	list, err := h.Users.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (h Handlers) AdminStats(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	stats, err := h.Reports.AdminStats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
