package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"callcenter-platform/internal/calls"
	"callcenter-platform/internal/customers"
	"callcenter-platform/internal/validation"

	"github.com/gin-gonic/gin"
)

/* ===================== CUSTOMERS ===================== */

func (h Handlers) AssignedCustomers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	// The service narrows the filter to the actor regardless of what is
	// asked for; only status/priority filtering is honored here.
	list, err := h.Customers.List(c.Request.Context(), actor, customers.ListFilter{
		Status:   customers.CustomerStatus(c.Query("status")),
		Priority: customers.Priority(c.Query("priority")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h Handlers) UpdateCustomerStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	updated, err := h.Customers.UpdateStatus(c.Request.Context(), actor, c.Param("id"), customers.CustomerStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, updated)
}

/* ===================== CALL RECORDS ===================== */

type callRecordRequest struct {
	CustomerID       string `json:"customerId" form:"customerId"`
	CallDate         string `json:"callDate" form:"callDate"`
	Duration         string `json:"duration" form:"duration"`
	CallStatus       string `json:"callStatus" form:"callStatus"`
	Feedback         string `json:"feedback" form:"feedback"`
	FollowUpRequired string `json:"followUpRequired" form:"followUpRequired"`
	FollowUpDate     string `json:"followUpDate" form:"followUpDate"`
}

// LogCallRecord files a call attempt against an assigned customer. The body
// is a multipart form (to carry the optional recording) or plain JSON with
// the same field names.
func (h Handlers) LogCallRecord(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req callRecordRequest
	if err := bindFormOrJSON(c, &req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	in := customers.RecordInput{
		CustomerID: req.CustomerID,
		CallStatus: customers.CallOutcome(req.CallStatus),
		Feedback:   req.Feedback,
	}

	var fields []string
	if req.Duration != "" {
		n, err := strconv.Atoi(req.Duration)
		if err != nil {
			fields = append(fields, "duration")
		}
		in.DurationMinutes = n
	}
	if req.CallDate != "" {
		ts, err := time.Parse(time.RFC3339, req.CallDate)
		if err != nil {
			fields = append(fields, "callDate")
		}
		in.CallDate = ts
	}
	if req.FollowUpRequired != "" {
		b, err := strconv.ParseBool(req.FollowUpRequired)
		if err != nil {
			fields = append(fields, "followUpRequired")
		}
		in.FollowUpRequired = b
	}
	if req.FollowUpDate != "" {
		ts, err := time.Parse(time.RFC3339, req.FollowUpDate)
		if err != nil {
			fields = append(fields, "followUpDate")
		} else {
			in.FollowUpDate = &ts
		}
	}
	if len(fields) > 0 {
		respondError(c, validation.NewError(fields...))
		return
	}

	// Local validation and upload happen before the database write; a
	// rejected file never produces a half-written record.
	res, hasFile, err := h.maybeUploadRecording(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if hasFile {
		in.RecordingURL = res.URL
		in.RecordingPublicID = res.PublicID
	}

	rec, err := h.Customers.LogCall(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, rec)
}

func (h Handlers) MyCallRecords(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	list, err := h.Customers.ListRecords(c.Request.Context(), actor, customers.RecordFilter{
		CustomerID: c.Query("customerId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

/* ===================== CALLS & FEEDBACK ===================== */

func (h Handlers) UpdateCallStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	updated, err := h.Calls.UpdateStatus(c.Request.Context(), actor, c.Param("id"), calls.CallStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, updated)
}

type feedbackRequest struct {
	CallID       string `json:"callId" form:"callId"`
	FeedbackText string `json:"feedbackText" form:"feedbackText"`
	Rating       string `json:"rating" form:"rating"`
}

// SubmitFeedback files the closing report for a call, optionally with a
// recording. The recording is uploaded first; if the feedback is then
// rejected (duplicate, validation) the caller may re-attach it via the
// recording re-upload endpoint.
func (h Handlers) SubmitFeedback(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req feedbackRequest
	if err := bindFormOrJSON(c, &req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	rating := 0
	if req.Rating != "" {
		n, err := strconv.Atoi(req.Rating)
		if err != nil {
			respondError(c, validation.NewError("rating"))
			return
		}
		rating = n
	}

	res, hasFile, err := h.maybeUploadRecording(c)
	if err != nil {
		respondError(c, err)
		return
	}

	in := calls.FeedbackInput{
		CallID:       req.CallID,
		FeedbackText: req.FeedbackText,
		Rating:       rating,
	}
	if hasFile {
		in.RecordingURL = res.URL
		in.RecordingPublicID = res.PublicID
	}

	fb, err := h.Calls.SubmitFeedback(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, fb)
}

func (h Handlers) MyFeedback(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	list, err := h.Calls.ListFeedback(c.Request.Context(), actor, calls.FeedbackFilter{
		CallID: c.Query("callId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

// UpdateFeedbackRecording replaces the recording on an existing feedback
// entry. The file is mandatory here.
func (h Handlers) UpdateFeedbackRecording(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	res, hasFile, err := h.maybeUploadRecording(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !hasFile {
		respondError(c, validation.NewError("recording"))
		return
	}

	fb, err := h.Calls.UpdateFeedbackRecording(c.Request.Context(), actor, c.Param("id"), res.URL, res.PublicID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, fb)
}

func (h Handlers) AgentStats(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	stats, err := h.Reports.AgentStats(c.Request.Context(), actor, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// bindFormOrJSON fills dst from a multipart/urlencoded form or a JSON body,
// depending on the request content type.
func bindFormOrJSON(c *gin.Context, dst any) error {
	ct := c.ContentType()
	if strings.HasPrefix(ct, "multipart/") || ct == "application/x-www-form-urlencoded" {
		return c.ShouldBind(dst)
	}
	return c.ShouldBindJSON(dst)
}
