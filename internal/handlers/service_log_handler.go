package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"servicelog/internal/observability"
	"servicelog/internal/services"
	contextutils "servicelog/internal/utils"
)

// ServiceLogHandler serves the submission and update flows of the technician
// form plus the unsolved-call list it edits from.
type ServiceLogHandler struct {
	logs   *services.ServiceLogService
	logger *observability.Logger
}

// NewServiceLogHandler creates a ServiceLogHandler.
func NewServiceLogHandler(logs *services.ServiceLogService, logger *observability.Logger) *ServiceLogHandler {
	return &ServiceLogHandler{logs: logs, logger: logger}
}

// Submit handles POST /v1/service-logs. A valid submission lands in the
// staging table and answers 201 with pending=true; it is not live until an
// admin approves it.
func (h *ServiceLogHandler) Submit(c *gin.Context) {
	var req services.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		StandardizeHTTPError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	pending, err := h.logs.Submit(c.Request.Context(), &req, time.Now())
	if err != nil {
		if contextutils.GetErrorCode(err) == contextutils.ErrorCodeValidationFailed {
			var appErr *contextutils.AppError
			problems := []string{}
			if contextutils.AsError(err, &appErr) {
				problems = strings.Split(appErr.Details, "; ")
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"code":     string(contextutils.ErrorCodeValidationFailed),
				"problems": problems,
			})
			return
		}
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"call_id": pending.CallID,
		"pending": true,
	})
}

// Update handles PATCH /v1/service-logs/:call_id
func (h *ServiceLogHandler) Update(c *gin.Context) {
	callID := c.Param("call_id")

	var req services.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		StandardizeHTTPError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := h.logs.Update(c.Request.Context(), callID, &req, time.Now()); err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_id": callID, "updated": true})
}

// Unsolved handles GET /v1/service-logs/unsolved with optional customer,
// technician, and call_id query filters.
func (h *ServiceLogHandler) Unsolved(c *gin.Context) {
	filter := services.UnsolvedFilter{
		Customer:     c.Query("customer"),
		Technician:   c.Query("technician"),
		CallIDPrefix: c.Query("call_id"),
	}

	calls, err := h.logs.Unsolved(c.Request.Context(), filter)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": calls})
}
