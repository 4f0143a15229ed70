package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"servicelog/internal/observability"
	"servicelog/internal/services"
)

// AdminHandler serves the approval queue. Submissions from the form stage
// into Service_Log_Pending and only become live through these endpoints.
type AdminHandler struct {
	logs   *services.ServiceLogService
	logger *observability.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(logs *services.ServiceLogService, logger *observability.Logger) *AdminHandler {
	return &AdminHandler{logs: logs, logger: logger}
}

// ListPending handles GET /v1/admin/pending. By default only unreviewed rows
// are returned; ?all=true includes already-reviewed history.
func (h *AdminHandler) ListPending(c *gin.Context) {
	includeReviewed := c.Query("all") == "true"

	pending, err := h.logs.Pending(c.Request.Context(), !includeReviewed)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending, "count": len(pending)})
}

// Approve handles POST /v1/admin/pending/:call_id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	callID := c.Param("call_id")

	if err := h.logs.Approve(c.Request.Context(), callID, time.Now()); err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_id": callID, "review_status": "approved"})
}

// Reject handles POST /v1/admin/pending/:call_id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	callID := c.Param("call_id")

	if err := h.logs.Reject(c.Request.Context(), callID, time.Now()); err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_id": callID, "review_status": "rejected"})
}
