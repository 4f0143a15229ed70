package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicelog/internal/observability"
	"servicelog/internal/services"
	contextutils "servicelog/internal/utils"
)

// ReferenceHandler serves the reference-table lookups the form prefill uses.
type ReferenceHandler struct {
	reference *services.ReferenceService
	logger    *observability.Logger
}

// NewReferenceHandler creates a ReferenceHandler.
func NewReferenceHandler(reference *services.ReferenceService, logger *observability.Logger) *ReferenceHandler {
	return &ReferenceHandler{reference: reference, logger: logger}
}

// GetTechnicians handles GET /v1/reference/technicians
func (h *ReferenceHandler) GetTechnicians(c *gin.Context) {
	names, err := h.reference.TechnicianNames(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"technicians": names})
}

// GetCustomers handles GET /v1/reference/customers. With ?customer= it also
// returns the contact details and instruments for that customer.
func (h *ReferenceHandler) GetCustomers(c *gin.Context) {
	customer := c.Query("customer")
	if customer == "" {
		names, err := h.reference.CustomerNames(c.Request.Context())
		if err != nil {
			HandleAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"customers": names})
		return
	}

	contact, found, err := h.reference.CustomerContact(c.Request.Context(), customer)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	instruments, err := h.reference.InstrumentsForCustomer(c.Request.Context(), customer)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	// A miss is not an error here: the form falls back to manual entry.
	c.JSON(http.StatusOK, gin.H{
		"found":       found,
		"contact":     contact,
		"instruments": instruments,
	})
}

// GetInstruments handles GET /v1/reference/instruments?customer=&instrument=
func (h *ReferenceHandler) GetInstruments(c *gin.Context) {
	customer := c.Query("customer")
	if customer == "" {
		StandardizeHTTPError(c, http.StatusBadRequest, "Missing required query parameter", "customer is required")
		return
	}

	if instrument := c.Query("instrument"); instrument != "" {
		serials, err := h.reference.SerialNumbers(c.Request.Context(), customer, instrument)
		if err != nil {
			HandleAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"serial_numbers": serials})
		return
	}

	instruments, err := h.reference.InstrumentsForCustomer(c.Request.Context(), customer)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instruments": instruments})
}

// LookupSerial handles GET /v1/reference/serial/:serial. This is the direct
// lookup endpoint, so a miss answers 404; the form prefill path treats that
// as "enter details manually".
func (h *ReferenceHandler) LookupSerial(c *gin.Context) {
	serial := c.Param("serial")

	instrument, found, err := h.reference.LookupSerial(c.Request.Context(), serial)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	if !found {
		appErr := contextutils.NewAppError(contextutils.ErrorCodeSerialNotFound,
			contextutils.SeverityInfo, "Serial number not found", serial)
		StandardizeAppError(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"found":      true,
		"instrument": instrument,
	})
}
