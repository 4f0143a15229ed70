// Package models defines the row types stored in the hosted table store and
// the derived values computed from them.
package models

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	contextutils "servicelog/internal/utils"
)

// Table names in the hosted store. The legacy lowercase "service_logs" table
// seen in older tooling is a migration artifact and is intentionally not
// referenced here.
const (
	TableServiceLog        = "Service_Log"
	TableServiceLogPending = "Service_Log_Pending"
	TableCustomers         = "Customers"
	TableInstruments       = "Instruments"
	TableTechnicians       = "Technicians"
)

// Status is the lifecycle state of a service call. It drives every
// aggregation bucket on the dashboard.
type Status string

// Service call statuses
const (
	StatusOpen         Status = "Open"
	StatusOnHold       Status = "On_Hold"
	StatusWaitingParts Status = "Waiting for Parts"
	StatusSolved       Status = "Solved"
)

// AllStatuses lists every valid status, in display order.
var AllStatuses = []Status{StatusOpen, StatusOnHold, StatusWaitingParts, StatusSolved}

// Unsolved reports whether a call in this status still needs attention.
func (s Status) Unsolved() bool {
	switch s {
	case StatusOpen, StatusOnHold, StatusWaitingParts:
		return true
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CallTypes are the categorical call_type values offered on the submission form.
var CallTypes = []string{"Installation", "Preventive Maintenance", "Breakdown", "Application", "Training", "Other"}

// WarrantyStatuses are the categorical warranty_status values.
var WarrantyStatuses = []string{"In Warranty", "AMC", "Free Service", "Charged Service"}

// ServiceCall is a row of the live Service_Log table.
type ServiceCall struct {
	CallID             string              `json:"call_id"`
	CustomerName       string              `json:"customer_name"`
	ContactPerson      *string             `json:"contact_person,omitempty"`
	InstrumentName     string              `json:"instrument_name"`
	SerialNumber       *string             `json:"serial_number,omitempty"`
	WarrantyStatus     string              `json:"warranty_status"`
	TechnicianName     string              `json:"technician_name"`
	DateLogged         openapi_types.Date  `json:"date_logged"`
	DateVisited        *openapi_types.Date `json:"date_visited,omitempty"`
	LastUpdated        Timestamp           `json:"last_updated"`
	ProblemDescription string              `json:"problem_description"`
	ActionTaken        *string             `json:"action_taken,omitempty"`
	SpareParts         *string             `json:"spare_parts,omitempty"`
	Status             Status              `json:"status"`
	CallType           string              `json:"call_type"`
	Remarks            *string             `json:"remarks,omitempty"`
}

// DaysOpen returns the whole calendar days between date_logged and now.
// Rows with a missing log date count as zero days open.
func (c *ServiceCall) DaysOpen(now time.Time) int {
	if c.DateLogged.IsZero() {
		return 0
	}
	return contextutils.DaysBetween(c.DateLogged.Time, now)
}

// ResolutionDays returns the whole calendar days between date_logged and
// last_updated. The second return is false when the call is not Solved or
// either timestamp is missing; negative values are returned as-is and left
// to the aggregation layer's outlier clamp.
func (c *ServiceCall) ResolutionDays() (int, bool) {
	if c.Status != StatusSolved || c.DateLogged.IsZero() || c.LastUpdated.IsZero() {
		return 0, false
	}
	return contextutils.DaysBetween(c.DateLogged.Time, c.LastUpdated.Time), true
}

// Pending review states for staged submissions.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// PendingServiceCall is a row of the Service_Log_Pending staging table. It is
// a submission awaiting admin approval; approval promotes it into Service_Log
// and marks the staging row reviewed (there is no delete path).
type PendingServiceCall struct {
	ServiceCall

	SubmittedVia string     `json:"submitted_via"`
	SubmittedAt  Timestamp  `json:"submitted_at"`
	ReviewStatus *string    `json:"review_status,omitempty"`
	ReviewedAt   *Timestamp `json:"reviewed_at,omitempty"`
}

// Reviewed reports whether the pending row was already approved or rejected.
func (p *PendingServiceCall) Reviewed() bool {
	return p.ReviewStatus != nil && *p.ReviewStatus != "" && *p.ReviewStatus != ReviewPending
}

// Customer is a row of the Customers reference table.
type Customer struct {
	CustomerName  string  `json:"customer_name"`
	ContactPerson *string `json:"contact_person,omitempty"`
	Phone         *string `json:"phone,omitempty"`
}

// Instrument is a row of the Instruments reference table.
type Instrument struct {
	InstrumentName string              `json:"instrument_name"`
	CustomerName   string              `json:"customer_name"`
	SerialNumber   *string             `json:"serial_number,omitempty"`
	WarrantyExpiry *openapi_types.Date `json:"warranty_expiry,omitempty"`
}

// Technician is a row of the Technicians reference table.
type Technician struct {
	TechnicianName string `json:"technician_name"`
}
