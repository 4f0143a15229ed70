package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.opentelemetry.io/otel/attribute"

	"servicelog/internal/models"
	"servicelog/internal/observability"
	contextutils "servicelog/internal/utils"
)

// SubmittedViaMobileForm marks rows staged from the technician form.
const SubmittedViaMobileForm = "mobile_form"

// ServiceLogService owns the write side: staged submissions, updates to live
// calls, and the admin approval flow. Writes invalidate the table cache so
// the next dashboard read sees them.
type ServiceLogService struct {
	data     *DataService
	logger   *observability.Logger
	validate *validator.Validate
}

// NewServiceLogService creates a ServiceLogService.
func NewServiceLogService(data *DataService, logger *observability.Logger) *ServiceLogService {
	return &ServiceLogService{
		data:     data,
		logger:   logger,
		validate: validator.New(),
	}
}

// SubmissionRequest is a new call from the technician form. Every field a
// technician must fill carries a validation tag; violations are collected
// into one list so the form can show them all at once.
type SubmissionRequest struct {
	CustomerName       string              `json:"customer_name" validate:"required"`
	ContactPerson      *string             `json:"contact_person,omitempty"`
	InstrumentName     string              `json:"instrument_name" validate:"required"`
	SerialNumber       *string             `json:"serial_number,omitempty"`
	WarrantyStatus     string              `json:"warranty_status" validate:"required"`
	TechnicianName     string              `json:"technician_name" validate:"required"`
	DateVisited        *openapi_types.Date `json:"date_visited,omitempty"`
	ProblemDescription string              `json:"problem_description" validate:"required"`
	ActionTaken        *string             `json:"action_taken,omitempty"`
	SpareParts         *string             `json:"spare_parts,omitempty"`
	Status             models.Status       `json:"status" validate:"required"`
	CallType           string              `json:"call_type" validate:"required"`
	Remarks            *string             `json:"remarks,omitempty"`
}

// fieldLabels maps struct field names to the store column names used in
// validation messages.
var fieldLabels = map[string]string{
	"CustomerName":       "customer_name",
	"InstrumentName":     "instrument_name",
	"WarrantyStatus":     "warranty_status",
	"TechnicianName":     "technician_name",
	"ProblemDescription": "problem_description",
	"ActionTaken":        "action_taken",
	"Status":             "status",
	"CallType":           "call_type",
}

// ValidateSubmission checks a submission and returns every violation, not
// just the first. An empty slice means the submission is acceptable.
func (s *ServiceLogService) ValidateSubmission(req *SubmissionRequest) []string {
	var problems []string

	if err := s.validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				label := fieldLabels[ve.Field()]
				if label == "" {
					label = ve.Field()
				}
				switch ve.Tag() {
				case "required":
					problems = append(problems, fmt.Sprintf("%s is required", label))
				default:
					problems = append(problems, fmt.Sprintf("%s is invalid", label))
				}
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	if req.Status != "" && !req.Status.Valid() {
		problems = append(problems, fmt.Sprintf("status must be one of %v", models.AllStatuses))
	}
	return problems
}

// Submit validates a new call and stages it into Service_Log_Pending. No
// write happens unless the whole submission is valid.
func (s *ServiceLogService) Submit(ctx context.Context, req *SubmissionRequest, now time.Time) (*models.PendingServiceCall, error) {
	ctx, span := observability.TraceFunction(ctx, "service_log", "submit")
	defer observability.FinishSpan(span, nil)

	if problems := s.ValidateSubmission(req); len(problems) > 0 {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeValidationFailed,
			contextutils.SeverityWarn, "submission validation failed",
			strings.Join(problems, "; "))
	}

	reviewStatus := models.ReviewPending
	pending := &models.PendingServiceCall{
		ServiceCall: models.ServiceCall{
			CallID:             uuid.NewString(),
			CustomerName:       req.CustomerName,
			ContactPerson:      req.ContactPerson,
			InstrumentName:     req.InstrumentName,
			SerialNumber:       req.SerialNumber,
			WarrantyStatus:     req.WarrantyStatus,
			TechnicianName:     req.TechnicianName,
			DateLogged:         openapi_types.Date{Time: contextutils.StartOfDay(now)},
			DateVisited:        req.DateVisited,
			LastUpdated:        models.NewTimestamp(now),
			ProblemDescription: req.ProblemDescription,
			ActionTaken:        req.ActionTaken,
			SpareParts:         req.SpareParts,
			Status:             req.Status,
			CallType:           req.CallType,
			Remarks:            req.Remarks,
		},
		SubmittedVia: SubmittedViaMobileForm,
		SubmittedAt:  models.NewTimestamp(now),
		ReviewStatus: &reviewStatus,
	}

	if err := s.data.Client().Insert(ctx, models.TableServiceLogPending, pending); err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to stage submission")
	}

	s.data.Refresh(ctx)
	span.SetAttributes(attribute.String("call.id", pending.CallID))
	s.logger.Info(ctx, "Submission staged for approval", map[string]interface{}{
		"call_id":  pending.CallID,
		"customer": pending.CustomerName,
	})
	return pending, nil
}

// UpdateRequest carries the mutable fields of a live call. action_taken is
// mandatory on every update so the log always says what was done.
type UpdateRequest struct {
	ActionTaken string              `json:"action_taken" validate:"required"`
	Status      models.Status       `json:"status,omitempty"`
	DateVisited *openapi_types.Date `json:"date_visited,omitempty"`
	SpareParts  *string             `json:"spare_parts,omitempty"`
	Remarks     *string             `json:"remarks,omitempty"`
}

// Update patches an existing live call by call_id and stamps last_updated.
func (s *ServiceLogService) Update(ctx context.Context, callID string, req *UpdateRequest, now time.Time) error {
	ctx, span := observability.TraceFunction(ctx, "service_log", "update",
		attribute.String("call.id", callID))
	defer observability.FinishSpan(span, nil)

	if strings.TrimSpace(req.ActionTaken) == "" {
		return contextutils.NewAppError(contextutils.ErrorCodeValidationFailed,
			contextutils.SeverityWarn, "submission validation failed", "action_taken is required")
	}
	if req.Status != "" && !req.Status.Valid() {
		return contextutils.NewAppError(contextutils.ErrorCodeValidationFailed,
			contextutils.SeverityWarn, "submission validation failed",
			fmt.Sprintf("status must be one of %v", models.AllStatuses))
	}

	var existing []models.ServiceCall
	err := s.data.Client().Table(models.TableServiceLog).
		Eq("call_id", callID).
		Execute(ctx, &existing)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to look up call %s", callID)
	}
	if len(existing) == 0 {
		return contextutils.WrapErrorf(contextutils.ErrCallNotFound, "call %s not found", callID)
	}

	changes := map[string]interface{}{
		"action_taken": req.ActionTaken,
		"last_updated": models.NewTimestamp(now),
	}
	if req.Status != "" {
		changes["status"] = req.Status
	}
	if req.DateVisited != nil {
		changes["date_visited"] = req.DateVisited
	}
	if req.SpareParts != nil {
		changes["spare_parts"] = req.SpareParts
	}
	if req.Remarks != nil {
		changes["remarks"] = req.Remarks
	}

	err = s.data.Client().Update(ctx, models.TableServiceLog,
		map[string]string{"call_id": callID}, changes)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to update call %s", callID)
	}

	s.data.Refresh(ctx)
	return nil
}

// UnsolvedFilter narrows the unsolved list. All matches are case-insensitive
// substring matches; empty fields do not filter.
type UnsolvedFilter struct {
	Customer     string
	Technician   string
	CallIDPrefix string
}

// Unsolved returns every call still needing attention, newest logged first.
func (s *ServiceLogService) Unsolved(ctx context.Context, filter UnsolvedFilter) ([]models.ServiceCall, error) {
	calls, err := s.data.ServiceLogs(ctx)
	if err != nil {
		return nil, err
	}

	unsolved := []models.ServiceCall{}
	for i := range calls {
		c := calls[i]
		if !c.Status.Unsolved() {
			continue
		}
		if !containsFold(c.CustomerName, filter.Customer) ||
			!containsFold(c.TechnicianName, filter.Technician) ||
			!containsFold(c.CallID, filter.CallIDPrefix) {
			continue
		}
		unsolved = append(unsolved, c)
	}

	sort.SliceStable(unsolved, func(i, j int) bool {
		return unsolved[i].DateLogged.Time.After(unsolved[j].DateLogged.Time)
	})
	return unsolved, nil
}

func containsFold(value, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(filter)))
}

// Approve promotes a pending submission into Service_Log and marks the
// staging row approved. The staging row is never deleted.
func (s *ServiceLogService) Approve(ctx context.Context, callID string, now time.Time) error {
	return s.review(ctx, callID, models.ReviewApproved, now)
}

// Reject marks a pending submission rejected without promoting it.
func (s *ServiceLogService) Reject(ctx context.Context, callID string, now time.Time) error {
	return s.review(ctx, callID, models.ReviewRejected, now)
}

func (s *ServiceLogService) review(ctx context.Context, callID, verdict string, now time.Time) error {
	ctx, span := observability.TraceFunction(ctx, "service_log", "review",
		attribute.String("call.id", callID),
		attribute.String("review.verdict", verdict))
	defer observability.FinishSpan(span, nil)

	var pending []models.PendingServiceCall
	err := s.data.Client().Table(models.TableServiceLogPending).
		Eq("call_id", callID).
		Execute(ctx, &pending)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to look up pending call %s", callID)
	}
	if len(pending) == 0 {
		return contextutils.WrapErrorf(contextutils.ErrCallNotFound, "pending call %s not found", callID)
	}
	row := pending[0]
	if row.Reviewed() {
		return contextutils.WrapErrorf(contextutils.ErrPendingReviewed,
			"pending call %s was already %s", callID, *row.ReviewStatus)
	}

	if verdict == models.ReviewApproved {
		if err := s.data.Client().Insert(ctx, models.TableServiceLog, row.ServiceCall); err != nil {
			return contextutils.WrapErrorf(err, "failed to promote call %s", callID)
		}
	}

	changes := map[string]interface{}{
		"review_status": verdict,
		"reviewed_at":   models.NewTimestamp(now),
	}
	err = s.data.Client().Update(ctx, models.TableServiceLogPending,
		map[string]string{"call_id": callID}, changes)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to mark pending call %s %s", callID, verdict)
	}

	s.data.Refresh(ctx)
	s.logger.Info(ctx, "Pending submission reviewed", map[string]interface{}{
		"call_id": callID,
		"verdict": verdict,
	})
	return nil
}

// Pending returns staging rows, optionally only those not yet reviewed.
func (s *ServiceLogService) Pending(ctx context.Context, unreviewedOnly bool) ([]models.PendingServiceCall, error) {
	rows, err := s.data.PendingLogs(ctx)
	if err != nil {
		return nil, err
	}
	if !unreviewedOnly {
		return rows, nil
	}

	open := []models.PendingServiceCall{}
	for i := range rows {
		if !rows[i].Reviewed() {
			open = append(open, rows[i])
		}
	}
	return open, nil
}
