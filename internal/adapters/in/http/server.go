package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"cleaning/internal/adapters/out/mpesa"
	"cleaning/internal/core/application/usecases/commands"
	"cleaning/internal/core/application/usecases/queries"
	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const maxCallbackBytes = 64 << 10

// CommandHandler runs a write use case without a result.
type CommandHandler[C any] interface {
	Handle(ctx context.Context, cmd C) error
}

// ResultHandler runs a use case that answers with R.
type ResultHandler[C, R any] interface {
	Handle(ctx context.Context, req C) (R, error)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	CreateJob        CommandHandler[commands.CreateJobCommand]
	ProposeSlot      CommandHandler[commands.ProposeSlotCommand]
	AcceptSlot       CommandHandler[commands.AcceptSlotCommand]
	RejectSlot       CommandHandler[commands.RejectSlotCommand]
	AssignCleaner    CommandHandler[commands.AssignCleanerCommand]
	StartJob         CommandHandler[commands.StartJobCommand]
	CompleteJob      ResultHandler[commands.CompleteJobCommand, commands.CompleteJobResult]
	CancelJob        CommandHandler[commands.CancelJobCommand]
	MarkJobPaid      CommandHandler[commands.MarkJobPaidCommand]
	PauseTracking    ResultHandler[commands.PauseTrackingCommand, tracking.Status]
	ResumeTracking   ResultHandler[commands.ResumeTrackingCommand, tracking.Status]
	StopTracking     ResultHandler[commands.StopTrackingCommand, commands.CompleteJobResult]
	InitiatePayment  ResultHandler[commands.InitiatePaymentCommand, commands.InitiatePaymentResult]
	ReconcilePayment ResultHandler[commands.ReconcilePaymentCommand, commands.ReconcileResult]

	GetJob            ResultHandler[queries.GetJobQuery, queries.JobView]
	ListClientJobs    ResultHandler[queries.ListClientJobsQuery, []queries.JobView]
	ListCleanerJobs   ResultHandler[queries.ListCleanerJobsQuery, []queries.JobView]
	ListAvailableJobs ResultHandler[queries.ListAvailableJobsQuery, []queries.JobView]
	GetTrackingStatus ResultHandler[queries.GetTrackingStatusQuery, tracking.Status]
	FindMatches       ResultHandler[queries.FindMatchesForJobQuery, []services.MatchScore]
	SuggestJobs       ResultHandler[queries.SuggestJobsForCleanerQuery, []services.MatchScore]
	GetPayment        ResultHandler[queries.GetPaymentQuery, queries.PaymentView]
	ListJobPayments   ResultHandler[queries.ListJobPaymentsQuery, []queries.PaymentView]

	HealthChecks map[string]HealthCheck
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	h      Handlers
	logger *slog.Logger
}

func NewServer(h Handlers, logger *slog.Logger) *Server {
	return &Server{h: h, logger: logger.With("component", "http")}
}

// Register mounts every route on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")

	api.POST("/jobs", s.CreateJob, authenticated(RoleClient)...)
	api.GET("/jobs/mine", s.ListMyJobs, authenticated(RoleClient, RoleCleaner)...)
	api.GET("/jobs/available", s.ListAvailableJobs, authenticated(RoleCleaner)...)
	api.GET("/jobs/:id", s.GetJob, authenticated(RoleClient, RoleCleaner)...)

	api.POST("/jobs/:id/slots", s.ProposeSlot, authenticated(RoleClient, RoleCleaner)...)
	api.POST("/jobs/:id/slots/:slotId/accept", s.AcceptSlot, authenticated(RoleClient)...)
	api.POST("/jobs/:id/slots/:slotId/reject", s.RejectSlot, authenticated(RoleClient)...)
	api.POST("/jobs/:id/assign", s.AssignCleaner, authenticated(RoleClient)...)

	api.POST("/jobs/:id/start", s.StartJob, authenticated(RoleCleaner)...)
	api.POST("/jobs/:id/complete", s.CompleteJob, authenticated(RoleCleaner)...)
	api.POST("/jobs/:id/cancel", s.CancelJob, authenticated(RoleClient, RoleCleaner)...)
	api.POST("/jobs/:id/paid", s.MarkJobPaid, authenticated(RoleSystem)...)

	api.GET("/jobs/:id/tracking", s.GetTrackingStatus, authenticated(RoleClient, RoleCleaner)...)
	api.POST("/jobs/:id/tracking/pause", s.PauseTracking, authenticated(RoleCleaner)...)
	api.POST("/jobs/:id/tracking/resume", s.ResumeTracking, authenticated(RoleCleaner)...)
	api.POST("/jobs/:id/tracking/stop", s.StopTracking, authenticated(RoleCleaner)...)

	api.GET("/jobs/:id/matches", s.FindMatches, authenticated(RoleClient)...)
	api.GET("/cleaners/me/suggestions", s.SuggestJobs, authenticated(RoleCleaner)...)

	api.GET("/jobs/:id/payments", s.ListJobPayments, authenticated(RoleClient)...)
	api.POST("/payments", s.InitiatePayment, authenticated(RoleClient)...)
	api.GET("/payments/:id", s.GetPayment, authenticated(RoleClient)...)
	// The gateway calls back without our identity headers.
	api.POST("/payments/mpesa/callback", s.MpesaCallback)
}

// Health answers 200 when every dependency check passes and 503 otherwise.
func (s *Server) Health(c echo.Context) error {
	status := http.StatusOK
	checks := make(map[string]string, len(s.h.HealthChecks))
	for name, check := range s.h.HealthChecks {
		if err := check(c.Request().Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	return c.JSON(status, map[string]any{"status": http.StatusText(status), "checks": checks})
}

// CreateJob handles POST /api/v1/jobs.
func (s *Server) CreateJob(c echo.Context) error {
	var req CreateJobRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	location, err := kernel.NewLocation(req.Address, req.City, req.Latitude, req.Longitude)
	if err != nil {
		return err
	}
	jobID := kernel.NewUUID()
	cmd, err := commands.NewCreateJobCommand(jobID, actorFrom(c).ID, location, req.Description, req.EstimatedMinutes)
	if err != nil {
		return err
	}
	if err = s.h.CreateJob.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, CreatedResponse{ID: jobID.String()})
}

// GetJob handles GET /api/v1/jobs/:id.
func (s *Server) GetJob(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetJobQuery(jobID, actorFrom(c).ID)
	if err != nil {
		return err
	}
	view, err := s.h.GetJob.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJob(view))
}

// ListMyJobs handles GET /api/v1/jobs/mine: a client sees the jobs they created, a cleaner
// the jobs assigned to them.
func (s *Server) ListMyJobs(c echo.Context) error {
	var (
		limit, offset int
		rawStatus     string
	)
	if err := echo.QueryParamsBinder(c).
		Int("limit", &limit).
		Int("offset", &offset).
		String("status", &rawStatus).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var status *job.Status
	if rawStatus != "" {
		parsed, err := job.ParseStatus(rawStatus)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		status = &parsed
	}

	actor := actorFrom(c)
	var (
		views []queries.JobView
		err   error
	)
	if actor.Role == RoleClient {
		var query queries.ListClientJobsQuery
		if query, err = queries.NewListClientJobsQuery(actor.ID, status, limit, offset); err != nil {
			return err
		}
		views, err = s.h.ListClientJobs.Handle(c.Request().Context(), query)
	} else {
		var query queries.ListCleanerJobsQuery
		if query, err = queries.NewListCleanerJobsQuery(actor.ID, status, limit, offset); err != nil {
			return err
		}
		views, err = s.h.ListCleanerJobs.Handle(c.Request().Context(), query)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobs(views))
}

// ListAvailableJobs handles GET /api/v1/jobs/available.
func (s *Server) ListAvailableJobs(c echo.Context) error {
	var limit, offset int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).Int("offset", &offset).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	query, err := queries.NewListAvailableJobsQuery(limit, offset)
	if err != nil {
		return err
	}
	views, err := s.h.ListAvailableJobs.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobs(views))
}

// ProposeSlot handles POST /api/v1/jobs/:id/slots.
func (s *Server) ProposeSlot(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req ProposeSlotRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}

	actor := actorFrom(c)
	slotID := kernel.NewUUID()
	cmd, err := commands.NewProposeSlotCommand(jobID, slotID, actor.ID, req.Start, req.End, actor.Role == RoleCleaner)
	if err != nil {
		return err
	}
	if err = s.h.ProposeSlot.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, CreatedResponse{ID: slotID.String()})
}

// AcceptSlot handles POST /api/v1/jobs/:id/slots/:slotId/accept.
func (s *Server) AcceptSlot(c echo.Context) error {
	jobID, slotID, err := jobAndSlot(c)
	if err != nil {
		return err
	}
	var req AcceptSlotRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}

	var cleanerID *kernel.UUID
	if req.CleanerID != nil {
		id, parseErr := kernel.UUIDFromString(*req.CleanerID)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cleanerId: "+parseErr.Error())
		}
		cleanerID = &id
	}

	cmd, err := commands.NewAcceptSlotCommand(jobID, slotID, actorFrom(c).ID, cleanerID)
	if err != nil {
		return err
	}
	if err = s.h.AcceptSlot.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RejectSlot handles POST /api/v1/jobs/:id/slots/:slotId/reject.
func (s *Server) RejectSlot(c echo.Context) error {
	jobID, slotID, err := jobAndSlot(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewRejectSlotCommand(jobID, slotID, actorFrom(c).ID)
	if err != nil {
		return err
	}
	if err = s.h.RejectSlot.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AssignCleaner handles POST /api/v1/jobs/:id/assign.
func (s *Server) AssignCleaner(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req AssignCleanerRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}
	cleanerID, cleanerErr := kernel.UUIDFromString(req.CleanerID)
	slotID, slotErr := kernel.UUIDFromString(req.SlotID)
	if err = errors.Join(cleanerErr, slotErr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cmd, err := commands.NewAssignCleanerCommand(jobID, cleanerID, slotID, actorFrom(c).ID)
	if err != nil {
		return err
	}
	if err = s.h.AssignCleaner.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// StartJob handles POST /api/v1/jobs/:id/start.
func (s *Server) StartJob(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewStartJobCommand(jobID, actorFrom(c).ID)
	if err != nil {
		return err
	}
	if err = s.h.StartJob.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CompleteJob handles POST /api/v1/jobs/:id/complete with a manually reported duration.
func (s *Server) CompleteJob(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req CompleteJobRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewCompleteJobCommand(jobID, actorFrom(c).ID, req.ActualMinutes)
	if err != nil {
		return err
	}
	result, err := s.h.CompleteJob.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCompletion(result))
}

// CancelJob handles POST /api/v1/jobs/:id/cancel.
func (s *Server) CancelJob(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req CancelJobRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}
	actor := actorFrom(c)
	cmd, err := commands.NewCancelJobCommand(jobID, actor.ID, actor.Role == RoleClient, req.Reason)
	if err != nil {
		return err
	}
	if err = s.h.CancelJob.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkJobPaid handles POST /api/v1/jobs/:id/paid for settlements made outside the gateway.
func (s *Server) MarkJobPaid(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewMarkJobPaidCommand(jobID, actorFrom(c).ID)
	if err != nil {
		return err
	}
	if err = s.h.MarkJobPaid.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetTrackingStatus handles GET /api/v1/jobs/:id/tracking.
func (s *Server) GetTrackingStatus(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetTrackingStatusQuery(jobID, actorFrom(c).ID)
	if err != nil {
		return err
	}
	status, err := s.h.GetTrackingStatus.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrackingStatus(status))
}

// PauseTracking handles POST /api/v1/jobs/:id/tracking/pause.
func (s *Server) PauseTracking(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req PauseTrackingRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewPauseTrackingCommand(jobID, actorFrom(c).ID, req.Reason)
	if err != nil {
		return err
	}
	status, err := s.h.PauseTracking.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrackingStatus(status))
}

// ResumeTracking handles POST /api/v1/jobs/:id/tracking/resume.
func (s *Server) ResumeTracking(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewResumeTrackingCommand(jobID, actorFrom(c).ID)
	if err != nil {
		return err
	}
	status, err := s.h.ResumeTracking.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrackingStatus(status))
}

// StopTracking handles POST /api/v1/jobs/:id/tracking/stop. The job is completed with
// the tracked duration.
func (s *Server) StopTracking(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewStopTrackingCommand(jobID, actorFrom(c).ID)
	if err != nil {
		return err
	}
	result, err := s.h.StopTracking.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCompletion(result))
}

// FindMatches handles GET /api/v1/jobs/:id/matches.
func (s *Server) FindMatches(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var limit int
	if err = echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	query, err := queries.NewFindMatchesForJobQuery(jobID, actorFrom(c).ID, limit)
	if err != nil {
		return err
	}
	matches, err := s.h.FindMatches.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMatches(matches))
}

// SuggestJobs handles GET /api/v1/cleaners/me/suggestions.
func (s *Server) SuggestJobs(c echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	query, err := queries.NewSuggestJobsForCleanerQuery(actorFrom(c).ID, limit)
	if err != nil {
		return err
	}
	matches, err := s.h.SuggestJobs.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMatches(matches))
}

// InitiatePayment handles POST /api/v1/payments.
func (s *Server) InitiatePayment(c echo.Context) error {
	var req InitiatePaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	jobID, err := kernel.UUIDFromString(req.JobID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "jobId: "+err.Error())
	}
	amount, err := kernel.NewMoney(req.Amount)
	if err != nil {
		return err
	}

	cmd, err := commands.NewInitiatePaymentCommand(kernel.NewUUID(), jobID, actorFrom(c).ID, amount, req.PhoneNumber)
	if err != nil {
		return err
	}
	result, err := s.h.InitiatePayment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, InitiatePaymentResponse{
		PaymentID:         result.PaymentID.String(),
		Reference:         result.Reference,
		Status:            result.Status.String(),
		CheckoutRequestID: result.CheckoutRequestID,
		CustomerMessage:   result.CustomerMessage,
	})
}

// GetPayment handles GET /api/v1/payments/:id.
func (s *Server) GetPayment(c echo.Context) error {
	paymentID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetPaymentQuery(paymentID, actorFrom(c).ID)
	if err != nil {
		return err
	}
	view, err := s.h.GetPayment.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPayment(view))
}

// ListJobPayments handles GET /api/v1/jobs/:id/payments.
func (s *Server) ListJobPayments(c echo.Context) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewListJobPaymentsQuery(jobID, actorFrom(c).ID)
	if err != nil {
		return err
	}
	views, err := s.h.ListJobPayments.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	out := make([]PaymentResponse, len(views))
	for i, v := range views {
		out[i] = toPayment(v)
	}
	return c.JSON(http.StatusOK, out)
}

// MpesaCallback handles POST /api/v1/payments/mpesa/callback. Callbacks for charges we do
// not know get a 404 with a non-zero ResultCode. Any other failure answers 5xx so the
// gateway delivers the callback again.
func (s *Server) MpesaCallback(c echo.Context) error {
	ctx := c.Request().Context()
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxCallbackBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable callback body")
	}
	callback, err := mpesa.ParseCallback(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cmd, err := commands.NewReconcilePaymentCommand(
		callback.CheckoutRequestID,
		callback.ResultCode,
		callback.ResultDesc,
		callback.Receipt,
		callback.Details,
	)
	if err != nil {
		return err
	}

	result, err := s.h.ReconcilePayment.Handle(ctx, cmd)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		s.logger.WarnContext(ctx, "callback for unknown charge", "checkout_request_id", callback.CheckoutRequestID)
		return c.JSON(http.StatusNotFound, callbackAck{ResultCode: 1, ResultDesc: "Rejected"})
	case err != nil:
		return err
	default:
		s.logger.InfoContext(ctx, "callback reconciled",
			"checkout_request_id", callback.CheckoutRequestID,
			"result_code", callback.ResultCode,
			"applied", result.Applied)
	}
	return c.JSON(http.StatusOK, callbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, name+": "+strings.TrimSpace(err.Error()))
	}
	return id, nil
}

func jobAndSlot(c echo.Context) (kernel.UUID, kernel.UUID, error) {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	slotID, err := pathUUID(c, "slotId")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return jobID, slotID, nil
}
