package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "cleaning/internal/adapters/in/http"
	"cleaning/internal/core/application/usecases/commands"
	"cleaning/internal/core/application/usecases/queries"
	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommand[C any] struct {
	calls int
	got   C
	err   error
}

func (f *fakeCommand[C]) Handle(_ context.Context, cmd C) error {
	f.calls++
	f.got = cmd
	return f.err
}

type fakeResult[C, R any] struct {
	calls  int
	got    C
	result R
	err    error
}

func (f *fakeResult[C, R]) Handle(_ context.Context, req C) (R, error) {
	f.calls++
	f.got = req
	return f.result, f.err
}

var (
	clientID  = kernel.NewUUID()
	cleanerID = kernel.NewUUID()
	now       = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
)

func newEcho(h httpadapter.Handlers) *echo.Echo {
	logger := slog.New(slog.DiscardHandler)
	return httpadapter.NewEcho(httpadapter.NewServer(h, logger), logger)
}

func do(e *echo.Echo, method, target, body string, actor kernel.UUID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if role != "" {
		req.Header.Set(httpadapter.HeaderUserID, actor.String())
		req.Header.Set(httpadapter.HeaderUserRole, role)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpadapter.ErrorResponse {
	t.Helper()
	var body httpadapter.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	e := newEcho(httpadapter.Handlers{HealthChecks: map[string]httpadapter.HealthCheck{
		"postgres": func(context.Context) error { return nil },
	}})
	rec := do(e, http.MethodGet, "/health", "", kernel.UUID{}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)

	e = newEcho(httpadapter.Handlers{HealthChecks: map[string]httpadapter.HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}})
	rec = do(e, http.MethodGet, "/health", "", kernel.UUID{}, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestIdentityHeaders(t *testing.T) {
	create := &fakeCommand[commands.CreateJobCommand]{}
	e := newEcho(httpadapter.Handlers{CreateJob: create})
	body := `{"address":"12 Riverside Drive","city":"Nairobi","latitude":-1.27,"longitude":36.8,"estimatedMinutes":120}`

	rec := do(e, http.MethodPost, "/api/v1/jobs", body, kernel.UUID{}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, decodeError(t, rec).Code)

	rec = do(e, http.MethodPost, "/api/v1/jobs", body, clientID, "janitor")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/api/v1/jobs", body, cleanerID, "cleaner")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Zero(t, create.calls)
}

func TestCreateJob(t *testing.T) {
	create := &fakeCommand[commands.CreateJobCommand]{}
	e := newEcho(httpadapter.Handlers{CreateJob: create})

	rec := do(e, http.MethodPost, "/api/v1/jobs",
		`{"address":"12 Riverside Drive","city":"Nairobi","latitude":-1.27,"longitude":36.8,`+
			`"description":"2 bedroom flat","estimatedMinutes":120}`,
		clientID, "client")

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created httpadapter.CreatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	require.Equal(t, 1, create.calls)
	assert.Equal(t, created.ID, create.got.JobID().String())
	assert.True(t, create.got.ClientID().IsEqual(clientID))
	assert.Equal(t, 120, create.got.EstimatedMinutes())
	assert.Equal(t, "Nairobi", create.got.Location().City())
}

func TestCreateJob_InvalidBody(t *testing.T) {
	create := &fakeCommand[commands.CreateJobCommand]{}
	e := newEcho(httpadapter.Handlers{CreateJob: create})

	rec := do(e, http.MethodPost, "/api/v1/jobs", `{"address":"x","city":"Nairobi"}`, clientID, "client")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/api/v1/jobs", `{not json`, clientID, "client")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, create.calls)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", errs.NewObjectNotFoundError("jobID", "x"), http.StatusNotFound, ""},
		{"not authorized", errs.NewNotAuthorizedError("u", "read this job"), http.StatusForbidden, ""},
		{"transition", errs.NewStatusTransitionError("job", "PAID", "IN_PROGRESS"), http.StatusConflict, ""},
		{"cleaner busy", job.ErrCleanerNotAvailable, http.StatusConflict, ""},
		{"stale version", errs.NewVersionIsInvalidError("job"), http.StatusConflict, ""},
		{"outside hours", tracking.ErrOutsideWorkWindow, http.StatusConflict, ""},
		{"no session", tracking.ErrNoActiveSession, http.StatusNotFound, ""},
		{"validation", errs.NewValueIsRequiredError("reason"), http.StatusUnprocessableEntity, ""},
		{"gateway", errs.NewExternalServiceError("mpesa", errors.New("timeout")), http.StatusBadGateway, ""},
		{"unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			get := &fakeResult[queries.GetJobQuery, queries.JobView]{err: tt.err}
			e := newEcho(httpadapter.Handlers{GetJob: get})

			rec := do(e, http.MethodGet, "/api/v1/jobs/"+kernel.NewUUID().String(), "", clientID, "client")
			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.status, body.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			} else {
				assert.Equal(t, tt.err.Error(), body.Message)
			}
		})
	}
}

func TestGetJob(t *testing.T) {
	jobID := kernel.NewUUID()
	base, _ := kernel.NewMoney(120000)
	get := &fakeResult[queries.GetJobQuery, queries.JobView]{result: queries.JobView{
		ID:               jobID,
		ClientID:         clientID,
		CleanerID:        &cleanerID,
		Status:           job.Scheduled,
		City:             "Nairobi",
		EstimatedMinutes: 120,
		BaseCost:         base,
		CreatedAt:        now,
		Slots: []queries.SlotView{{
			ID:         kernel.NewUUID(),
			ProposerID: cleanerID,
			Start:      now,
			End:        now.Add(2 * time.Hour),
			Acceptance: job.AcceptanceAccepted,
		}},
	}}
	e := newEcho(httpadapter.Handlers{GetJob: get})

	rec := do(e, http.MethodGet, "/api/v1/jobs/"+jobID.String(), "", cleanerID, "cleaner")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpadapter.JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, jobID.String(), resp.ID)
	assert.Equal(t, "SCHEDULED", resp.Status)
	require.NotNil(t, resp.CleanerID)
	assert.Equal(t, cleanerID.String(), *resp.CleanerID)
	assert.Equal(t, int64(120000), resp.BaseCost.Minor)
	assert.Equal(t, "KES", resp.BaseCost.Currency)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, job.AcceptanceAccepted.String(), resp.Slots[0].Acceptance)
}

func TestMalformedPathID(t *testing.T) {
	get := &fakeResult[queries.GetJobQuery, queries.JobView]{}
	e := newEcho(httpadapter.Handlers{GetJob: get})

	rec := do(e, http.MethodGet, "/api/v1/jobs/not-a-uuid", "", clientID, "client")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, get.calls)
}

func TestListMyJobs_ByRole(t *testing.T) {
	byClient := &fakeResult[queries.ListClientJobsQuery, []queries.JobView]{}
	byCleaner := &fakeResult[queries.ListCleanerJobsQuery, []queries.JobView]{}
	e := newEcho(httpadapter.Handlers{ListClientJobs: byClient, ListCleanerJobs: byCleaner})

	rec := do(e, http.MethodGet, "/api/v1/jobs/mine?status=scheduled&limit=5", "", cleanerID, "cleaner")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Equal(t, 1, byCleaner.calls)
	assert.Zero(t, byClient.calls)

	rec = do(e, http.MethodGet, "/api/v1/jobs/mine", "", clientID, "client")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, byClient.calls)

	rec = do(e, http.MethodGet, "/api/v1/jobs/mine?status=sleeping", "", clientID, "client")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/jobs/mine?limit=1000", "", clientID, "client")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestProposeSlot_RecordsProposerRole(t *testing.T) {
	propose := &fakeCommand[commands.ProposeSlotCommand]{}
	e := newEcho(httpadapter.Handlers{ProposeSlot: propose})
	jobID := kernel.NewUUID()

	rec := do(e, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/slots",
		`{"start":"2026-03-03T09:00:00Z","end":"2026-03-03T11:00:00Z"}`, cleanerID, "cleaner")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.True(t, propose.got.ProposedByCleaner())
	assert.True(t, propose.got.ProposerID().IsEqual(cleanerID))
	assert.Equal(t, 2*time.Hour, propose.got.Window().Duration())

	rec = do(e, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/slots",
		`{"start":"2026-03-03T11:00:00Z","end":"2026-03-03T09:00:00Z"}`, clientID, "client")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, propose.calls)
}

func TestCancelJob_ActorKind(t *testing.T) {
	cancel := &fakeCommand[commands.CancelJobCommand]{}
	e := newEcho(httpadapter.Handlers{CancelJob: cancel})
	jobID := kernel.NewUUID()

	rec := do(e, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/cancel", `{"reason":"sick"}`, cleanerID, "cleaner")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, cancel.got.IsClient())
	assert.Equal(t, "sick", cancel.got.Reason())

	rec = do(e, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/cancel", "", clientID, "client")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, cancel.got.IsClient())
}

func TestStopTracking(t *testing.T) {
	cost, _ := kernel.NewMoney(156000)
	stop := &fakeResult[commands.StopTrackingCommand, commands.CompleteJobResult]{
		result: commands.CompleteJobResult{ActualMinutes: 150, FinalCost: cost},
	}
	e := newEcho(httpadapter.Handlers{StopTracking: stop})

	rec := do(e, http.MethodPost, "/api/v1/jobs/"+kernel.NewUUID().String()+"/tracking/stop", "", cleanerID, "cleaner")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpadapter.CompletionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 150, resp.ActualMinutes)
	assert.Equal(t, "KES 1560.00", resp.FinalCost.Display)
}

func TestInitiatePayment(t *testing.T) {
	initiate := &fakeResult[commands.InitiatePaymentCommand, commands.InitiatePaymentResult]{
		result: commands.InitiatePaymentResult{
			PaymentID:         kernel.NewUUID(),
			Reference:         "CLN8K2M4Q7ZT",
			CheckoutRequestID: "ws_CO_1",
			CustomerMessage:   "Success",
		},
	}
	e := newEcho(httpadapter.Handlers{InitiatePayment: initiate})
	jobID := kernel.NewUUID()

	rec := do(e, http.MethodPost, "/api/v1/payments",
		`{"jobId":"`+jobID.String()+`","amount":156000,"phoneNumber":"0712345678"}`, clientID, "client")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	assert.Equal(t, "254712345678", initiate.got.PhoneNumber())
	assert.Equal(t, int64(156000), initiate.got.Amount().Minor())
	assert.True(t, initiate.got.PayerID().IsEqual(clientID))
	assert.Contains(t, rec.Body.String(), `"checkoutRequestId":"ws_CO_1"`)
}

func TestMpesaCallback(t *testing.T) {
	success := `{"Body":{"stkCallback":{"MerchantRequestID":"m-1","CheckoutRequestID":"ws_CO_1","ResultCode":0,` +
		`"ResultDesc":"ok","CallbackMetadata":{"Item":[{"Name":"MpesaReceiptNumber","Value":"NLJ7RT61SV"}]}}}}`

	t.Run("reconciled", func(t *testing.T) {
		reconcile := &fakeResult[commands.ReconcilePaymentCommand, commands.ReconcileResult]{
			result: commands.ReconcileResult{Applied: true},
		}
		e := newEcho(httpadapter.Handlers{ReconcilePayment: reconcile})

		rec := do(e, http.MethodPost, "/api/v1/payments/mpesa/callback", success, kernel.UUID{}, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Accepted"}`, rec.Body.String())
		assert.Equal(t, "ws_CO_1", reconcile.got.CheckoutRequestID())
		assert.Equal(t, "NLJ7RT61SV", reconcile.got.Receipt())
		assert.True(t, reconcile.got.Succeeded())
	})

	t.Run("unknown charge is rejected", func(t *testing.T) {
		reconcile := &fakeResult[commands.ReconcilePaymentCommand, commands.ReconcileResult]{
			err: errs.NewObjectNotFoundError("checkoutRequestID", "ws_CO_1"),
		}
		e := newEcho(httpadapter.Handlers{ReconcilePayment: reconcile})

		rec := do(e, http.MethodPost, "/api/v1/payments/mpesa/callback", success, kernel.UUID{}, "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"ResultCode":1,"ResultDesc":"Rejected"}`, rec.Body.String())
	})

	t.Run("storage failure asks for redelivery", func(t *testing.T) {
		reconcile := &fakeResult[commands.ReconcilePaymentCommand, commands.ReconcileResult]{
			err: errors.New("database is down"),
		}
		e := newEcho(httpadapter.Handlers{ReconcilePayment: reconcile})

		rec := do(e, http.MethodPost, "/api/v1/payments/mpesa/callback", success, kernel.UUID{}, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("malformed", func(t *testing.T) {
		reconcile := &fakeResult[commands.ReconcilePaymentCommand, commands.ReconcileResult]{}
		e := newEcho(httpadapter.Handlers{ReconcilePayment: reconcile})

		rec := do(e, http.MethodPost, "/api/v1/payments/mpesa/callback", `{"Body":{}}`, kernel.UUID{}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, reconcile.calls)
	})
}
