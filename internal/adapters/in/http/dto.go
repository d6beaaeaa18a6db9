package http

import (
	"time"

	"cleaning/internal/core/application/usecases/commands"
	"cleaning/internal/core/application/usecases/queries"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/core/domain/services"
)

type CreateJobRequest struct {
	Address          string  `json:"address" validate:"required,max=255"`
	City             string  `json:"city" validate:"required,max=100"`
	Latitude         float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude        float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Description      string  `json:"description" validate:"max=2000"`
	EstimatedMinutes int     `json:"estimatedMinutes" validate:"required,gt=0,lte=1440"`
}

type ProposeSlotRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtfield=Start"`
}

type AcceptSlotRequest struct {
	CleanerID *string `json:"cleanerId" validate:"omitempty,uuid"`
}

type AssignCleanerRequest struct {
	CleanerID string `json:"cleanerId" validate:"required,uuid"`
	SlotID    string `json:"slotId" validate:"required,uuid"`
}

type CompleteJobRequest struct {
	ActualMinutes int `json:"actualMinutes" validate:"gt=0,lte=1440"`
}

type CancelJobRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type PauseTrackingRequest struct {
	Reason string `json:"reason" validate:"max=200"`
}

// InitiatePaymentRequest carries the amount in cents; it must equal the job's final cost.
type InitiatePaymentRequest struct {
	JobID       string `json:"jobId" validate:"required,uuid"`
	Amount      int64  `json:"amount" validate:"gt=0"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type MoneyResponse struct {
	Minor    int64  `json:"minor"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

func toMoney(m kernel.Money) MoneyResponse {
	return MoneyResponse{Minor: m.Minor(), Currency: kernel.Currency, Display: m.String()}
}

type SlotResponse struct {
	ID                string    `json:"id"`
	ProposerID        string    `json:"proposerId"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	ProposedByCleaner bool      `json:"proposedByCleaner"`
	Acceptance        string    `json:"acceptance"`
}

type JobResponse struct {
	ID               string         `json:"id"`
	ClientID         string         `json:"clientId"`
	CleanerID        *string        `json:"cleanerId,omitempty"`
	Status           string         `json:"status"`
	Address          string         `json:"address"`
	City             string         `json:"city"`
	Latitude         float64        `json:"latitude"`
	Longitude        float64        `json:"longitude"`
	Description      string         `json:"description"`
	EstimatedMinutes int            `json:"estimatedMinutes"`
	BaseCost         MoneyResponse  `json:"baseCost"`
	FinalCost        *MoneyResponse `json:"finalCost,omitempty"`
	ActualMinutes    *int           `json:"actualMinutes,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	ScheduledFor     *time.Time     `json:"scheduledFor,omitempty"`
	StartedAt        *time.Time     `json:"startedAt,omitempty"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	CanceledAt       *time.Time     `json:"canceledAt,omitempty"`
	CancelReason     string         `json:"cancelReason,omitempty"`
	Slots            []SlotResponse `json:"slots,omitempty"`
}

func toJob(v queries.JobView) JobResponse {
	resp := JobResponse{
		ID:               v.ID.String(),
		ClientID:         v.ClientID.String(),
		Status:           v.Status.String(),
		Address:          v.Address,
		City:             v.City,
		Latitude:         v.Latitude,
		Longitude:        v.Longitude,
		Description:      v.Description,
		EstimatedMinutes: v.EstimatedMinutes,
		BaseCost:         toMoney(v.BaseCost),
		ActualMinutes:    v.ActualMinutes,
		CreatedAt:        v.CreatedAt,
		ScheduledFor:     v.ScheduledFor,
		StartedAt:        v.StartedAt,
		CompletedAt:      v.CompletedAt,
		CanceledAt:       v.CanceledAt,
		CancelReason:     v.CancelReason,
	}
	if v.CleanerID != nil {
		id := v.CleanerID.String()
		resp.CleanerID = &id
	}
	if v.FinalCost != nil {
		cost := toMoney(*v.FinalCost)
		resp.FinalCost = &cost
	}
	for _, s := range v.Slots {
		resp.Slots = append(resp.Slots, SlotResponse{
			ID:                s.ID.String(),
			ProposerID:        s.ProposerID.String(),
			Start:             s.Start,
			End:               s.End,
			ProposedByCleaner: s.ProposedByCleaner,
			Acceptance:        s.Acceptance.String(),
		})
	}
	return resp
}

func toJobs(views []queries.JobView) []JobResponse {
	out := make([]JobResponse, len(views))
	for i, v := range views {
		out[i] = toJob(v)
	}
	return out
}

type TrackingStatusResponse struct {
	JobID               string    `json:"jobId"`
	State               string    `json:"state"`
	StartedAt           time.Time `json:"startedAt"`
	CurrentMinutes      int       `json:"currentMinutes"`
	PausedMinutes       int       `json:"pausedMinutes"`
	IsOvertime          bool      `json:"isOvertime"`
	OvertimeMinutes     int       `json:"overtimeMinutes"`
	EstimatedCompletion time.Time `json:"estimatedCompletion"`
	PauseReason         string    `json:"pauseReason,omitempty"`
}

func toTrackingStatus(s tracking.Status) TrackingStatusResponse {
	return TrackingStatusResponse{
		JobID:               s.JobID.String(),
		State:               s.State.String(),
		StartedAt:           s.StartedAt,
		CurrentMinutes:      s.CurrentMinutes,
		PausedMinutes:       s.PausedMinutes,
		IsOvertime:          s.IsOvertime,
		OvertimeMinutes:     s.OvertimeMinutes,
		EstimatedCompletion: s.EstimatedCompletion,
		PauseReason:         s.PauseReason,
	}
}

type CompletionResponse struct {
	ActualMinutes int           `json:"actualMinutes"`
	FinalCost     MoneyResponse `json:"finalCost"`
}

func toCompletion(r commands.CompleteJobResult) CompletionResponse {
	return CompletionResponse{ActualMinutes: r.ActualMinutes, FinalCost: toMoney(r.FinalCost)}
}

type MatchResponse struct {
	JobID     string  `json:"jobId"`
	CleanerID string  `json:"cleanerId"`
	Score     float64 `json:"score"`
}

func toMatches(scores []services.MatchScore) []MatchResponse {
	out := make([]MatchResponse, len(scores))
	for i, s := range scores {
		out[i] = MatchResponse{JobID: s.JobID.String(), CleanerID: s.CleanerID.String(), Score: s.Score}
	}
	return out
}

type InitiatePaymentResponse struct {
	PaymentID         string `json:"paymentId"`
	Reference         string `json:"reference"`
	Status            string `json:"status"`
	CheckoutRequestID string `json:"checkoutRequestId"`
	CustomerMessage   string `json:"customerMessage,omitempty"`
}

type PaymentResponse struct {
	ID                string        `json:"id"`
	JobID             string        `json:"jobId"`
	PayerID           string        `json:"payerId"`
	Amount            MoneyResponse `json:"amount"`
	PhoneNumber       string        `json:"phoneNumber"`
	Reference         string        `json:"reference"`
	Status            string        `json:"status"`
	ProviderReference *string       `json:"providerReference,omitempty"`
	CheckoutRequestID *string       `json:"checkoutRequestId,omitempty"`
	FailureReason     string        `json:"failureReason,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
	CompletedAt       *time.Time    `json:"completedAt,omitempty"`
}

func toPayment(v queries.PaymentView) PaymentResponse {
	return PaymentResponse{
		ID:                v.ID.String(),
		JobID:             v.JobID.String(),
		PayerID:           v.PayerID.String(),
		Amount:            toMoney(v.Amount),
		PhoneNumber:       v.PhoneNumber,
		Reference:         v.Reference,
		Status:            v.Status.String(),
		ProviderReference: v.ProviderReference,
		CheckoutRequestID: v.CheckoutRequestID,
		FailureReason:     v.FailureReason,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
		CompletedAt:       v.CompletedAt,
	}
}

// callbackAck is the acknowledgement body the gateway expects from a callback URL.
type callbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}
