package commands

import (
	"context"
	"log/slog"
	"strconv"

	"cleaning/internal/core/domain/model/payment"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
)

// PollPaymentsResult counts the payments a poll looked at and the ones it settled.
type PollPaymentsResult struct {
	Checked int
	Settled int
}

// PollPaymentsCommandHandler asks the gateway about charges whose callback is overdue and
// feeds definitive answers through the reconciliation path. A query error or a
// still-processing answer leaves the payment for the next poll or the stale sweep.
type PollPaymentsCommandHandler struct {
	uowFactory PaymentUoWFactory
	gateway    ports.PaymentGateway
	reconciler ReconcilePaymentCommandHandler
	clock      clock.Clock
	logger     *slog.Logger
}

func NewPollPaymentsCommandHandler(
	uowFactory PaymentUoWFactory,
	gateway ports.PaymentGateway,
	reconciler ReconcilePaymentCommandHandler,
	clk clock.Clock,
	logger *slog.Logger,
) PollPaymentsCommandHandler {
	return PollPaymentsCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		reconciler: reconciler,
		clock:      clk,
		logger:     logger.With("component", "poll_payments_handler"),
	}
}

func (h PollPaymentsCommandHandler) Handle(ctx context.Context, cmd PollPaymentsCommand) (PollPaymentsResult, error) {
	if err := cmd.Validate(); err != nil {
		return PollPaymentsResult{}, err
	}

	candidates, err := h.listOverdue(ctx, cmd)
	if err != nil {
		return PollPaymentsResult{}, err
	}

	var result PollPaymentsResult
	for _, p := range candidates {
		checkoutID := p.CheckoutRequestID()
		if p.Status() != payment.Processing || checkoutID == "" {
			continue
		}
		result.Checked++

		status, queryErr := h.gateway.QueryCharge(ctx, checkoutID)
		if queryErr != nil {
			h.logger.WarnContext(ctx, "Payment status query failed", "payment_id", p.ID(), "error", queryErr)
			continue
		}
		if status.State == ports.ChargeStatePending {
			continue
		}

		reconcile, cmdErr := newReconcileFromQuery(checkoutID, status)
		if cmdErr != nil {
			return result, cmdErr
		}
		res, recErr := h.reconciler.Handle(ctx, reconcile)
		if recErr != nil {
			h.logger.ErrorContext(ctx, "Failed to reconcile polled payment", "payment_id", p.ID(), "error", recErr)
			continue
		}
		if res.Applied {
			result.Settled++
		}
	}

	return result, nil
}

func (h PollPaymentsCommandHandler) listOverdue(ctx context.Context, cmd PollPaymentsCommand) ([]*payment.Payment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.PaymentRepository().ListActiveBefore(ctx, h.clock.Now().Add(-cmd.OlderThan()), cmd.Limit())
}

// newReconcileFromQuery converts a query answer. The status query carries no receipt
// number, so a successful poll records the checkout request id as provider reference.
func newReconcileFromQuery(checkoutID string, status ports.ChargeStatus) (ReconcilePaymentCommand, error) {
	code := 0
	if status.State == ports.ChargeStateFailed {
		parsed, err := strconv.Atoi(status.ResultCode)
		if err != nil || parsed == 0 {
			parsed = 1
		}
		code = parsed
	}
	return NewReconcilePaymentCommand(checkoutID, code, status.ResultDesc, checkoutID,
		map[string]string{"Source": "status_query"})
}
