package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/payment"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
	"cleaning/internal/pkg/errs"
)

// DefaultChargeTimeout bounds a single charge request to the gateway.
const DefaultChargeTimeout = 30 * time.Second

// GatewayName identifies the mobile-money provider in errors and metadata.
const GatewayName = "mpesa"

// InitiatePaymentResult is what the payer needs to follow the charge.
type InitiatePaymentResult struct {
	PaymentID         kernel.UUID
	Reference         string
	Status            payment.Status
	CheckoutRequestID string
	CustomerMessage   string
}

// InitiatePaymentCommandHandler records a Pending payment, asks the gateway to charge the
// payer and records the gateway's answer. The gateway call happens between two short
// transactions so no database lock is held while waiting on the network.
type InitiatePaymentCommandHandler struct {
	uowFactory    PaymentUoWFactory
	gateway       ports.PaymentGateway
	publisher     ports.EventPublisher
	clock         clock.Clock
	chargeTimeout time.Duration
	logger        *slog.Logger
}

func NewInitiatePaymentCommandHandler(
	uowFactory PaymentUoWFactory,
	gateway ports.PaymentGateway,
	publisher ports.EventPublisher,
	clk clock.Clock,
	chargeTimeout time.Duration,
	logger *slog.Logger,
) InitiatePaymentCommandHandler {
	if chargeTimeout <= 0 {
		chargeTimeout = DefaultChargeTimeout
	}
	return InitiatePaymentCommandHandler{
		uowFactory:    uowFactory,
		gateway:       gateway,
		publisher:     publisher,
		clock:         clk,
		chargeTimeout: chargeTimeout,
		logger:        logger.With("component", "initiate_payment_handler"),
	}
}

func (h InitiatePaymentCommandHandler) Handle(ctx context.Context, cmd InitiatePaymentCommand) (InitiatePaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return InitiatePaymentResult{}, err
	}

	pending, err := h.createPending(ctx, cmd)
	if err != nil {
		return InitiatePaymentResult{}, err
	}

	chargeCtx, cancel := context.WithTimeout(ctx, h.chargeTimeout)
	defer cancel()
	resp, chargeErr := h.gateway.RequestCharge(chargeCtx, ports.ChargeRequest{
		PhoneNumber: pending.PhoneNumber(),
		Amount:      pending.Amount(),
		Reference:   pending.Reference(),
		Description: "Cleaning job payment",
	})
	if chargeErr == nil && !resp.Accepted {
		chargeErr = fmt.Errorf("charge rejected with code %s: %s", resp.ResponseCode, resp.ResponseDescription)
	}

	settled, err := h.recordOutcome(ctx, pending.ID(), resp, chargeErr)
	if err != nil {
		return InitiatePaymentResult{}, err
	}

	if chargeErr != nil {
		h.publisher.Publish(ctx, payment.NewSettledEvent(settled))
		return InitiatePaymentResult{}, errs.NewExternalServiceError(GatewayName, chargeErr)
	}

	return InitiatePaymentResult{
		PaymentID:         settled.ID(),
		Reference:         settled.Reference(),
		Status:            settled.Status(),
		CheckoutRequestID: resp.CheckoutRequestID,
		CustomerMessage:   resp.CustomerMessage,
	}, nil
}

func (h InitiatePaymentCommandHandler) createPending(ctx context.Context, cmd InitiatePaymentCommand) (*payment.Payment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.JobRepository().GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}
	if aggregate.Status() != job.Completed {
		return nil, errs.NewStatusTransitionError("job", aggregate.Status().String(), job.Paid.String())
	}
	if !aggregate.ClientID().IsEqual(cmd.PayerID()) {
		return nil, errs.NewNotAuthorizedError(cmd.PayerID().String(), "pay for this job")
	}
	if finalCost := aggregate.FinalCost(); finalCost == nil || !finalCost.IsEqual(cmd.Amount()) {
		return nil, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%s does not match the job's final cost", cmd.Amount()))
	}

	payments := uow.PaymentRepository()
	blocked, err := payments.HasBlockingPayment(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, payment.ErrPaymentExists
	}

	reference, err := payment.NewReference()
	if err != nil {
		return nil, err
	}

	p, err := payment.NewPayment(
		cmd.PaymentID(),
		cmd.JobID(),
		cmd.PayerID(),
		cmd.Amount(),
		cmd.PhoneNumber(),
		reference,
		h.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err = payments.Add(ctx, p); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// recordOutcome moves the payment to Processing on an accepted charge and to Failed otherwise.
func (h InitiatePaymentCommandHandler) recordOutcome(
	ctx context.Context,
	paymentID kernel.UUID,
	resp ports.ChargeResponse,
	chargeErr error,
) (*payment.Payment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	payments := uow.PaymentRepository()
	p, err := payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	if chargeErr != nil {
		h.logger.WarnContext(ctx, "Charge request failed", "payment_id", paymentID, "error", chargeErr)
		err = p.Fail(chargeErr.Error(), map[string]string{payment.MetaResultCode: resp.ResponseCode}, now)
	} else {
		err = p.MarkProcessing(resp.CheckoutRequestID, resp.MerchantRequestID, now)
	}
	if err != nil {
		return nil, errors.Join(err, chargeErr)
	}

	if err = payments.Update(ctx, p); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}
