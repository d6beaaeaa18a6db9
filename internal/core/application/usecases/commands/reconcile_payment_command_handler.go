package commands

import (
	"context"
	"strconv"
	"time"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/payment"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
)

// ReconcileResult reports the payment state after reconciliation. Applied is false when the
// payment had already been settled and nothing changed.
type ReconcileResult struct {
	Payment *payment.Payment
	Applied bool
}

// ReconcilePaymentCommandHandler applies a gateway outcome to a payment. It is idempotent:
// a duplicate or late outcome for a settled payment changes nothing and publishes nothing.
// A successful payment marks its job Paid in the same transaction.
type ReconcilePaymentCommandHandler struct {
	uowFactory PaymentUoWFactory
	publisher  ports.EventPublisher
	clock      clock.Clock
}

func NewReconcilePaymentCommandHandler(
	uowFactory PaymentUoWFactory,
	publisher ports.EventPublisher,
	clk clock.Clock,
) ReconcilePaymentCommandHandler {
	return ReconcilePaymentCommandHandler{uowFactory: uowFactory, publisher: publisher, clock: clk}
}

func (h ReconcilePaymentCommandHandler) Handle(ctx context.Context, cmd ReconcilePaymentCommand) (ReconcileResult, error) {
	if err := cmd.Validate(); err != nil {
		return ReconcileResult{}, err
	}
	now := h.clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ReconcileResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	payments := uow.PaymentRepository()
	p, err := payments.GetByCheckoutRequestID(ctx, cmd.CheckoutRequestID())
	if err != nil {
		return ReconcileResult{}, err
	}
	if p.Status().IsTerminal() {
		return ReconcileResult{Payment: p}, nil
	}

	details := cmd.Details()
	if details == nil {
		details = make(map[string]string, 2)
	}
	details[payment.MetaResultCode] = strconv.Itoa(cmd.ResultCode())
	details[payment.MetaResultDesc] = cmd.ResultDesc()

	var paidJob *job.Job
	if cmd.Succeeded() {
		if err = p.Complete(cmd.Receipt(), details, now); err != nil {
			return ReconcileResult{}, err
		}
		if paidJob, err = h.markJobPaid(ctx, uow, p, now); err != nil {
			return ReconcileResult{}, err
		}
	} else if err = p.Fail(cmd.ResultDesc(), details, now); err != nil {
		return ReconcileResult{}, err
	}

	if err = payments.Update(ctx, p); err != nil {
		return ReconcileResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ReconcileResult{}, err
	}

	h.publisher.Publish(ctx, payment.NewSettledEvent(p))
	if paidJob != nil {
		publishJobEvents(ctx, h.publisher, paidJob.PullEvents())
	}
	return ReconcileResult{Payment: p, Applied: true}, nil
}

// markJobPaid returns the job when it changed, nil when it already was Paid.
func (h ReconcilePaymentCommandHandler) markJobPaid(
	ctx context.Context,
	uow PaymentUoW,
	p *payment.Payment,
	now time.Time,
) (*job.Job, error) {
	jobs := uow.JobRepository()
	aggregate, err := jobs.GetForUpdate(ctx, p.JobID())
	if err != nil {
		return nil, err
	}
	changed, err := aggregate.MarkPaid(p.PayerID(), now)
	if err != nil || !changed {
		return nil, err
	}
	if err = jobs.Update(ctx, aggregate); err != nil {
		return nil, err
	}
	return aggregate, nil
}
