package commands

import (
	"context"

	"cleaning/internal/core/domain/model/payment"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
)

// ExpireStalePaymentsCommandHandler fails overdue payments in one transaction and returns
// how many it expired. Failure events go out after commit.
type ExpireStalePaymentsCommandHandler struct {
	uowFactory PaymentUoWFactory
	publisher  ports.EventPublisher
	clock      clock.Clock
}

func NewExpireStalePaymentsCommandHandler(
	uowFactory PaymentUoWFactory,
	publisher ports.EventPublisher,
	clk clock.Clock,
) ExpireStalePaymentsCommandHandler {
	return ExpireStalePaymentsCommandHandler{uowFactory: uowFactory, publisher: publisher, clock: clk}
}

func (h ExpireStalePaymentsCommandHandler) Handle(ctx context.Context, cmd ExpireStalePaymentsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	now := h.clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	payments := uow.PaymentRepository()
	stale, err := payments.ListActiveBefore(ctx, now.Add(-cmd.Window()), cmd.Limit())
	if err != nil {
		return 0, err
	}

	expired := make([]*payment.Payment, 0, len(stale))
	for _, p := range stale {
		if err = p.Fail(payment.FailureReasonExpired, nil, now); err != nil {
			return 0, err
		}
		if err = payments.Update(ctx, p); err != nil {
			return 0, err
		}
		expired = append(expired, p)
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	for _, p := range expired {
		h.publisher.Publish(ctx, payment.NewSettledEvent(p))
	}
	return len(expired), nil
}
