package services

import (
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
)

// Overtime is billed per extra minute at the job's per-minute rate plus a 20% surcharge.
// The hourly 1.5x multiplier found in older billing code is deliberately not supported.
const (
	overtimeSurchargeNum = 6
	overtimeSurchargeDen = 5
)

// CostCalculator prices jobs. It is a pure value: the configured rate is the only state.
type CostCalculator struct {
	ratePerMinute kernel.Money
}

func NewCostCalculator(ratePerMinute kernel.Money) (CostCalculator, error) {
	if ratePerMinute.IsZero() {
		return CostCalculator{}, errs.NewValueIsRequiredError("ratePerMinute")
	}
	return CostCalculator{ratePerMinute: ratePerMinute}, nil
}

func (c CostCalculator) RatePerMinute() kernel.Money {
	return c.ratePerMinute
}

// BaseCost is estimatedMinutes × ratePerMinute.
func (c CostCalculator) BaseCost(estimatedMinutes int) (kernel.Money, error) {
	if estimatedMinutes <= 0 {
		return kernel.Money{}, errs.NewValueIsOutOfRangeError("estimatedMinutes", estimatedMinutes, 1, "unbounded")
	}
	return c.ratePerMinute.Times(int64(estimatedMinutes)), nil
}

// FinalCost returns baseCost when the job finished within its estimate. Otherwise it adds
// extraMinutes × (baseCost / estimatedMinutes) × 1.2, rounded half-up to the minor unit.
func (c CostCalculator) FinalCost(baseCost kernel.Money, estimatedMinutes, actualMinutes int) (kernel.Money, error) {
	if estimatedMinutes <= 0 {
		return kernel.Money{}, errs.NewValueIsOutOfRangeError("estimatedMinutes", estimatedMinutes, 1, "unbounded")
	}
	if actualMinutes < 0 {
		return kernel.Money{}, errs.NewValueIsOutOfRangeError("actualMinutes", actualMinutes, 0, "unbounded")
	}
	if actualMinutes <= estimatedMinutes {
		return baseCost, nil
	}

	extraMinutes := int64(actualMinutes - estimatedMinutes)
	extra := baseCost.MulRatio(extraMinutes*overtimeSurchargeNum, int64(estimatedMinutes)*overtimeSurchargeDen)
	return baseCost.Add(extra), nil
}
