package cleaner

import (
	"errors"
	"fmt"
	"strings"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

const (
	RatingMin = 0.0
	RatingMax = 5.0
)

var ErrProfileIsNotConstructed = errors.New("Profile must be created via NewProfile constructor")

// Profile is the read model of a cleaner used for matching and schedule locking.
// Identity and credentials live in the external user service.
type Profile struct {
	id            kernel.UUID
	name          string
	hourlyRate    kernel.Money
	rating        float64
	completedJobs int
	totalJobs     int
	active        bool
	verified      bool
	guard         guard.ConstructorGuard
}

func NewProfile(
	id kernel.UUID,
	name string,
	hourlyRate kernel.Money,
	rating float64,
	completedJobs, totalJobs int,
	active, verified bool,
) (*Profile, error) {
	p := &Profile{
		active:   active,
		verified: verified,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		id.Validate(),
		p.setName(name),
		p.setHourlyRate(hourlyRate),
		p.setRating(rating),
		p.setJobCounts(completedJobs, totalJobs),
	); err != nil {
		return nil, err
	}
	p.id = id

	return p, nil
}

func (p *Profile) Validate() error {
	if p == nil {
		return ErrProfileIsNotConstructed
	}
	return p.guard.Validate(ErrProfileIsNotConstructed)
}

func (p *Profile) ID() kernel.UUID {
	return p.id
}

func (p *Profile) Name() string {
	return p.name
}

func (p *Profile) HourlyRate() kernel.Money {
	return p.hourlyRate
}

func (p *Profile) Rating() float64 {
	return p.rating
}

func (p *Profile) CompletedJobs() int {
	return p.completedJobs
}

func (p *Profile) TotalJobs() int {
	return p.totalJobs
}

func (p *Profile) IsActive() bool {
	return p.active
}

func (p *Profile) IsVerified() bool {
	return p.verified
}

// IsAvailableForWork reports whether the cleaner may be offered jobs at all.
func (p *Profile) IsAvailableForWork() bool {
	return p.active && p.verified
}

func (p *Profile) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	p.name = name
	return nil
}

func (p *Profile) setHourlyRate(rate kernel.Money) error {
	if rate.IsZero() {
		return errs.NewValueIsRequiredError("hourlyRate")
	}
	p.hourlyRate = rate
	return nil
}

func (p *Profile) setRating(rating float64) error {
	if rating < RatingMin || rating > RatingMax {
		return errs.NewValueIsOutOfRangeError("rating", rating, RatingMin, RatingMax)
	}
	p.rating = rating
	return nil
}

func (p *Profile) setJobCounts(completed, total int) error {
	if completed < 0 || total < 0 || completed > total {
		return errs.NewValueIsInvalidErrorWithCause("jobCounts",
			fmt.Errorf("completed %d and total %d must satisfy 0 <= completed <= total", completed, total))
	}
	p.completedJobs = completed
	p.totalJobs = total
	return nil
}
