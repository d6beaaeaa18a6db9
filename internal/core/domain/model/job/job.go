package job

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

const (
	// MaxEstimatedMinutes caps a single job at one day of work.
	MaxEstimatedMinutes = 24 * 60
	// SlotDurationTolerance is how far a slot may deviate from the estimated duration.
	SlotDurationTolerance = 15 * time.Minute

	descriptionMaxLength = 2000
)

var (
	ErrJobIsNotConstructed = errors.New("Job must be created via NewJob constructor")

	// ErrCleanerNotAvailable is returned when the cleaner already holds an overlapping commitment.
	ErrCleanerNotAvailable = fmt.Errorf("%w: cleaner is not available for this slot", errs.ErrConflict)
	// ErrSlotAlreadyAccepted enforces at most one accepted slot per job.
	ErrSlotAlreadyAccepted = fmt.Errorf("%w: job already has an accepted slot", errs.ErrConflict)
	// ErrCleanerAlreadyAssigned is returned when assigning a job that already has a cleaner.
	ErrCleanerAlreadyAssigned = fmt.Errorf("%w: job already has a cleaner", errs.ErrConflict)
)

// Job is the aggregate root of the cleaning service. It owns the lifecycle state machine,
// the negotiated schedule slots and every money figure of a single job.
//
// Invariants:
//   - estimatedMinutes is in (0, MaxEstimatedMinutes]
//   - a cleaner is set iff status is Scheduled, InProgress, Completed or Paid
//   - at most one slot is accepted, and scheduledFor equals its start once assigned
//   - finalCost and completedAt are set iff status is Completed or Paid
//
// Every transition appends a LifecycleEvent that callers drain with PullEvents.
type Job struct {
	id               kernel.UUID
	clientID         kernel.UUID
	cleanerID        *kernel.UUID
	status           Status
	location         kernel.Location
	description      string
	estimatedMinutes int
	ratePerMinute    kernel.Money
	baseCost         kernel.Money
	finalCost        *kernel.Money
	actualMinutes    *int
	createdAt        time.Time
	scheduledFor     *time.Time
	startedAt        *time.Time
	completedAt      *time.Time
	canceledAt       *time.Time
	canceledBy       *kernel.UUID
	cancelReason     string
	version          int
	slots            []*ScheduleSlot
	events           []LifecycleEvent
	guard            guard.ConstructorGuard
}

// NewJob creates a Pending job. baseCost is computed by the caller from ratePerMinute
// and estimatedMinutes so that pricing rules stay in the cost calculator.
func NewJob(
	id, clientID kernel.UUID,
	location kernel.Location,
	description string,
	estimatedMinutes int,
	ratePerMinute, baseCost kernel.Money,
	now time.Time,
) (*Job, error) {
	j := &Job{
		status:    Pending,
		createdAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		j.setID(id),
		j.setClientID(clientID),
		j.setLocation(location),
		j.setDescription(description),
		j.setEstimatedMinutes(estimatedMinutes),
		j.setPricing(ratePerMinute, baseCost),
	); err != nil {
		return nil, err
	}

	j.record(Unknown, Pending, clientID, now)
	return j, nil
}

// Snapshot is the persisted state of a Job, used to restore the aggregate from storage.
type Snapshot struct {
	ID               kernel.UUID
	ClientID         kernel.UUID
	CleanerID        *kernel.UUID
	Status           Status
	Location         kernel.Location
	Description      string
	EstimatedMinutes int
	RatePerMinute    kernel.Money
	BaseCost         kernel.Money
	FinalCost        *kernel.Money
	ActualMinutes    *int
	CreatedAt        time.Time
	ScheduledFor     *time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CanceledAt       *time.Time
	CanceledBy       *kernel.UUID
	CancelReason     string
	Version          int
	Slots            []*ScheduleSlot
}

// RestoreJob rebuilds a Job from storage and re-checks every invariant.
func RestoreJob(s Snapshot) (*Job, error) {
	j := &Job{
		cleanerID:     s.CleanerID,
		status:        s.Status,
		finalCost:     s.FinalCost,
		actualMinutes: s.ActualMinutes,
		createdAt:     s.CreatedAt,
		scheduledFor:  s.ScheduledFor,
		startedAt:     s.StartedAt,
		completedAt:   s.CompletedAt,
		canceledAt:    s.CanceledAt,
		canceledBy:    s.CanceledBy,
		cancelReason:  s.CancelReason,
		version:       s.Version,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		j.setID(s.ID),
		j.setClientID(s.ClientID),
		j.setLocation(s.Location),
		j.setDescription(s.Description),
		j.setEstimatedMinutes(s.EstimatedMinutes),
		j.setPricing(s.RatePerMinute, s.BaseCost),
		s.Status.Validate(),
		s.Status.ValidateCanHaveCleaner(s.CleanerID != nil),
		j.setSlots(s.Slots),
	); err != nil {
		return nil, err
	}

	return j, nil
}

func (j *Job) Validate() error {
	if j == nil {
		return ErrJobIsNotConstructed
	}
	return j.guard.Validate(ErrJobIsNotConstructed)
}

func (j *Job) ID() kernel.UUID {
	return j.id
}

func (j *Job) ClientID() kernel.UUID {
	return j.clientID
}

// CleanerID returns the assigned cleaner, nil while Pending or after cancellation.
func (j *Job) CleanerID() *kernel.UUID {
	return j.cleanerID
}

func (j *Job) Status() Status {
	return j.status
}

func (j *Job) Location() kernel.Location {
	return j.location
}

func (j *Job) Description() string {
	return j.description
}

func (j *Job) EstimatedMinutes() int {
	return j.estimatedMinutes
}

func (j *Job) RatePerMinute() kernel.Money {
	return j.ratePerMinute
}

// HourlyRate is the per-minute rate scaled to an hour, the unit cleaners price themselves in.
func (j *Job) HourlyRate() kernel.Money {
	return j.ratePerMinute.Times(60)
}

func (j *Job) BaseCost() kernel.Money {
	return j.baseCost
}

func (j *Job) FinalCost() *kernel.Money {
	return j.finalCost
}

func (j *Job) ActualMinutes() *int {
	return j.actualMinutes
}

func (j *Job) CreatedAt() time.Time {
	return j.createdAt
}

func (j *Job) ScheduledFor() *time.Time {
	return j.scheduledFor
}

func (j *Job) StartedAt() *time.Time {
	return j.startedAt
}

func (j *Job) CompletedAt() *time.Time {
	return j.completedAt
}

func (j *Job) CanceledAt() *time.Time {
	return j.canceledAt
}

func (j *Job) CanceledBy() *kernel.UUID {
	return j.canceledBy
}

func (j *Job) CancelReason() string {
	return j.cancelReason
}

// Version is the optimistic-concurrency counter of the persisted row.
func (j *Job) Version() int {
	return j.version
}

func (j *Job) Slots() []*ScheduleSlot {
	out := make([]*ScheduleSlot, len(j.slots))
	copy(out, j.slots)
	return out
}

// Slot finds an owned slot by id.
func (j *Job) Slot(slotID kernel.UUID) (*ScheduleSlot, error) {
	for _, s := range j.slots {
		if s.ID().IsEqual(slotID) {
			return s, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("slot", slotID.String())
}

// AcceptedSlot returns the single accepted slot, or nil.
func (j *Job) AcceptedSlot() *ScheduleSlot {
	for _, s := range j.slots {
		if s.IsAccepted() {
			return s
		}
	}
	return nil
}

// EarliestPendingSlot returns the pending slot with the earliest start, or nil.
func (j *Job) EarliestPendingSlot() *ScheduleSlot {
	var earliest *ScheduleSlot
	for _, s := range j.slots {
		if s.IsPending() && (earliest == nil || s.Start().Before(earliest.Start())) {
			earliest = s
		}
	}
	return earliest
}

// Window is the committed work window [scheduledFor, scheduledFor+estimated), if scheduled.
func (j *Job) Window() (kernel.TimeWindow, bool) {
	if j.scheduledFor == nil {
		return kernel.TimeWindow{}, false
	}
	w, err := kernel.WindowFrom(*j.scheduledFor, j.estimatedMinutes)
	if err != nil {
		return kernel.TimeWindow{}, false
	}
	return w, true
}

// ProposedWindow is the window a cleaner would be booked over: the scheduled window,
// else the earliest pending slot's. A job with neither has no window yet.
func (j *Job) ProposedWindow() (kernel.TimeWindow, bool) {
	if w, ok := j.Window(); ok {
		return w, true
	}
	if slot := j.EarliestPendingSlot(); slot != nil {
		return slot.Window(), true
	}
	return kernel.TimeWindow{}, false
}

// IsAssignedTo reports whether cleanerID is the assigned cleaner.
func (j *Job) IsAssignedTo(cleanerID kernel.UUID) bool {
	return j.cleanerID != nil && j.cleanerID.IsEqual(cleanerID)
}

// ProposeSlot adds a pending slot. Allowed while Pending or Scheduled; the window must start
// after now and its length must be within SlotDurationTolerance of the estimate. A client
// proposal must come from the job's client; a cleaner proposal on an assigned job must come
// from the assigned cleaner.
func (j *Job) ProposeSlot(
	slotID, proposerID kernel.UUID,
	window kernel.TimeWindow,
	proposedByCleaner bool,
	now time.Time,
) (*ScheduleSlot, error) {
	if err := j.status.ValidateNegotiable(); err != nil {
		return nil, err
	}
	if !proposedByCleaner && !j.clientID.IsEqual(proposerID) {
		return nil, errs.NewNotAuthorizedError(proposerID.String(), "propose a slot for this job")
	}
	if proposedByCleaner && j.cleanerID != nil && !j.cleanerID.IsEqual(proposerID) {
		return nil, errs.NewNotAuthorizedError(proposerID.String(), "propose a slot for this job")
	}
	if !window.Start().After(now) {
		return nil, errs.NewValueIsInvalidErrorWithCause("start",
			fmt.Errorf("%s is not in the future", window.Start().Format(time.RFC3339)))
	}
	expected := time.Duration(j.estimatedMinutes) * time.Minute
	if diff := window.Duration() - expected; diff > SlotDurationTolerance || diff < -SlotDurationTolerance {
		return nil, errs.NewValueIsInvalidErrorWithCause("slot duration",
			fmt.Errorf("%s differs from the estimated %s by more than %s", window.Duration(), expected, SlotDurationTolerance))
	}

	slot, err := NewScheduleSlot(slotID, j.id, proposerID, window, proposedByCleaner, now)
	if err != nil {
		return nil, err
	}
	j.slots = append(j.slots, slot)
	return slot, nil
}

// AcceptSlot marks a pending slot accepted. Only the client may accept and only one slot per
// job can ever be accepted. Siblings stay pending; they are unreachable for acceptance.
func (j *Job) AcceptSlot(slotID, clientID kernel.UUID) (*ScheduleSlot, error) {
	if err := j.status.ValidateNegotiable(); err != nil {
		return nil, err
	}
	if !j.clientID.IsEqual(clientID) {
		return nil, errs.NewNotAuthorizedError(clientID.String(), "accept a slot for this job")
	}
	slot, err := j.Slot(slotID)
	if err != nil {
		return nil, err
	}
	if j.AcceptedSlot() != nil {
		return nil, ErrSlotAlreadyAccepted
	}
	if err = slot.accept(); err != nil {
		return nil, err
	}
	return slot, nil
}

// RejectSlot declines a pending slot on behalf of the client.
func (j *Job) RejectSlot(slotID, clientID kernel.UUID) (*ScheduleSlot, error) {
	if err := j.status.ValidateNegotiable(); err != nil {
		return nil, err
	}
	if !j.clientID.IsEqual(clientID) {
		return nil, errs.NewNotAuthorizedError(clientID.String(), "reject a slot for this job")
	}
	slot, err := j.Slot(slotID)
	if err != nil {
		return nil, err
	}
	if err = slot.reject(); err != nil {
		return nil, err
	}
	return slot, nil
}

// Assign schedules the job for cleanerID on the accepted slot slotID. The caller is
// responsible for the availability check against the cleaner's other commitments.
func (j *Job) Assign(cleanerID, slotID, actorID kernel.UUID, now time.Time) error {
	if err := cleanerID.Validate(); err != nil {
		return err
	}
	if j.cleanerID != nil {
		return ErrCleanerAlreadyAssigned
	}
	next, err := j.status.Schedule()
	if err != nil {
		return err
	}
	slot, err := j.Slot(slotID)
	if err != nil {
		return err
	}
	if !slot.IsAccepted() {
		return errs.NewValueIsInvalidErrorWithCause("slot", fmt.Errorf("slot %s is %s, not accepted", slotID, slot.Acceptance()))
	}

	start := slot.Start()
	prev := j.status
	j.status = next
	j.cleanerID = &cleanerID
	j.scheduledFor = &start
	j.record(prev, next, actorID, now)
	return nil
}

// Start moves a Scheduled job to InProgress. Only the assigned cleaner may start it.
func (j *Job) Start(cleanerID kernel.UUID, now time.Time) error {
	next, err := j.status.Start()
	if err != nil {
		return err
	}
	if !j.IsAssignedTo(cleanerID) {
		return errs.NewNotAuthorizedError(cleanerID.String(), "start this job")
	}

	prev := j.status
	j.status = next
	j.startedAt = &now
	j.record(prev, next, cleanerID, now)
	return nil
}

// Complete closes an InProgress job with the measured duration and the final cost.
func (j *Job) Complete(cleanerID kernel.UUID, actualMinutes int, finalCost kernel.Money, now time.Time) error {
	next, err := j.status.Complete()
	if err != nil {
		return err
	}
	if !j.IsAssignedTo(cleanerID) {
		return errs.NewNotAuthorizedError(cleanerID.String(), "complete this job")
	}
	if j.startedAt == nil {
		return errs.NewValueIsRequiredError("startedAt")
	}
	if actualMinutes < 0 {
		return errs.NewValueIsOutOfRangeError("actualMinutes", actualMinutes, 0, MaxEstimatedMinutes*2)
	}

	prev := j.status
	j.status = next
	j.actualMinutes = &actualMinutes
	j.finalCost = &finalCost
	j.completedAt = &now
	j.record(prev, next, cleanerID, now)
	return nil
}

// WallClockMinutes is the elapsed time since start, used to flag reported-duration discrepancies.
func (j *Job) WallClockMinutes(now time.Time) int {
	if j.startedAt == nil {
		return 0
	}
	return int(math.Round(now.Sub(*j.startedAt).Minutes()))
}

// MarkPaid moves a Completed job to Paid. It reports false without error when the job is
// already Paid so repeated settlement is harmless.
func (j *Job) MarkPaid(actorID kernel.UUID, now time.Time) (bool, error) {
	if j.status == Paid {
		return false, nil
	}
	next, err := j.status.MarkPaid()
	if err != nil {
		return false, err
	}

	prev := j.status
	j.status = next
	j.record(prev, next, actorID, now)
	return true, nil
}

// Cancel withdraws the job. A client actor must own the job, a cleaner actor must be the
// assigned cleaner. The cleaner reference is released so the schedule frees up.
func (j *Job) Cancel(actorID kernel.UUID, isClient bool, reason string, now time.Time) error {
	next, err := j.status.Cancel()
	if err != nil {
		return err
	}
	if isClient && !j.clientID.IsEqual(actorID) {
		return errs.NewNotAuthorizedError(actorID.String(), "cancel this job")
	}
	if !isClient && !j.IsAssignedTo(actorID) {
		return errs.NewNotAuthorizedError(actorID.String(), "cancel this job")
	}

	prev := j.status
	j.status = next
	j.cleanerID = nil
	j.canceledAt = &now
	j.canceledBy = &actorID
	j.cancelReason = strings.TrimSpace(reason)
	j.record(prev, next, actorID, now)
	return nil
}

// PullEvents returns the recorded lifecycle events and clears them.
func (j *Job) PullEvents() []LifecycleEvent {
	events := j.events
	j.events = nil
	return events
}

func (j *Job) record(from, to Status, actorID kernel.UUID, now time.Time) {
	var cleanerID *kernel.UUID
	if j.cleanerID != nil {
		id := *j.cleanerID
		cleanerID = &id
	}
	j.events = append(j.events, LifecycleEvent{
		JobID:      j.id,
		ClientID:   j.clientID,
		CleanerID:  cleanerID,
		From:       from,
		To:         to,
		ActorID:    actorID,
		OccurredAt: now,
	})
}

func (j *Job) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	j.id = id
	return nil
}

func (j *Job) setClientID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("clientID", err)
	}
	j.clientID = id
	return nil
}

func (j *Job) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	j.location = location
	return nil
}

func (j *Job) setDescription(description string) error {
	description = strings.TrimSpace(description)
	if len(description) > descriptionMaxLength {
		return errs.NewValueIsOutOfRangeError("description length", len(description), 0, descriptionMaxLength)
	}
	j.description = description
	return nil
}

func (j *Job) setEstimatedMinutes(minutes int) error {
	if minutes <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("estimatedMinutes", fmt.Errorf("%d is not greater than 0", minutes))
	}
	if minutes > MaxEstimatedMinutes {
		return errs.NewValueIsOutOfRangeError("estimatedMinutes", minutes, 1, MaxEstimatedMinutes)
	}
	j.estimatedMinutes = minutes
	return nil
}

func (j *Job) setPricing(ratePerMinute, baseCost kernel.Money) error {
	if ratePerMinute.IsZero() {
		return errs.NewValueIsRequiredError("ratePerMinute")
	}
	if baseCost.IsZero() {
		return errs.NewValueIsRequiredError("baseCost")
	}
	j.ratePerMinute = ratePerMinute
	j.baseCost = baseCost
	return nil
}

func (j *Job) setSlots(slots []*ScheduleSlot) error {
	accepted := 0
	for _, s := range slots {
		if err := s.Validate(); err != nil {
			return err
		}
		if s.IsAccepted() {
			accepted++
		}
	}
	if accepted > 1 {
		return ErrSlotAlreadyAccepted
	}
	j.slots = slots
	return nil
}
