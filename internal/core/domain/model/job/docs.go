// Package job implements the Job aggregate: the lifecycle state machine of a cleaning job,
// the schedule slots negotiated between client and cleaner, and the lifecycle events
// emitted on every transition.
//
// The package includes:
//   - Job: the aggregate root, mutated only through its transition methods
//   - ScheduleSlot: a proposed time window owned by exactly one job
//   - Status: Pending, Scheduled, InProgress, Completed, Paid, Canceled
//   - LifecycleEvent: a recorded transition, published after commit
//
// Key business rules:
//   - a cleaner is assigned iff the job is Scheduled, InProgress, Completed or Paid
//   - at most one slot per job is ever accepted
//   - MarkPaid on a Paid job is a successful no-op
//   - only the client or the assigned cleaner may cancel, and never after completion
package job
