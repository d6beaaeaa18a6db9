// Package jobs provides scheduled background tasks for payment reconciliation.
//
// Jobs are cron-based (github.com/robfig/cron/v3) and each runs in its own scheduler:
//
//  1. PaymentStatusPollJob queries the gateway for Processing payments whose callback is
//     overdue and reconciles definitive answers.
//  2. PaymentExpiryJob fails Pending and Processing payments older than the expiry window,
//     which unblocks a new payment attempt for the job.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(pollHandler, expireHandler, jobs.DefaultConfig(), logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed tick is logged and the next tick retries; a tick never overlaps the previous one.
package jobs
