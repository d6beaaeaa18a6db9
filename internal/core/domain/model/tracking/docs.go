// Package tracking models the live work session of a job in progress. Sessions are
// ephemeral: they live in a fast key-value store, keyed by job, and at most one active
// session exists per job and per cleaner.
package tracking
