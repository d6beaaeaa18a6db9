package services_test

import (
	"testing"
	"time"

	"cleaning/internal/core/domain/model/cleaner"
	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func money(t *testing.T, minor int64) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(minor)
	require.NoError(t, err)
	return m
}

// pendingJob creates a job billed at ratePerMinute cents for 120 minutes.
func pendingJob(t *testing.T, ratePerMinute int64) *job.Job {
	t.Helper()
	loc, err := kernel.NewLocation("4 Ngong Road", "Nairobi", -1.3, 36.78)
	require.NoError(t, err)
	j, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), loc, "", 120,
		money(t, ratePerMinute), money(t, ratePerMinute*120), now)
	require.NoError(t, err)
	return j
}

func profile(t *testing.T, hourlyRate int64, rating float64, completed, total int) *cleaner.Profile {
	t.Helper()
	p, err := cleaner.NewProfile(kernel.NewUUID(), "Cleaner", money(t, hourlyRate), rating, completed, total, true, true)
	require.NoError(t, err)
	return p
}
