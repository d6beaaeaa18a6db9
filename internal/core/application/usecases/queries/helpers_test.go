package queries_test

import (
	"testing"
	"time"

	"cleaning/internal/core/domain/model/cleaner"
	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

// newJob is a 120 minute job at 10 KES per minute, 600 KES per hour.
func newJob(t *testing.T, clientID kernel.UUID, createdAt time.Time) *job.Job {
	t.Helper()
	loc, err := kernel.NewLocation("Argwings Kodhek Road 7", "Kilimani", -1.2906, 36.7870)
	require.NoError(t, err)
	rate, _ := kernel.NewMoney(1000)
	base, _ := kernel.NewMoney(120000)
	j, err := job.NewJob(kernel.NewUUID(), clientID, loc, "", 120, rate, base, createdAt)
	require.NoError(t, err)
	return j
}

func scheduledJob(t *testing.T, clientID, cleanerID kernel.UUID, start time.Time) *job.Job {
	t.Helper()
	j := newJob(t, clientID, now)
	window, err := kernel.WindowFrom(start, j.EstimatedMinutes())
	require.NoError(t, err)
	slot, err := j.ProposeSlot(kernel.NewUUID(), cleanerID, window, true, now)
	require.NoError(t, err)
	_, err = j.AcceptSlot(slot.ID(), clientID)
	require.NoError(t, err)
	require.NoError(t, j.Assign(cleanerID, slot.ID(), clientID, now))
	return j
}

func newCleaner(t *testing.T, hourlyMinor int64, rating float64, completed, total int) *cleaner.Profile {
	t.Helper()
	rate, _ := kernel.NewMoney(hourlyMinor)
	p, err := cleaner.NewProfile(kernel.NewUUID(), "Cleaner", rate, rating, completed, total, true, true)
	require.NoError(t, err)
	return p
}
