package services_test

import (
	"testing"

	"cleaning/internal/core/domain/model/cleaner"
	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchingEngine_Score(t *testing.T) {
	engine := services.NewMatchingEngine()
	j := pendingJob(t, 1000) // 600 KES per hour

	t.Run("perfect profile scores one", func(t *testing.T) {
		score := engine.Score(j, profile(t, 60000, 5, 100, 100))

		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("multiplies every factor", func(t *testing.T) {
		// quality 0.7+0.3*0.8=0.94, experience 0.8+0.2*0.5=0.9,
		// price fit 0.8+0.2*(1-60/600)=0.98, reliability 0.7+0.3*50/80=0.8875
		score := engine.Score(j, profile(t, 54000, 4, 50, 80))

		assert.InDelta(t, 0.94*0.9*0.98*0.8875, score, 1e-9)
	})

	t.Run("reliability is neutral without history", func(t *testing.T) {
		score := engine.Score(j, profile(t, 60000, 5, 0, 0))

		assert.InDelta(t, 0.8, score, 1e-9)
	})

	t.Run("monotonic in rating and completed jobs", func(t *testing.T) {
		prev := -1.0
		for _, rating := range []float64{0, 1, 2.5, 4, 5} {
			score := engine.Score(j, profile(t, 54000, rating, 10, 200))
			assert.GreaterOrEqual(t, score, prev)
			prev = score
		}

		prev = -1.0
		for _, completed := range []int{0, 10, 50, 100, 150, 200} {
			score := engine.Score(j, profile(t, 54000, 3, completed, 200))
			assert.GreaterOrEqual(t, score, prev)
			prev = score
		}
	})

	t.Run("stays within bounds", func(t *testing.T) {
		for _, p := range []*cleaner.Profile{
			profile(t, 1, 0, 0, 10),
			profile(t, 500000, 5, 1000, 1000),
		} {
			score := engine.Score(j, p)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	})
}

func TestMatchingEngine_WithinRateBand(t *testing.T) {
	engine := services.NewMatchingEngine()
	j := pendingJob(t, 1000)

	for rate, expected := range map[int64]bool{47999: false, 48000: true, 60000: true, 72000: true, 72001: false} {
		assert.Equal(t, expected, engine.WithinRateBand(j, profile(t, rate, 4, 1, 1)), "rate %d", rate)
	}
}

func TestMatchingEngine_RankCleaners(t *testing.T) {
	engine := services.NewMatchingEngine()
	j := pendingJob(t, 1000)

	best := profile(t, 60000, 5, 100, 100)
	good := profile(t, 60000, 4, 20, 25)
	outOfBand := profile(t, 90000, 5, 100, 100)
	inactive, err := cleaner.NewProfile(kernel.NewUUID(), "Idle", money(t, 60000), 5, 100, 100, false, true)
	require.NoError(t, err)

	ranked := engine.RankCleaners(j, []*cleaner.Profile{good, outOfBand, inactive, best}, 10)

	require.Len(t, ranked, 2)
	assert.True(t, ranked[0].CleanerID.IsEqual(best.ID()))
	assert.True(t, ranked[1].CleanerID.IsEqual(good.ID()))
	assert.True(t, ranked[0].IsHighQuality())
	assert.Len(t, engine.RankCleaners(j, []*cleaner.Profile{good, best}, 1), 1)
}

func TestMatchingEngine_RankCleanersBreaksTiesByID(t *testing.T) {
	engine := services.NewMatchingEngine()
	j := pendingJob(t, 1000)
	a := profile(t, 60000, 4, 10, 10)
	b := profile(t, 60000, 4, 10, 10)

	ranked := engine.RankCleaners(j, []*cleaner.Profile{a, b}, 0)

	require.Len(t, ranked, 2)
	assert.Negative(t, ranked[0].CleanerID.Compare(ranked[1].CleanerID))
}

func TestMatchingEngine_RankJobs(t *testing.T) {
	engine := services.NewMatchingEngine()
	c := profile(t, 60000, 4, 10, 12)
	near := pendingJob(t, 1000)
	far := pendingJob(t, 2000)
	closeEnough := pendingJob(t, 1100)
	canceled := pendingJob(t, 1000)
	require.NoError(t, canceled.Cancel(canceled.ClientID(), true, "", now))

	ranked := engine.RankJobs(c, []*job.Job{far, closeEnough, canceled, near}, 5)

	require.Len(t, ranked, 2)
	assert.True(t, ranked[0].JobID.IsEqual(near.ID()))
	assert.True(t, ranked[1].JobID.IsEqual(closeEnough.ID()))
}
