package services

import (
	"cmp"
	"math"
	"slices"

	"cleaning/internal/core/domain/model/cleaner"
	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
)

const (
	// HighQualityMatch is the score from which a match is worth notifying.
	HighQualityMatch = 0.8
)

// The allowed relative deviation between job and cleaner hourly rates, as the exact fraction 1/5.
const (
	rateBandNum = 1
	rateBandDen = 5
)

// MatchScore is a transient ranking of one cleaner against one job.
type MatchScore struct {
	CleanerID kernel.UUID
	JobID     kernel.UUID
	Score     float64
}

func (m MatchScore) IsHighQuality() bool {
	return m.Score >= HighQualityMatch
}

// MatchFoundEvent tells a cleaner about a job they match well.
type MatchFoundEvent struct {
	JobID     kernel.UUID
	CleanerID kernel.UUID
	Score     float64
}

func (MatchFoundEvent) Name() string {
	return "match.found"
}

// MatchingEngine scores cleaner/job pairs and ranks candidates. Availability against
// the cleaners' schedules is checked by the caller with ConflictChecker.
type MatchingEngine struct{}

func NewMatchingEngine() MatchingEngine {
	return MatchingEngine{}
}

// Score multiplies quality, experience, price fit and reliability factors into [0, 1].
func (MatchingEngine) Score(j *job.Job, c *cleaner.Profile) float64 {
	jobRate := j.HourlyRate().Units()
	cleanerRate := c.HourlyRate().Units()

	quality := 0.7 + 0.3*math.Min(c.Rating()/5, 1)
	experience := 0.8 + 0.2*math.Min(float64(c.CompletedJobs())/100, 1)

	priceFit := 0.8
	if jobRate > 0 {
		priceFit = 0.8 + 0.2*math.Max(1-math.Abs(jobRate-cleanerRate)/jobRate, 0)
	}

	reliability := 1.0
	if c.TotalJobs() > 0 {
		reliability = 0.7 + 0.3*float64(c.CompletedJobs())/float64(c.TotalJobs())
	}

	return quality * experience * priceFit * reliability
}

// WithinRateBand reports whether the cleaner's hourly rate is within ±20% of the job's.
func (MatchingEngine) WithinRateBand(j *job.Job, c *cleaner.Profile) bool {
	jobRate := j.HourlyRate().Minor()
	cleanerRate := c.HourlyRate().Minor()
	return cleanerRate*rateBandDen >= jobRate*(rateBandDen-rateBandNum) &&
		cleanerRate*rateBandDen <= jobRate*(rateBandDen+rateBandNum)
}

// IsCandidate combines the work eligibility flags with the rate band.
func (m MatchingEngine) IsCandidate(j *job.Job, c *cleaner.Profile) bool {
	return c.IsAvailableForWork() && m.WithinRateBand(j, c)
}

// RankCleaners scores eligible cleaners for a job, best first, ties broken by cleaner id.
func (m MatchingEngine) RankCleaners(j *job.Job, cleaners []*cleaner.Profile, limit int) []MatchScore {
	scores := make([]MatchScore, 0, len(cleaners))
	for _, c := range cleaners {
		if !m.IsCandidate(j, c) {
			continue
		}
		scores = append(scores, MatchScore{CleanerID: c.ID(), JobID: j.ID(), Score: m.Score(j, c)})
	}
	slices.SortFunc(scores, func(a, b MatchScore) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return a.CleanerID.Compare(b.CleanerID)
	})
	return truncate(scores, limit)
}

// RankJobs scores jobs for a cleaner, best first, ties broken by job id.
func (m MatchingEngine) RankJobs(c *cleaner.Profile, jobs []*job.Job, limit int) []MatchScore {
	scores := make([]MatchScore, 0, len(jobs))
	for _, j := range jobs {
		if j.Status() != job.Pending || !m.IsCandidate(j, c) {
			continue
		}
		scores = append(scores, MatchScore{CleanerID: c.ID(), JobID: j.ID(), Score: m.Score(j, c)})
	}
	slices.SortFunc(scores, func(a, b MatchScore) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return a.JobID.Compare(b.JobID)
	})
	return truncate(scores, limit)
}

func truncate(scores []MatchScore, limit int) []MatchScore {
	if limit > 0 && len(scores) > limit {
		return scores[:limit]
	}
	return scores
}
