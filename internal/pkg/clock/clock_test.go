package clock_test

import (
	"testing"
	"time"

	"cleaning/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
)

func TestClock_Now(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, at, clock.Fixed(at).Now())

	var nilClock clock.Clock
	assert.WithinDuration(t, time.Now(), nilClock.Now(), time.Second)
	assert.Equal(t, time.UTC, clock.Clock(clock.System).Now().Location())
}
