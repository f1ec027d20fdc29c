package clock_test

import (
	"testing"
	"time"

	"go-leavedesk/internal/shared/clock"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	at := time.Date(2026, 9, 1, 15, 45, 30, 0, time.UTC)
	clk := clock.Fixed(at)

	assert.Equal(t, at, clk.Now())
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), clk.Today())
}

func TestFixedNormalizesToUTC(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	at := time.Date(2026, 9, 2, 1, 0, 0, 0, jakarta)
	clk := clock.Fixed(at)

	assert.Equal(t, time.UTC, clk.Now().Location())
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), clk.Today())
}

func TestMidnight(t *testing.T) {
	at := time.Date(2026, 9, 1, 23, 59, 59, 999999999, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), clock.Midnight(at))
}
