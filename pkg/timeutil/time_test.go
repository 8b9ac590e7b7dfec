package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Now().Location())
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2006-01-02T15:04:05Z", "2015-02-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, 2, 1, 10, 30, 0, 0, time.UTC), parsed)

	_, err = ParseDate("2006-01-02", "not-a-date")
	assert.Error(t, err)
}

func TestFixedClock(t *testing.T) {
	instant := time.Date(2015, 1, 1, 0, 0, 0, 0, time.FixedZone("EST", -5*3600))
	clock := FixedClock{T: instant}

	// Always UTC, always the same instant.
	assert.Equal(t, time.UTC, clock.Now().Location())
	assert.True(t, clock.Now().Equal(instant))
	assert.Equal(t, clock.Now(), clock.Now())
}
