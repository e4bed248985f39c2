package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestamps(t *testing.T) {
	local := time.Date(2026, 4, 5, 9, 30, 0, 123, time.FixedZone("EST", -5*3600))

	s := FormatTimestamp(local)
	assert.Equal(t, "2026-04-05T14:30:00.000000123Z", s)
	assert.True(t, ParseTimestamp(s).Equal(local))

	assert.Less(t, FormatTimestamp(local), FormatTimestamp(local.Add(time.Second)))
	assert.True(t, ParseTimestamp("yesterday").IsZero())
}
