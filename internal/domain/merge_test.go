package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoalesceString(t *testing.T) {
	assert.Equal(t, "new", CoalesceString("old", "new"))
	assert.Equal(t, "old", CoalesceString("old", ""))
	assert.Equal(t, "", CoalesceString("", ""))
}

func TestCoalesceInt(t *testing.T) {
	prev, next := intPtr(1), intPtr(2)

	assert.Equal(t, next, CoalesceInt(prev, next))
	assert.Equal(t, prev, CoalesceInt(prev, nil))
	assert.Nil(t, CoalesceInt(nil, nil))
}

func TestFirstWriteTime(t *testing.T) {
	earlier := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	later := earlier.Add(48 * time.Hour)

	// Once populated, never overwritten.
	assert.Equal(t, &earlier, FirstWriteTime(&earlier, &later))
	assert.Equal(t, &later, FirstWriteTime(nil, &later))
	assert.Nil(t, FirstWriteTime(nil, nil))
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("  Reading ")
	assert.True(t, ok)
	assert.Equal(t, StatusReading, s)

	_, ok = ParseStatus("rereading")
	assert.False(t, ok)

	for _, s := range AllStatuses {
		assert.True(t, s.Valid(), "status %s", s)
	}
}
