package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrail_AppendKeepsOrder(t *testing.T) {
	var trail Trail
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	trail.Append("created", "emp-1", "Missed Check-Out", base)
	trail.Append("approved", "mgr-1", "Team Manager", base.Add(time.Hour))

	require.Len(t, trail, 2)
	assert.Equal(t, "created", trail[0].Action)
	assert.Equal(t, "approved", trail[1].Action)
	assert.Equal(t, time.UTC, trail[0].At.Location())

	last, ok := trail.Last()
	require.True(t, ok)
	assert.Equal(t, "mgr-1", last.ActorID)
	assert.True(t, trail.Has("approved", "Team Manager"))
	assert.False(t, trail.Has("approved", "HR"))
}

func TestTrail_EntriesIsACopy(t *testing.T) {
	var trail Trail
	trail.Append("created", "emp-1", "", time.Now())

	entries := trail.Entries()
	entries[0].Action = "tampered"

	assert.Equal(t, "created", trail[0].Action)

	clone := trail.Clone()
	clone.Append("extra", "x", "", time.Now())
	assert.Len(t, trail, 1)
}

func TestTrail_LastOnEmpty(t *testing.T) {
	var trail Trail
	_, ok := trail.Last()
	assert.False(t, ok)
	assert.Nil(t, trail.Clone())
}
