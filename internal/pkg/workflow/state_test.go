package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

func TestState_RoundTrip(t *testing.T) {
	var s State
	_, err := s.Begin(regularizationChain, "e-req", user.RoleEmployee, now)
	require.NoError(t, err)
	assert.Equal(t, LabelPending, s.Status)
	assert.Equal(t, user.LevelTeamManager, s.CurrentLevel)
	assert.True(t, s.IsOpen())

	w, err := s.Workflow("e-req")
	require.NoError(t, err)
	_, err = w.Approve(actor("tm", user.RoleTeamManager), "", now)
	require.NoError(t, err)

	// The persisted state is untouched until Sync.
	assert.Equal(t, LabelPending, s.Status)
	assert.Len(t, s.AuditTrail, 1)

	s.Sync(w)
	assert.Equal(t, LabelUnderReview, s.Status)
	assert.Equal(t, user.LevelHR, s.CurrentLevel)
	assert.Equal(t, []string{"u-tm"}, s.ApproverIDs())
	assert.Nil(t, s.FinalApproverID)

	w, err = s.Workflow("e-req")
	require.NoError(t, err)
	require.NoError(t, w.Reject(actor("hr", user.RoleHR), "no", now))
	s.Sync(w)
	assert.False(t, s.IsOpen())
	require.NotNil(t, s.FinalApproverID)
	assert.Equal(t, "u-hr", *s.FinalApproverID)
}

func TestVisibility(t *testing.T) {
	var s State
	_, err := s.Begin(regularizationChain, "e-req", user.RoleEmployee, now)
	require.NoError(t, err)

	assert.True(t, VisibilityFor(actor("req", user.RoleEmployee)).CanSee("e-req", s))
	assert.False(t, VisibilityFor(actor("x", user.RoleEmployee)).CanSee("e-req", s))
	assert.True(t, VisibilityFor(actor("tm", user.RoleTeamManager)).CanSee("e-req", s))
	assert.False(t, VisibilityFor(actor("tl", user.RoleTeamLeader)).CanSee("e-req", s))
	assert.True(t, VisibilityFor(actor("vp", user.RoleVP)).CanSee("e-req", s))

	w, err := s.Workflow("e-req")
	require.NoError(t, err)
	_, err = w.Approve(actor("tm", user.RoleTeamManager), "", now)
	require.NoError(t, err)
	s.Sync(w)

	// Moved on to HR, still visible to the manager who approved it.
	assert.True(t, VisibilityFor(actor("tm", user.RoleTeamManager)).CanSee("e-req", s))
	assert.False(t, VisibilityFor(actor("tm2", user.RoleTeamManager)).CanSee("e-req", s))
}
