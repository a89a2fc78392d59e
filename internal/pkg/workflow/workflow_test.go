package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

var (
	regularizationChain = []user.Level{user.LevelTeamManager, user.LevelHR, user.LevelVPAdmin}
	permissionChain     = []user.Level{user.LevelTeamLeader, user.LevelTeamManager, user.LevelHR}
	now                 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func actor(id string, role user.Role) user.Actor {
	return user.Actor{UserID: "u-" + id, EmployeeID: "e-" + id, Role: role}
}

func TestStart_SkipsLevelsAtOrBelowRequester(t *testing.T) {
	tests := []struct {
		name  string
		chain []user.Level
		role  user.Role
		want  user.Level
	}{
		{"employee starts at first level", regularizationChain, user.RoleEmployee, user.LevelTeamManager},
		{"team leader skips nothing in regularization", regularizationChain, user.RoleTeamLeader, user.LevelTeamManager},
		{"team manager starts at HR", regularizationChain, user.RoleTeamManager, user.LevelHR},
		{"hr starts at VP/Admin", regularizationChain, user.RoleHR, user.LevelVPAdmin},
		{"vp falls back to last level", regularizationChain, user.RoleVP, user.LevelVPAdmin},
		{"employee permission starts at team leader", permissionChain, user.RoleEmployee, user.LevelTeamLeader},
		{"team leader permission starts at team manager", permissionChain, user.RoleTeamLeader, user.LevelTeamManager},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Start(tt.chain, "e-req", tt.role, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.CurrentLevel())
			assert.Equal(t, LabelPending, w.Label())
			assert.Len(t, w.Trail, 1)
		})
	}
}

func TestStart_EmptyChain(t *testing.T) {
	_, err := Start(nil, "e-req", user.RoleEmployee, now)
	assert.ErrorIs(t, err, ErrEmptyChain)
}

func TestApprove_FullChain(t *testing.T) {
	w, err := Start(regularizationChain, "e-req", user.RoleEmployee, now)
	require.NoError(t, err)

	out, err := w.Approve(actor("tm", user.RoleTeamManager), "ok", now)
	require.NoError(t, err)
	assert.Equal(t, Outcome{From: user.LevelTeamManager, To: user.LevelHR}, out)
	assert.Equal(t, LabelUnderReview, w.Label())

	out, err = w.Approve(actor("hr", user.RoleHR), "", now)
	require.NoError(t, err)
	assert.Equal(t, user.LevelVPAdmin, out.To)

	out, err = w.Approve(actor("admin", user.RoleAdmin), "final", now)
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, user.LevelCompleted, w.CurrentLevel())
	assert.Equal(t, LabelApproved, w.Label())
	require.NotNil(t, w.FinalApproverID())
	assert.Equal(t, "u-admin", *w.FinalApproverID())

	_, err = w.Approve(actor("vp", user.RoleVP), "", now)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestApprove_UnauthorizedLeavesStateUnchanged(t *testing.T) {
	w, err := Start(regularizationChain, "e-req", user.RoleEmployee, now)
	require.NoError(t, err)

	for _, role := range []user.Role{user.RoleEmployee, user.RoleTeamLeader, user.RoleHR, user.RoleVP} {
		_, err := w.Approve(actor(string(role), role), "", now)
		assert.ErrorIs(t, err, ErrUnauthorized, role)
		err = w.Reject(actor(string(role), role), "no", now)
		assert.ErrorIs(t, err, ErrUnauthorized, role)
	}

	assert.Equal(t, user.LevelTeamManager, w.CurrentLevel())
	assert.Equal(t, LabelPending, w.Label())
	assert.Len(t, w.Trail, 1)
	assert.Equal(t, DecisionOpen, w.Steps[0].Decision)
}

func TestApprove_SelfApprovalRefused(t *testing.T) {
	w, err := Start(regularizationChain, "e-admin", user.RoleAdmin, now)
	require.NoError(t, err)
	assert.Equal(t, user.LevelVPAdmin, w.CurrentLevel())

	_, err = w.Approve(actor("admin", user.RoleAdmin), "", now)
	assert.ErrorIs(t, err, ErrSelfApproval)

	out, err := w.Approve(actor("vp", user.RoleVP), "", now)
	require.NoError(t, err)
	assert.True(t, out.Completed)
}

func TestReject_TeamManagerRequesterRejectedAtHR(t *testing.T) {
	w, err := Start(regularizationChain, "e-tm", user.RoleTeamManager, now)
	require.NoError(t, err)
	assert.Equal(t, user.LevelHR, w.CurrentLevel())
	assert.Equal(t, DecisionSkipped, w.Steps[0].Decision)

	require.NoError(t, w.Reject(actor("hr", user.RoleHR), "insufficient evidence", now))
	assert.Equal(t, LabelRejected, w.Label())
	assert.Equal(t, user.LevelCompleted, w.CurrentLevel())
	require.NotNil(t, w.Steps[1].Comments)
	assert.Equal(t, "insufficient evidence", *w.Steps[1].Comments)

	_, err = w.Approve(actor("vp", user.RoleVP), "", now)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.ErrorIs(t, w.Cancel("e-tm", now), ErrAlreadyProcessed)
}

func TestCancel(t *testing.T) {
	t.Run("requester cancels pending", func(t *testing.T) {
		w, err := Start(permissionChain, "e-req", user.RoleEmployee, now)
		require.NoError(t, err)
		require.NoError(t, w.Cancel("e-req", now))
		assert.Equal(t, LabelCancelled, w.Label())
		last, ok := w.Trail.Last()
		require.True(t, ok)
		assert.Equal(t, ActionCancelled, last.Action)
	})

	t.Run("other user cannot cancel", func(t *testing.T) {
		w, err := Start(permissionChain, "e-req", user.RoleEmployee, now)
		require.NoError(t, err)
		assert.ErrorIs(t, w.Cancel("e-other", now), ErrNotRequester)
		assert.Equal(t, LabelPending, w.Label())
	})

	t.Run("under review cannot be cancelled", func(t *testing.T) {
		w, err := Start(permissionChain, "e-req", user.RoleEmployee, now)
		require.NoError(t, err)
		_, err = w.Approve(actor("tl", user.RoleTeamLeader), "", now)
		require.NoError(t, err)
		assert.ErrorIs(t, w.Cancel("e-req", now), ErrAlreadyProcessed)
		assert.Equal(t, LabelUnderReview, w.Label())
	})
}

func TestRestore(t *testing.T) {
	w, err := Start(regularizationChain, "e-req", user.RoleEmployee, now)
	require.NoError(t, err)
	_, err = w.Approve(actor("tm", user.RoleTeamManager), "", now)
	require.NoError(t, err)

	restored, err := Restore(w.RequesterID, w.Steps, w.Label(), w.Trail)
	require.NoError(t, err)
	assert.Equal(t, user.LevelHR, restored.CurrentLevel())
	assert.Equal(t, LabelUnderReview, restored.Label())

	_, err = Restore("e-req", w.Steps, "Bogus", nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCurrentLevelNeverMovesBackwards(t *testing.T) {
	roles := []user.Role{user.RoleEmployee, user.RoleTeamLeader, user.RoleTeamManager, user.RoleHR, user.RoleVP, user.RoleAdmin}
	for seed := 0; seed < 200; seed++ {
		w, err := Start(regularizationChain, "e-req", roles[seed%len(roles)], now)
		require.NoError(t, err)

		prev := w.CurrentLevel().Rank()
		for i := 0; i < 10 && !w.IsTerminal(); i++ {
			role := roles[(seed*7+i*3)%len(roles)]
			if (seed+i)%5 == 0 {
				_ = w.Reject(actor(string(role), role), "r", now)
			} else {
				_, _ = w.Approve(actor(string(role), role), "", now)
			}
			cur := w.CurrentLevel().Rank()
			assert.GreaterOrEqual(t, cur, prev)
			prev = cur
		}
	}
}
