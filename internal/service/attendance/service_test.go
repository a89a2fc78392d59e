package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type memRepo struct {
	mu           sync.Mutex
	records      map[string]attendance.Record
	seq          int
	beforeUpdate func(id string)
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[string]attendance.Record)}
}

func (m *memRepo) Create(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.EmployeeID == rec.EmployeeID && r.Date.Equal(rec.Date) {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
	}
	m.seq++
	rec.ID = fmt.Sprintf("att-%d", m.seq)
	rec.Version = 1
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return rec, nil
}

func (m *memRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.EmployeeID == employeeID && r.Date.Equal(date) {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memRepo) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return m.GetByEmployeeAndDate(ctx, employeeID, date)
}

func (m *memRepo) GetOpenSessionForUpdate(_ context.Context, employeeID string) (*attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *attendance.Record
	for _, r := range m.records {
		if r.EmployeeID == employeeID && r.IsOpen() && (latest == nil || r.Date.After(latest.Date)) {
			r := r
			latest = &r
		}
	}
	return latest, nil
}

func (m *memRepo) Update(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	if m.beforeUpdate != nil {
		m.beforeUpdate(rec.ID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[rec.ID]
	if !ok || stored.Version != rec.Version {
		return attendance.Record{}, attendance.ErrConcurrentUpdate
	}
	rec.Version++
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memRepo) List(_ context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if filter.EmployeeID != nil && r.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memRepo) ListOpenInactiveSince(_ context.Context, before time.Time) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if r.IsOpen() && r.LastActivityTime != nil && r.LastActivityTime.Before(before) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) Statistics(_ context.Context, filter attendance.StatisticsFilter) (attendance.Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st attendance.Statistics
	for _, r := range m.records {
		if filter.EmployeeID != nil && r.EmployeeID != *filter.EmployeeID {
			continue
		}
		st.TotalRecords++
		if r.Status == attendance.StatusPresent {
			st.PresentDays++
		}
		if r.IsLate {
			st.LateDays++
		}
		st.TotalHours += r.TotalHours
	}
	return st, nil
}

func (m *memRepo) bump(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.records[id]
	r.Version++
	m.records[id] = r
}

type staticPolicy policy.WorkHourPolicy

func (p staticPolicy) Current(context.Context) (policy.WorkHourPolicy, error) {
	return policy.WorkHourPolicy(p), nil
}

type directTx struct{}

func (directTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (d *recordingDispatcher) Dispatch(_ context.Context, req notification.CreateNotificationRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, req)
}

type fixture struct {
	svc        *AttendanceServiceImpl
	repo       *memRepo
	dispatcher *recordingDispatcher
	clock      time.Time
}

func newFixture() *fixture {
	f := &fixture{repo: newMemRepo(), dispatcher: &recordingDispatcher{}, clock: at(9, 0)}
	svc := NewAttendanceService(f.repo, staticPolicy(testPolicy()), directTx{}, f.dispatcher).(*AttendanceServiceImpl)
	svc.now = func() time.Time { return f.clock }
	f.svc = svc
	return f
}

var (
	employee = user.Actor{UserID: "u-1", EmployeeID: "e-1", Role: user.RoleEmployee}
	other    = user.Actor{UserID: "u-2", EmployeeID: "e-2", Role: user.RoleEmployee}
	hr       = user.Actor{UserID: "u-hr", EmployeeID: "e-hr", Role: user.RoleHR}
)

func TestCheckIn(t *testing.T) {
	f := newFixture()
	f.clock = at(9, 45)
	ctx := context.Background()

	resp, err := f.svc.CheckIn(ctx, employee, attendance.CheckInRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", resp.Date)
	assert.True(t, resp.IsLate)
	assert.Equal(t, 45, resp.LateMinutes)
	assert.Equal(t, 60, resp.BreakMinutes)
	assert.Equal(t, string(attendance.StatusPresent), resp.Status)

	_, err = f.svc.CheckIn(ctx, employee, attendance.CheckInRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckIn_OverCorrectionWithoutTimes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	regID := "reg-1"
	seeded, err := f.repo.Create(ctx, attendance.Record{
		EmployeeID:       "e-1",
		Date:             at(0, 0),
		IsRegularized:    true,
		RegularizationID: &regID,
		Derived:          attendance.Derived{Status: attendance.StatusOnLeave},
	})
	require.NoError(t, err)
	seeded.History.Append(attendance.ActionRegularized, "u-vp", regID, at(8, 0))
	seeded, err = f.repo.Update(ctx, seeded)
	require.NoError(t, err)

	f.clock = at(9, 0)
	resp, err := f.svc.CheckIn(ctx, employee, attendance.CheckInRequest{})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, resp.ID)
	assert.False(t, resp.IsRegularized)
	assert.Equal(t, string(attendance.StatusPresent), resp.Status)

	f.clock = at(13, 0)
	resp, err = f.svc.CheckOut(ctx, employee, attendance.CheckOutRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusHalfDay), resp.Status)
	require.NotNil(t, resp.RegularizationID)
	assert.Equal(t, regID, *resp.RegularizationID)

	rec, err := f.repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.True(t, rec.History.Has(attendance.ActionRegularized, regID))
}

func TestCheckIn_RequiresEmployee(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CheckIn(context.Background(), user.Actor{UserID: "u-x", Role: user.RoleAdmin}, attendance.CheckInRequest{})
	assert.ErrorIs(t, err, user.ErrEmployeeIDRequired)
}

func TestCheckIn_InvalidBreak(t *testing.T) {
	f := newFixture()
	negative := -10
	_, err := f.svc.CheckIn(context.Background(), employee, attendance.CheckInRequest{BreakMinutes: &negative})
	assert.Error(t, err)
	assert.Empty(t, f.repo.records)
}

func TestCheckOut(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CheckOut(ctx, employee, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	f.clock = at(9, 0)
	_, err = f.svc.CheckIn(ctx, employee, attendance.CheckInRequest{})
	require.NoError(t, err)

	f.clock = at(20, 0)
	resp, err := f.svc.CheckOut(ctx, employee, attendance.CheckOutRequest{})
	require.NoError(t, err)
	assert.InDelta(t, 10, resp.TotalHours, delta)
	assert.InDelta(t, 2, resp.AdjustedOvertimeHours, delta)
	assert.False(t, resp.IsEarly)

	_, err = f.svc.CheckOut(ctx, employee, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	rec, err := f.svc.GetAttendance(ctx, employee, resp.ID)
	require.NoError(t, err)
	require.Len(t, rec.History, 2)
	assert.Equal(t, attendance.ActionCheckedOut, rec.History[1].Action)
}

func TestPing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Ping(ctx, employee)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	_, err = f.svc.CheckIn(ctx, employee, attendance.CheckInRequest{})
	require.NoError(t, err)

	f.clock = at(11, 30)
	resp, err := f.svc.Ping(ctx, employee)
	require.NoError(t, err)
	require.NotNil(t, resp.LastActivityTime)
	assert.Equal(t, at(11, 30).Format(time.RFC3339), *resp.LastActivityTime)
}

func TestAutoCheckout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, employee, attendance.CheckInRequest{})
	require.NoError(t, err)
	f.clock = at(15, 0)
	_, err = f.svc.Ping(ctx, employee)
	require.NoError(t, err)

	// Inactive, but standard check-out has not passed yet.
	closed, err := f.svc.AutoCheckout(ctx, at(17, 30))
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	closed, err = f.svc.AutoCheckout(ctx, at(19, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	list, err := f.svc.GetMyAttendance(ctx, employee, attendance.MyAttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, list.Attendances, 1)
	rec := list.Attendances[0]
	assert.True(t, rec.AutoCheckedOut)
	require.NotNil(t, rec.CheckOut)
	assert.Equal(t, at(15, 0).Format(time.RFC3339), *rec.CheckOut)
	assert.InDelta(t, 5, rec.TotalHours, delta)
	assert.Equal(t, string(attendance.StatusHalfDay), rec.Status)
	assert.True(t, rec.IsEarly)

	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, notification.TypeAutoCheckout, f.dispatcher.sent[0].Type)
	assert.Equal(t, "e-1", *f.dispatcher.sent[0].RecipientID)

	closed, err = f.svc.AutoCheckout(ctx, at(20, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}

func TestAutoCheckout_LosesRaceToManualCheckout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.CheckIn(ctx, employee, attendance.CheckInRequest{})
	require.NoError(t, err)

	// Simulate a concurrent writer committing between the scan and the write.
	f.repo.beforeUpdate = func(id string) {
		f.repo.beforeUpdate = nil
		f.repo.bump(id)
	}

	closed, err := f.svc.AutoCheckout(ctx, at(23, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
	assert.Empty(t, f.dispatcher.sent)

	stored, err := f.repo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CheckOut)
	assert.False(t, stored.AutoCheckedOut)
}

func TestListAttendance_Scope(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, employee, attendance.CheckInRequest{})
	require.NoError(t, err)
	otherRec, err := f.svc.CheckIn(ctx, other, attendance.CheckInRequest{})
	require.NoError(t, err)

	mine, err := f.svc.ListAttendance(ctx, employee, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)
	assert.Equal(t, "1-1 of 1", mine.Showing)

	target := "e-2"
	_, err = f.svc.ListAttendance(ctx, employee, attendance.AttendanceFilter{EmployeeID: &target})
	assert.ErrorIs(t, err, attendance.ErrForbidden)

	all, err := f.svc.ListAttendance(ctx, hr, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)

	_, err = f.svc.GetAttendance(ctx, employee, otherRec.ID)
	assert.ErrorIs(t, err, attendance.ErrForbidden)
	_, err = f.svc.GetAttendance(ctx, hr, otherRec.ID)
	assert.NoError(t, err)
}

func TestStatistics(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.clock = at(10, 0)
	_, err := f.svc.CheckIn(ctx, employee, attendance.CheckInRequest{})
	require.NoError(t, err)
	f.clock = at(18, 0)
	_, err = f.svc.CheckOut(ctx, employee, attendance.CheckOutRequest{})
	require.NoError(t, err)

	stats, err := f.svc.Statistics(ctx, employee, attendance.StatisticsFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalRecords)
	assert.Equal(t, int64(1), stats.LateDays)
	assert.InDelta(t, 7, stats.TotalHours, delta)
	assert.InDelta(t, 7, stats.AverageHours, delta)
}
