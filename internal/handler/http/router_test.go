package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/permission"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/regularization"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	requestID         = "0199a3c4-5e6f-4a8b-9c0d-1e2f3a4b5c6d"
)

var (
	employeeActor = user.Actor{UserID: "u-1", EmployeeID: "e-1", Role: user.RoleEmployee}
	hrActor       = user.Actor{UserID: "u-2", EmployeeID: "e-2", Role: user.RoleHR}
	vpNoEmployee  = user.Actor{UserID: "u-3", Role: user.RoleVP}
)

type stubPolicyService struct {
	policy.PolicyService
	updated bool
}

func (s *stubPolicyService) Current(ctx context.Context) (policy.WorkHourPolicy, error) {
	return policy.DefaultPolicy(), nil
}

func (s *stubPolicyService) Update(ctx context.Context, actor user.Actor, req policy.UpdatePolicyRequest) (policy.WorkHourPolicy, error) {
	s.updated = true
	return req.Merge(policy.DefaultPolicy()), nil
}

type stubAttendanceService struct {
	attendance.AttendanceService
	lastFilter attendance.AttendanceFilter
	checkInErr error
}

func (s *stubAttendanceService) CheckIn(ctx context.Context, actor user.Actor, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if s.checkInErr != nil {
		return attendance.AttendanceResponse{}, s.checkInErr
	}
	return attendance.AttendanceResponse{ID: "att-1", EmployeeID: actor.EmployeeID}, nil
}

func (s *stubAttendanceService) ListAttendance(ctx context.Context, actor user.Actor, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	s.lastFilter = filter
	return attendance.ListAttendanceResponse{Page: filter.Page, Limit: filter.Limit, Showing: "0 of 0"}, nil
}

type stubRegularizationService struct {
	regularization.RegularizationService
	submittedBy user.Actor
	approveErr  error
	calls       int
}

func (s *stubRegularizationService) Submit(ctx context.Context, actor user.Actor, req regularization.CreateRegularizationRequest) (regularization.RegularizationResponse, error) {
	s.submittedBy = actor
	return regularization.RegularizationResponse{ID: "reg-1", EmployeeID: actor.EmployeeID, RequestType: req.RequestType}, nil
}

func (s *stubRegularizationService) Approve(ctx context.Context, actor user.Actor, id string, req regularization.ApproveRegularizationRequest) (regularization.RegularizationResponse, error) {
	s.calls++
	if s.approveErr != nil {
		return regularization.RegularizationResponse{}, s.approveErr
	}
	return regularization.RegularizationResponse{ID: id}, nil
}

func (s *stubRegularizationService) Get(ctx context.Context, actor user.Actor, id string) (regularization.RegularizationResponse, error) {
	s.calls++
	return regularization.RegularizationResponse{ID: id}, nil
}

type stubPermissionService struct {
	permission.PermissionService
}

func (s *stubPermissionService) Get(ctx context.Context, actor user.Actor, id string) (permission.PermissionResponse, error) {
	return permission.PermissionResponse{}, permission.ErrPermissionNotFound
}

type stubNotificationService struct {
	notification.Service
	events chan notification.SSEEvent
}

func (s *stubNotificationService) GetNotifications(ctx context.Context, actor user.Actor, page, pageSize int) (notification.NotificationListResponse, error) {
	return notification.NotificationListResponse{Page: page, PageSize: pageSize}, nil
}

func (s *stubNotificationService) Subscribe(ctx context.Context, actor user.Actor) (<-chan notification.SSEEvent, func()) {
	return s.events, func() {}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type routerFixture struct {
	router         http.Handler
	jwt            jwt.Service
	policy         *stubPolicyService
	attendance     *stubAttendanceService
	regularization *stubRegularizationService
	notifications  *stubNotificationService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := &routerFixture{
		jwt:            jwt.NewJWTService(handlerTestSecret, time.Hour),
		policy:         &stubPolicyService{},
		attendance:     &stubAttendanceService{},
		regularization: &stubRegularizationService{},
		notifications:  &stubNotificationService{events: make(chan notification.SSEEvent, 1)},
	}
	f.router = NewRouter(RouterConfig{
		Logger:                slog.New(slog.NewTextHandler(io.Discard, nil)),
		AllowedOrigins:        []string{"http://localhost:3000"},
		JWTService:            f.jwt,
		HealthHandler:         NewHealthHandler(stubPinger{}),
		PolicyHandler:         NewPolicyHandler(f.policy),
		AttendanceHandler:     NewAttendanceHandler(f.attendance),
		RegularizationHandler: NewRegularizationHandler(f.regularization),
		PermissionHandler:     NewPermissionHandler(&stubPermissionService{}),
		NotificationHandler:   NewNotificationHandler(f.notifications, f.jwt),
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, path string, actor *user.Actor, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != nil {
		token, _, err := f.jwt.GenerateAccessToken(*actor)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestRouter_RequiresAccessToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/regularizations", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	streamToken, _, err := f.jwt.GenerateStreamToken(employeeActor)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/my", nil)
	req.Header.Set("Authorization", "Bearer "+streamToken)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_SubmitRegularizationPassesActor(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/regularizations", &employeeActor, map[string]string{
		"attendance_date": "2026-03-02",
		"request_type":    "Missed Check-out",
		"reason":          "Forgot",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, employeeActor, f.regularization.submittedBy)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env["success"])
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "reg-1", data["id"])
}

func TestRouter_RejectsUnknownBodyFields(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/regularizations", &employeeActor, map[string]string{"unexpected": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"self approval", workflow.ErrSelfApproval, http.StatusForbidden, "FORBIDDEN"},
		{"wrong level", workflow.ErrUnauthorized, http.StatusForbidden, "FORBIDDEN"},
		{"already processed", workflow.ErrAlreadyProcessed, http.StatusConflict, "CONFLICT"},
		{"concurrent update", regularization.ErrConcurrentUpdate, http.StatusConflict, "CONFLICT"},
		{"not found", regularization.ErrRegularizationNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"inconsistent override", regularization.ErrInconsistentTimes, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
		{"validation", validator.ValidationErrors{{Field: "check_in", Message: "bad"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped", errors.Join(errors.New("tx"), workflow.ErrAlreadyProcessed), http.StatusConflict, "CONFLICT"},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.regularization.approveErr = tt.err

			rec := f.do(t, http.MethodPost, "/api/v1/regularizations/"+requestID+"/approve", &hrActor, map[string]string{})

			assert.Equal(t, tt.want, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, false, env["success"])
			assert.Equal(t, tt.code, env["error"].(map[string]interface{})["code"])
		})
	}
}

func TestRouter_UnknownErrorIsOpaque(t *testing.T) {
	f := newRouterFixture(t)
	f.regularization.approveErr = errors.New("pq: connection refused to 10.0.0.5")

	rec := f.do(t, http.MethodPost, "/api/v1/regularizations/"+requestID+"/approve", &hrActor, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestRouter_PolicyUpdateRequiresCapability(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPut, "/api/v1/policy", &employeeActor, map[string]int{"late_threshold_minutes": 5})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, f.policy.updated)

	rec = f.do(t, http.MethodPut, "/api/v1/policy", &hrActor, map[string]int{"late_threshold_minutes": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, f.policy.updated)

	rec = f.do(t, http.MethodGet, "/api/v1/policy", &employeeActor, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CheckInRequiresEmployee(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/check-in", &vpNoEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/attendance/check-in", &employeeActor, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	f.attendance.checkInErr = attendance.ErrAlreadyCheckedIn
	rec = f.do(t, http.MethodPost, "/api/v1/attendance/check-in", &employeeActor, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_ListAttendanceParsesQuery(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/attendance?employee_id=e-9&status=Present&is_late=true&page=2&limit=5&sort_by=date&sort_order=asc", &hrActor, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := f.attendance.lastFilter
	require.NotNil(t, got.EmployeeID)
	assert.Equal(t, "e-9", *got.EmployeeID)
	assert.Equal(t, "Present", *got.Status)
	require.NotNil(t, got.IsLate)
	assert.True(t, *got.IsLate)
	assert.Nil(t, got.IsRegularized)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, "date", got.SortBy)
	assert.Equal(t, "asc", got.SortOrder)
}

func TestRouter_PermissionNotFound(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/permissions/"+requestID, &employeeActor, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_MalformedIDIsNotFound(t *testing.T) {
	f := newRouterFixture(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/regularizations/not-a-uuid"},
		{http.MethodPost, "/api/v1/regularizations/not-a-uuid/approve"},
		{http.MethodPost, "/api/v1/regularizations/42/cancel"},
		{http.MethodGet, "/api/v1/permissions/missing"},
		{http.MethodGet, "/api/v1/attendance/att-1"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := f.do(t, p.method, p.path, &hrActor, nil)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, "NOT_FOUND", env["error"].(map[string]interface{})["code"])
		})
	}
	assert.Zero(t, f.regularization.calls)

	rec := f.do(t, http.MethodGet, "/api/v1/regularizations/"+requestID, &hrActor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, requestID, decodeEnvelope(t, rec)["data"].(map[string]interface{})["id"])
	assert.Equal(t, 1, f.regularization.calls)
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	h := NewHealthHandler(stubPinger{err: errors.New("down")})
	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNotificationStream(t *testing.T) {
	f := newRouterFixture(t)
	server := httptest.NewServer(f.router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/notifications/stream")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	rec := f.do(t, http.MethodPost, "/api/v1/notifications/stream-token", &employeeActor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeEnvelope(t, rec)["data"].(map[string]interface{})["token"].(string)

	f.notifications.events <- notification.SSEEvent{
		Event: "notification",
		Data:  notification.NotificationResponse{ID: "n-1", Type: notification.TypeApproved, Title: "Regularization request approved"},
	}
	close(f.notifications.events)

	resp, err = http.Get(server.URL + "/api/v1/notifications/stream?token=" + token)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(body)
	assert.True(t, strings.HasPrefix(stream, "event: connected\n"))
	assert.Contains(t, stream, "event: notification\n")
	assert.Contains(t, stream, `"id":"n-1"`)
}
