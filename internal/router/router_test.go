package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coaching/attendance/foundation/web"
	"coaching/attendance/internal/auth"
	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/pkg/config"
	"coaching/attendance/internal/pkg/metrics"
	"coaching/attendance/internal/repository/inmem"
	"coaching/attendance/internal/service/holiday"
	"coaching/attendance/internal/service/workflow"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	tenantID  = 1
	branchID  = 10
	batchID   = 100
	teacherID = 7
	adminID   = 50
)

type server struct {
	handler     http.Handler
	teacher     string
	admin       string
	branchAdmin string
	other       string
	shiftID     int
}

func newServer(t *testing.T) server {
	t.Helper()

	a, err := auth.New("test-key")
	require.NoError(t, err)

	shifts := inmem.NewShifts()
	// Starts at midnight with no grace: every check-in after 00:00:00 is late.
	midnight, err := shifts.Create(context.Background(), entity.Shift{
		TenantID: tenantID, Name: "Night", StartTime: "00:00", EndTime: "08:00",
	})
	require.NoError(t, err)

	registry := inmem.NewRegistry()
	registry.AddBatch(entity.Batch{ID: batchID, TenantID: tenantID, BranchID: branchID})
	registry.Enroll(batchID, 1, 2)
	registry.AddTeacher(entity.Teacher{ID: teacherID, TenantID: tenantID, BranchID: branchID, ShiftID: &midnight.ID})

	rules := inmem.NewRules()
	resolver := holiday.NewResolver(rules)
	log := zap.NewNop().Sugar()

	wf := workflow.New(inmem.NewLedger(), registry, shifts, resolver, config.DefaultPolicies(), log,
		metrics.New(prometheus.NewRegistry()), workflow.Config{RetryDelay: time.Millisecond})

	app := web.NewApp(log)
	require.NoError(t, NewRouter(app, a, wf, rules, resolver, shifts, nil).Init())

	token := func(c auth.Claims) string {
		s, err := a.GenerateToken(c)
		require.NoError(t, err)
		return s
	}
	branch, otherBranch := branchID, branchID+10

	return server{
		handler:     app,
		teacher:     token(auth.Claims{UserId: teacherID, TenantId: tenantID, BranchId: &branch, Role: auth.RoleTeacher}),
		admin:       token(auth.Claims{UserId: adminID, TenantId: tenantID, Role: auth.RoleAdmin}),
		branchAdmin: token(auth.Claims{UserId: adminID + 1, TenantId: tenantID, BranchId: &otherBranch, Role: auth.RoleAdmin}),
		other:       token(auth.Claims{UserId: adminID, TenantId: 2, Role: auth.RoleAdmin}),
		shiftID:     midnight.ID,
	}
}

func (s server) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec.Code, out
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "body: %v", body)
	return d
}

func TestSelfAttendanceIgnoresClientStatus(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	code, body := s.do(t, http.MethodPost, "/api/v1/attendance/self", s.teacher,
		map[string]interface{}{"status": "Present", "remarks": "on time, honest"})
	require.Equal(t, http.StatusOK, code, "body: %v", body)

	result := data(t, body)["result"].(map[string]interface{})
	assert.Equal(t, "Late", result["status"])
	assert.Equal(t, "Pending", result["approval_state"])
	assert.Equal(t, "TeacherSelf", result["subject_type"])
}

func TestApproveFlow(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	code, body := s.do(t, http.MethodPost, "/api/v1/attendance/self", s.teacher, nil)
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	id := int(data(t, body)["result"].(map[string]interface{})["id"].(float64))
	path := fmt.Sprintf("/api/v1/attendance/%d/approve", id)

	code, _ = s.do(t, http.MethodPatch, path, s.teacher, nil)
	assert.Equal(t, http.StatusForbidden, code, "teachers cannot approve")

	code, body = s.do(t, http.MethodPatch, path, s.other, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "TenantMismatch", body["kind"])

	code, body = s.do(t, http.MethodGet, "/api/v1/attendance/pending", s.admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, data(t, body)["count"])

	code, body = s.do(t, http.MethodPatch, path, s.admin, nil)
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	assert.Equal(t, "Approved", data(t, body)["approval_state"])

	code, body = s.do(t, http.MethodPatch, path, s.admin, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "InvalidApprovalTransition", body["kind"])
	assert.Equal(t, false, body["status"])

	code, body = s.do(t, http.MethodPost, "/api/v1/attendance/self", s.teacher, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "AlreadyApproved", body["kind"])
}

func TestRosterEndpoint(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	roster := func(students ...int) map[string]interface{} {
		items := make([]map[string]interface{}, len(students))
		for i, id := range students {
			items[i] = map[string]interface{}{"student_id": id, "status": "Present"}
		}
		return map[string]interface{}{"batch_id": batchID, "date": "2025-06-02", "items": items}
	}

	code, body := s.do(t, http.MethodPost, "/api/v1/attendance/roster", s.teacher, roster(1, 3))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "InvalidStudentInBatch", body["kind"])

	code, body = s.do(t, http.MethodPost, "/api/v1/attendance/roster", s.teacher, roster(1, 2))
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	assert.Len(t, data(t, body)["results"], 2)

	// An unscoped admin has to name the branch.
	code, body = s.do(t, http.MethodPost, "/api/v1/attendance/roster", s.admin, roster(1))
	assert.Equal(t, http.StatusBadRequest, code, "body: %v", body)

	code, body = s.do(t, http.MethodGet,
		"/api/v1/attendance/summary?subject_type=Student&subject_id=1&from=2025-06-02&to=2025-06-02", s.admin, nil)
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	assert.EqualValues(t, 100, data(t, body)["percentage"])

	code, _ = s.do(t, http.MethodGet,
		"/api/v1/attendance/history?subject_type=Student&subject_id=1&from=2025-06-02&to=bad", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHolidayEndpoints(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	code, body := s.do(t, http.MethodPost, "/api/v1/holiday/create", s.admin, map[string]interface{}{
		"name": "Weekend", "type": "WeeklyOff", "days_of_week": []int{0, 6, 6},
	})
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	assert.Len(t, data(t, body)["days_of_week"], 2)

	code, body = s.do(t, http.MethodPost, "/api/v1/holiday/create", s.admin, map[string]interface{}{
		"name": "Broken", "type": "DateRange", "start_date": "2025-07-05", "end_date": "2025-07-01",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", body["kind"])

	code, body = s.do(t, http.MethodGet, "/api/v1/holiday/check?date=2025-06-29", s.teacher, nil)
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	assert.Equal(t, true, data(t, body)["is_holiday"])
	assert.Equal(t, "Weekend", data(t, body)["name"])

	code, body = s.do(t, http.MethodGet, "/api/v1/holiday/resolve?from=2025-06-29&to=2025-07-05", s.teacher, nil)
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	assert.EqualValues(t, 2, data(t, body)["count"])

	code, _ = s.do(t, http.MethodGet, "/api/v1/holiday/list", s.teacher, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/holiday/list", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestExport(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/attendance/history/export?format=pdf&subject_type=Student&subject_id=1&from=2025-06-01&to=2025-06-30", nil)
	req.Header.Set("Authorization", "Bearer "+s.admin)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance_Student_1_20250601_20250630.pdf")

	code, _ := s.do(t, http.MethodGet,
		"/api/v1/attendance/history/export?format=csv&subject_type=Student&subject_id=1&from=2025-06-01&to=2025-06-30", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHolidayUpdateKeepsBranchScope(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	code, body := s.do(t, http.MethodPost, "/api/v1/holiday/create", s.admin, map[string]interface{}{
		"branch_id": branchID, "name": "Branch fair", "type": "SingleDay", "start_date": "2025-06-10",
	})
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	path := fmt.Sprintf("/api/v1/holiday/%d", int(data(t, body)["id"].(float64)))

	// A branch-20 admin may not take over a branch-10 rule.
	code, body = s.do(t, http.MethodPut, path, s.branchAdmin, map[string]interface{}{
		"branch_id": branchID + 10, "name": "Moved", "type": "SingleDay", "start_date": "2025-06-11",
	})
	assert.Equal(t, http.StatusForbidden, code, "body: %v", body)
	assert.Equal(t, "TenantMismatch", body["kind"])

	code, body = s.do(t, http.MethodGet, "/api/v1/holiday/check?branch_id=10&date=2025-06-10", s.admin, nil)
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	assert.Equal(t, "Branch fair", data(t, body)["name"])

	code, _ = s.do(t, http.MethodDelete, path, s.branchAdmin, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestSummaryRejectsForeignBranch(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	code, body := s.do(t, http.MethodGet,
		"/api/v1/attendance/summary?subject_type=Student&subject_id=1&from=2025-06-02&to=2025-06-02&branch_id=20", s.teacher, nil)
	assert.Equal(t, http.StatusForbidden, code, "body: %v", body)
	assert.Equal(t, "TenantMismatch", body["kind"])

	code, _ = s.do(t, http.MethodGet,
		"/api/v1/attendance/summary?subject_type=Student&subject_id=1&from=2025-06-02&to=2025-06-02&branch_id=10", s.teacher, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestShiftEndpoints(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	code, body := s.do(t, http.MethodPost, "/api/v1/shift/create", s.admin, map[string]interface{}{
		"name": "Morning", "start_time": "09:00:00", "end_time": "17:00", "grace_minutes": 10,
	})
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	created := data(t, body)
	assert.Equal(t, "09:00", created["start_time"])
	path := fmt.Sprintf("/api/v1/shift/%d", int(created["id"].(float64)))

	tests := []struct {
		name  string
		path  string
		token string
		body  map[string]interface{}
		code  int
		kind  string
	}{
		{
			name: "update", path: path, token: s.admin,
			body: map[string]interface{}{"name": "Morning", "start_time": "08:30", "end_time": "16:30", "grace_minutes": 5},
			code: http.StatusOK,
		},
		{
			name: "bad start time", path: path, token: s.admin,
			body: map[string]interface{}{"name": "Morning", "start_time": "25:00", "end_time": "16:30"},
			code: http.StatusBadRequest, kind: "ValidationError",
		},
		{
			name: "negative grace", path: path, token: s.admin,
			body: map[string]interface{}{"name": "Morning", "start_time": "08:30", "end_time": "16:30", "grace_minutes": -1},
			code: http.StatusBadRequest, kind: "ValidationError",
		},
		{
			name: "missing end time", path: path, token: s.admin,
			body: map[string]interface{}{"name": "Morning", "start_time": "08:30"},
			code: http.StatusBadRequest,
		},
		{
			name: "other tenant", path: fmt.Sprintf("/api/v1/shift/%d", s.shiftID), token: s.other,
			body: map[string]interface{}{"name": "Taken", "start_time": "08:00", "end_time": "16:00"},
			code: http.StatusNotFound, kind: "NotFound",
		},
		{
			name: "teacher", path: path, token: s.teacher,
			body: map[string]interface{}{"name": "Morning", "start_time": "08:30", "end_time": "16:30"},
			code: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		code, body := s.do(t, http.MethodPut, tt.path, tt.token, tt.body)
		assert.Equal(t, tt.code, code, "%s: %v", tt.name, body)
		if tt.kind != "" {
			assert.Equal(t, tt.kind, body["kind"], tt.name)
		}
	}

	code, body = s.do(t, http.MethodGet, "/api/v1/shift/list", s.admin, nil)
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	assert.EqualValues(t, 2, data(t, body)["count"])

	var morning map[string]interface{}
	for _, r := range data(t, body)["results"].([]interface{}) {
		if r.(map[string]interface{})["name"] == "Morning" {
			morning = r.(map[string]interface{})
		}
	}
	require.NotNil(t, morning)
	assert.Equal(t, "08:30", morning["start_time"])
	assert.EqualValues(t, 5, morning["grace_minutes"])

	code, body = s.do(t, http.MethodGet, "/api/v1/shift/list", s.other, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, data(t, body)["count"])
}
