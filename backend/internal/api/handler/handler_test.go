package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"planboard/backend/internal/availability"
	"planboard/backend/internal/dto"
	"planboard/backend/internal/service"
	pkgerrors "planboard/backend/pkg/errors"
	"planboard/backend/pkg/jwt"
	"planboard/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutErr     error
	meResult      *dto.UserResponse
	meErr         error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ *dto.RefreshRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims, _ string) error {
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	listSchedulesResult  []dto.WorkScheduleResponse
	listSchedulesErr     error
	setSchedulesResult   []dto.WorkScheduleResponse
	setSchedulesErr      error
	updateScheduleResult *dto.WorkScheduleResponse
	updateScheduleErr    error
	listExceptionsResult []dto.ExceptionResponse
	listExceptionsErr    error
	createExResult       *dto.ExceptionResponse
	createExErr          error
	updateExResult       *dto.ExceptionResponse
	updateExErr          error
	deleteExErr          error
	importResult         *dto.ImportHolidaysResponse
	importErr            error
}

func (m *mockScheduleService) ListSchedules(_ context.Context, _, _ string) ([]dto.WorkScheduleResponse, error) {
	return m.listSchedulesResult, m.listSchedulesErr
}
func (m *mockScheduleService) SetSchedules(_ context.Context, _, _ string, _ *dto.SetWorkSchedulesRequest, _ string) ([]dto.WorkScheduleResponse, error) {
	return m.setSchedulesResult, m.setSchedulesErr
}
func (m *mockScheduleService) UpdateSchedule(_ context.Context, _, _ string, _ *dto.UpdateWorkScheduleRequest, _ string) (*dto.WorkScheduleResponse, error) {
	return m.updateScheduleResult, m.updateScheduleErr
}
func (m *mockScheduleService) ListExceptions(_ context.Context, _, _ string) ([]dto.ExceptionResponse, error) {
	return m.listExceptionsResult, m.listExceptionsErr
}
func (m *mockScheduleService) CreateException(_ context.Context, _, _ string, _ *dto.CreateExceptionRequest, _ string) (*dto.ExceptionResponse, error) {
	return m.createExResult, m.createExErr
}
func (m *mockScheduleService) UpdateException(_ context.Context, _, _ string, _ *dto.UpdateExceptionRequest, _ string) (*dto.ExceptionResponse, error) {
	return m.updateExResult, m.updateExErr
}
func (m *mockScheduleService) DeleteException(_ context.Context, _, _ string, _ string) error {
	return m.deleteExErr
}
func (m *mockScheduleService) ImportHolidays(_ context.Context, _, _ string, _ *dto.ImportHolidaysRequest, _ string) (*dto.ImportHolidaysResponse, error) {
	return m.importResult, m.importErr
}

// ── Mock AvailabilityService ──

type mockAvailabilityService struct {
	dayResult     *dto.DayAvailability
	dayErr        error
	rangeResult   *dto.AvailabilityRangeResponse
	rangeErr      error
	summaryResult *dto.AvailabilitySummaryResponse
	summaryErr    error
	previewResult *dto.PreviewExceptionResponse
	previewErr    error
}

func (m *mockAvailabilityService) ResolveDay(_ context.Context, _, _, _ string) (*dto.DayAvailability, error) {
	return m.dayResult, m.dayErr
}
func (m *mockAvailabilityService) ResolveRange(_ context.Context, _, _, _, _ string) (*dto.AvailabilityRangeResponse, error) {
	return m.rangeResult, m.rangeErr
}
func (m *mockAvailabilityService) Summarize(_ context.Context, _, _, _, _ string) (*dto.AvailabilitySummaryResponse, error) {
	return m.summaryResult, m.summaryErr
}
func (m *mockAvailabilityService) PreviewException(_ context.Context, _, _ string, _ *dto.PreviewExceptionRequest) (*dto.PreviewExceptionResponse, error) {
	return m.previewResult, m.previewErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportAvailability(_ context.Context, _, _, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// fakeAuth 模拟 JWTAuth 中间件写入的上下文字段
func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "test-user-id")
		c.Set("org_id", "test-org-id")
		c.Set("role", "admin")
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "admin@acme.dev",
		Password: "Test1234",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "admin@acme.dev",
		Password: "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Refresh_Revoked(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrTokenRevoked})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(dto.RefreshRequest{
		RefreshToken: "revoked-token",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.Refresh)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11003 {
		t.Errorf("expected error code 11003, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AvailabilityHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAvailabilityHandler_ResolveDay_Success(t *testing.T) {
	mock := &mockAvailabilityService{
		dayResult: &dto.DayAvailability{
			Result: availability.Result{
				Date:           "2024-01-15",
				HoursAvailable: 8,
				HourlyRate:     50,
				IsWorkingDay:   true,
				Source:         availability.SourceWeeklyPattern,
			},
			Cost: 400,
		},
	}
	h := NewAvailabilityHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/resources/res-1/availability/day?date=2024-01-15", nil)

	r := gin.New()
	r.Use(fakeAuth())
	r.GET("/resources/:id/availability/day", h.ResolveDay)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"hours_available":8`) {
		t.Errorf("响应缺少可用小时字段: %s", w.Body.String())
	}
}

func TestAvailabilityHandler_ResolveDay_MissingDate(t *testing.T) {
	h := NewAvailabilityHandler(&mockAvailabilityService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/resources/res-1/availability/day", nil)

	r := gin.New()
	r.Use(fakeAuth())
	r.GET("/resources/:id/availability/day", h.ResolveDay)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAvailabilityHandler_ResolveDay_InvalidDate(t *testing.T) {
	h := NewAvailabilityHandler(&mockAvailabilityService{dayErr: availability.ErrInvalidDate})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/resources/res-1/availability/day?date=not-a-date", nil)

	r := gin.New()
	r.Use(fakeAuth())
	r.GET("/resources/:id/availability/day", h.ResolveDay)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 40007 {
		t.Errorf("expected error code 40007, got %d", resp.Code)
	}
}

func TestAvailabilityHandler_ResolveRange_TooLarge(t *testing.T) {
	h := NewAvailabilityHandler(&mockAvailabilityService{rangeErr: service.ErrRangeTooLarge})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/resources/res-1/availability?start_date=2024-01-01&end_date=2030-01-01", nil)

	r := gin.New()
	r.Use(fakeAuth())
	r.GET("/resources/:id/availability", h.ResolveRange)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 40008 {
		t.Errorf("expected error code 40008, got %d", resp.Code)
	}
}

func TestAvailabilityHandler_ResolveRange_ResourceHidden(t *testing.T) {
	h := NewAvailabilityHandler(&mockAvailabilityService{rangeErr: service.ErrResourceNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/resources/res-x/availability?start_date=2024-01-01&end_date=2024-01-31", nil)

	r := gin.New()
	r.Use(fakeAuth())
	r.GET("/resources/:id/availability", h.ResolveRange)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAvailabilityHandler_Preview_Success(t *testing.T) {
	mock := &mockAvailabilityService{
		previewResult: &dto.PreviewExceptionResponse{
			Before:     availability.Summary{TotalHours: 40},
			After:      availability.Summary{TotalHours: 32},
			HoursDelta: -8,
		},
	}
	h := NewAvailabilityHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/resources/res-1/availability/preview", jsonBody(dto.PreviewExceptionRequest{
		StartDate: "2024-01-15",
		EndDate:   "2024-01-19",
		Draft: &dto.CreateExceptionRequest{
			ExceptionDate: "2024-01-17",
			ExceptionType: "non_working",
		},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(fakeAuth())
	r.POST("/resources/:id/availability/preview", h.PreviewException)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"hours_delta":-8`) {
		t.Errorf("响应缺少差值字段: %s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_CreateException_Duplicate(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{createExErr: service.ErrDuplicateException})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/resources/res-1/exceptions", jsonBody(dto.CreateExceptionRequest{
		ExceptionDate: "2024-01-01",
		ExceptionType: "holiday",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(fakeAuth())
	r.POST("/resources/:id/exceptions", h.CreateException)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 40005 {
		t.Errorf("expected error code 40005, got %d", resp.Code)
	}
}

func TestScheduleHandler_UpdateSchedule_OptimisticLock(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{updateScheduleErr: pkgerrors.ErrOptimisticLock})

	hours := 6.0
	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/schedules/ws-1", jsonBody(dto.UpdateWorkScheduleRequest{
		TotalWorkHours: &hours,
		Version:        1,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(fakeAuth())
	r.PUT("/schedules/:id", h.UpdateSchedule)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10006 {
		t.Errorf("expected error code 10006, got %d", resp.Code)
	}
}

func TestScheduleHandler_ImportHolidays_BadICS(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{importErr: service.ErrICSParse})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/resources/res-1/exceptions/import-ics", jsonBody(dto.ImportHolidaysRequest{
		ICSContent: "not a calendar",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(fakeAuth())
	r.POST("/resources/:id/exceptions/import-ics", h.ImportHolidays)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 40006 {
		t.Errorf("expected error code 40006, got %d", resp.Code)
	}
}

func TestScheduleHandler_Unauthenticated(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/resources/res-1/schedules", nil)

	// 不挂 fakeAuth：上下文缺少 org_id
	r := gin.New()
	r.GET("/resources/:id/schedules", h.ListSchedules)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("fake-xlsx-bytes"),
		filename: "可用性报表_张三_2024-01-01_2024-01-31.xlsx",
	}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/resources/res-1/availability/export?start_date=2024-01-01&end_date=2024-01-31", nil)

	r := gin.New()
	r.Use(fakeAuth())
	r.GET("/resources/:id/availability/export", h.ExportAvailability)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if cd == "" {
		t.Error("expected Content-Disposition header")
	}
	if w.Body.String() != "fake-xlsx-bytes" {
		t.Errorf("响应体不符: %s", w.Body.String())
	}
}

func TestExportHandler_MissingRange(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/resources/res-1/availability/export?start_date=2024-01-01", nil)

	r := gin.New()
	r.Use(fakeAuth())
	r.GET("/resources/:id/availability/export", h.ExportAvailability)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
