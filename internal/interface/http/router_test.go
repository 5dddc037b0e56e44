package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/haircarepro/server/internal/domain/auth"
	"github.com/haircarepro/server/internal/domain/careplan"
	"github.com/haircarepro/server/internal/domain/reminder"
	"github.com/haircarepro/server/internal/infra/config"
	apperrors "github.com/haircarepro/server/pkg/errors"
)

func TestRouter_SubmitPlanSuccess(t *testing.T) {
	planID := uuid.New()
	plans := &stubPlanService{
		submitFn: func(ctx context.Context, req careplan.SubmitRequest) (careplan.SubmitResult, error) {
			require.Equal(t, int64(7), req.OwnerID)
			require.Equal(t, map[string]string{"hairType": "curly"}, req.Answers)
			require.Equal(t, []int{1, 4}, req.ReminderDays)
			return careplan.SubmitResult{PlanID: planID, ArtifactPath: "/api/v1/artifacts/careplan_7_1.pdf"}, nil
		},
	}
	server := newRouterUnderTest(t, plans, &stubReminderService{}, "")

	recorder := performRequest(http.MethodPost, "/api/v1/plans",
		`{"answers":{"hairType":"curly"},"reminderDays":[1,4]}`, "Bearer good-token", server)
	require.Equal(t, http.StatusOK, recorder.Code)

	var got careplan.SubmitResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, planID, got.PlanID)
	require.Equal(t, "/api/v1/artifacts/careplan_7_1.pdf", got.ArtifactPath)
}

func TestRouter_SubmitPlanMissingToken(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanService{}, &stubReminderService{}, "")

	recorder := performRequest(http.MethodPost, "/api/v1/plans", `{"answers":{"a":"b"}}`, "", server)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "unauthorized", errBody["error"]["code"])
}

func TestRouter_SubmitPlanGenerationFailure(t *testing.T) {
	plans := &stubPlanService{
		submitFn: func(ctx context.Context, req careplan.SubmitRequest) (careplan.SubmitResult, error) {
			return careplan.SubmitResult{}, apperrors.Wrap("generation_error", "care plan generation failed", nil)
		},
	}
	server := newRouterUnderTest(t, plans, &stubReminderService{}, "")

	recorder := performRequest(http.MethodPost, "/api/v1/plans", `{"answers":{"a":"b"}}`, "Bearer good-token", server)
	require.Equal(t, http.StatusBadGateway, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "generation_error", errBody["error"]["code"])
}

func TestRouter_SubmitPlanInvalidEmail(t *testing.T) {
	plans := &stubPlanService{
		submitFn: func(ctx context.Context, req careplan.SubmitRequest) (careplan.SubmitResult, error) {
			return careplan.SubmitResult{}, apperrors.Wrap("invalid_email", "invalid or missing email, re-login or contact support", nil)
		},
	}
	server := newRouterUnderTest(t, plans, &stubReminderService{}, "")

	recorder := performRequest(http.MethodPost, "/api/v1/plans", `{"answers":{"a":"b"}}`, "Bearer good-token", server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_email", errBody["error"]["code"])
}

func TestRouter_ListPlans(t *testing.T) {
	planID := uuid.New()
	plans := &stubPlanService{
		listFn: func(ctx context.Context, ownerID int64) ([]careplan.PlanView, error) {
			require.Equal(t, int64(7), ownerID)
			return []careplan.PlanView{{ID: planID, ReminderDays: []int{2}}}, nil
		},
	}
	server := newRouterUnderTest(t, plans, &stubReminderService{}, "")

	recorder := performRequest(http.MethodGet, "/api/v1/plans", "", "Bearer good-token", server)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Plans []careplan.PlanView `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Plans, 1)
	require.Equal(t, planID, body.Plans[0].ID)
}

func TestRouter_GetArtifact(t *testing.T) {
	plans := &stubPlanService{
		artifactFn: func(ctx context.Context, name string) (io.ReadCloser, error) {
			require.Equal(t, "careplan_7_12345.pdf", name)
			return io.NopCloser(bytes.NewReader([]byte("%PDF-1.4 fake"))), nil
		},
	}
	server := newRouterUnderTest(t, plans, &stubReminderService{}, "")

	recorder := performRequest(http.MethodGet, "/api/v1/artifacts/careplan_7_12345.pdf", "", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "application/pdf", recorder.Header().Get("Content-Type"))
	require.Equal(t, "%PDF-1.4 fake", recorder.Body.String())
}

func TestRouter_GetArtifactNotFound(t *testing.T) {
	plans := &stubPlanService{
		artifactFn: func(ctx context.Context, name string) (io.ReadCloser, error) {
			return nil, apperrors.Wrap("artifact_not_found", "artifact not found", nil)
		},
	}
	server := newRouterUnderTest(t, plans, &stubReminderService{}, "")

	recorder := performRequest(http.MethodGet, "/api/v1/artifacts/careplan_9_1.pdf", "", "", server)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "artifact_not_found", errBody["error"]["code"])
}

func TestRouter_TriggerReminders(t *testing.T) {
	// The count covers every selected plan, delivered or not.
	reminders := &stubReminderService{
		runFn: func(ctx context.Context) (reminder.Report, error) {
			return reminder.Report{Considered: 3, Sent: 1, Skipped: 1, Failed: 1}, nil
		},
	}
	server := newRouterUnderTest(t, &stubPlanService{}, reminders, "")

	recorder := performRequest(http.MethodPost, "/api/v1/cron/reminders", "", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Message string          `json:"message"`
		Count   int             `json:"count"`
		Report  reminder.Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "Reminders sent", body.Message)
	require.Equal(t, 3, body.Count)
	require.Equal(t, 3, body.Report.Considered)
	require.Equal(t, 1, body.Report.Sent)
	require.Equal(t, 1, body.Report.Failed)
}

func TestRouter_TriggerRemindersTokenGate(t *testing.T) {
	reminders := &stubReminderService{
		runFn: func(ctx context.Context) (reminder.Report, error) {
			return reminder.Report{Sent: 1}, nil
		},
	}
	server := newRouterUnderTest(t, &stubPlanService{}, reminders, "cron-secret")

	recorder := performRequest(http.MethodPost, "/api/v1/cron/reminders", "", "", server)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performRequest(http.MethodPost, "/api/v1/cron/reminders", "", "Bearer cron-secret", server)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func performRequest(method, path, body, authHeader string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, plans careplan.Service, reminders reminder.Service, cronToken string) *http.Server {
	t.Helper()
	authSvc := &stubAuthService{}
	handler := NewHandler(authSvc, plans, reminders, cronToken, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler, authSvc)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubAuthService struct{}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (auth.UserView, error) {
	return auth.UserView{}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	return auth.LoginResponse{}, nil
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) (auth.Claims, error) {
	if token != "good-token" {
		return auth.Claims{}, apperrors.Wrap("invalid_token", "token validation failed", nil)
	}
	return auth.Claims{UserID: 7, Email: "owner@example.com", TokenType: "access"}, nil
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (auth.LoginResponse, error) {
	return auth.LoginResponse{}, nil
}

func (s *stubAuthService) Profile(ctx context.Context, userID int64) (auth.UserView, error) {
	return auth.UserView{ID: userID}, nil
}

type stubPlanService struct {
	submitFn   func(ctx context.Context, req careplan.SubmitRequest) (careplan.SubmitResult, error)
	listFn     func(ctx context.Context, ownerID int64) ([]careplan.PlanView, error)
	artifactFn func(ctx context.Context, name string) (io.ReadCloser, error)
}

func (s *stubPlanService) Submit(ctx context.Context, req careplan.SubmitRequest) (careplan.SubmitResult, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, req)
	}
	return careplan.SubmitResult{}, nil
}

func (s *stubPlanService) List(ctx context.Context, ownerID int64) ([]careplan.PlanView, error) {
	if s.listFn != nil {
		return s.listFn(ctx, ownerID)
	}
	return nil, nil
}

func (s *stubPlanService) Artifact(ctx context.Context, name string) (io.ReadCloser, error) {
	if s.artifactFn != nil {
		return s.artifactFn(ctx, name)
	}
	return io.NopCloser(bytes.NewReader(nil)), nil
}

type stubReminderService struct {
	runFn func(ctx context.Context) (reminder.Report, error)
}

func (s *stubReminderService) Run(ctx context.Context) (reminder.Report, error) {
	if s.runFn != nil {
		return s.runFn(ctx)
	}
	return reminder.Report{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
