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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/mood-journal/internal/domain/auth"
	"github.com/yanqian/mood-journal/internal/domain/emotion"
	"github.com/yanqian/mood-journal/internal/domain/journal"
	"github.com/yanqian/mood-journal/internal/infra/config"
	apperrors "github.com/yanqian/mood-journal/pkg/errors"
)

const validToken = "good-token"

func TestRouter_Health(t *testing.T) {
	server := newRouterUnderTest(t, &stubJournal{}, nil)
	rec := performRequest(server, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_RegisterSuccess(t *testing.T) {
	server := newRouterUnderTest(t, &stubJournal{}, nil)
	rec := performRequest(server, http.MethodPost, "/api/v1/auth/register", `{"username":"ana","password":"secret1","confirmPassword":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var got auth.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "ana", got.Username)
}

func TestRouter_RegisterDuplicate(t *testing.T) {
	server := newRouterUnderTest(t, &stubJournal{}, nil)
	rec := performRequest(server, http.MethodPost, "/api/v1/auth/register", `{"username":"taken","password":"secret1","confirmPassword":"secret1"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, apperrors.CodeUsernameExists, body["error"]["code"])
}

func TestRouter_LoginInvalidCredentials(t *testing.T) {
	server := newRouterUnderTest(t, &stubJournal{}, nil)
	rec := performRequest(server, http.MethodPost, "/api/v1/auth/login", `{"username":"ana","password":"wrong"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, apperrors.CodeInvalidCredentials, body["error"]["code"])
	require.Equal(t, "invalid username or password", body["error"]["message"])
}

func TestRouter_InvalidJSON(t *testing.T) {
	server := newRouterUnderTest(t, &stubJournal{}, nil)
	rec := performRequest(server, http.MethodPost, "/api/v1/entries", `{"content":123}`, validToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, apperrors.CodeInvalidInput, body["error"]["code"])
	require.NotEmpty(t, body["error"]["message"])
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	server := newRouterUnderTest(t, &stubJournal{}, nil)

	rec := performRequest(server, http.MethodGet, "/api/v1/dashboard", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/dashboard", "", "expired")
	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, apperrors.CodeInvalidToken, body["error"]["code"])
}

func TestRouter_CreateEntry(t *testing.T) {
	svc := &stubJournal{
		createFn: func(userID int64, req journal.CreateEntryRequest) (journal.Entry, error) {
			require.Equal(t, int64(7), userID)
			require.Equal(t, "great day", req.Content)
			require.Equal(t, journal.TagList{"work"}, req.Tags)
			return journal.Entry{ID: uuid.New(), Content: req.Content, Tags: []string(req.Tags), Analyzed: true, Emotions: emotion.Scores{Joy: 0.9, Surprise: 0.1}}, nil
		},
	}
	server := newRouterUnderTest(t, svc, nil)
	rec := performRequest(server, http.MethodPost, "/api/v1/entries", `{"content":"great day","tags":["work"]}`, validToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got journal.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "great day", got.Content)
	require.InDelta(t, 0.9, got.Emotions.Joy, 1e-9)
}

func TestRouter_CreateEntryValidationError(t *testing.T) {
	svc := &stubJournal{
		createFn: func(int64, journal.CreateEntryRequest) (journal.Entry, error) {
			return journal.Entry{}, apperrors.Wrap(apperrors.CodeInvalidInput, "content cannot be empty", nil)
		},
	}
	server := newRouterUnderTest(t, svc, nil)
	rec := performRequest(server, http.MethodPost, "/api/v1/entries", `{"content":"  "}`, validToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "content cannot be empty", body["error"]["message"])
}

func TestRouter_ListEntriesQuery(t *testing.T) {
	svc := &stubJournal{
		listFn: func(userID int64, req journal.ListRequest) (journal.EntryPage, error) {
			require.Equal(t, journal.ListRequest{Tag: "work", Limit: 5, Offset: 10}, req)
			return journal.EntryPage{Items: []journal.Entry{}, Total: 0, Limit: 5, Offset: 10}, nil
		},
	}
	server := newRouterUnderTest(t, svc, nil)

	rec := performRequest(server, http.MethodGet, "/api/v1/entries?tag=work&limit=5&offset=10", "", validToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/entries?limit=many", "", validToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_EntryByID(t *testing.T) {
	known := uuid.New()
	svc := &stubJournal{
		getFn: func(_ int64, id uuid.UUID) (journal.Entry, error) {
			if id != known {
				return journal.Entry{}, apperrors.Wrap(apperrors.CodeNotFound, "entry not found", nil)
			}
			return journal.Entry{ID: id, Content: "hello"}, nil
		},
	}
	server := newRouterUnderTest(t, svc, nil)

	rec := performRequest(server, http.MethodGet, "/api/v1/entries/"+known.String(), "", validToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/entries/"+uuid.NewString(), "", validToken)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/entries/not-a-uuid", "", validToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_DeleteEntry(t *testing.T) {
	var deleted uuid.UUID
	svc := &stubJournal{
		deleteFn: func(_ int64, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	server := newRouterUnderTest(t, svc, nil)
	id := uuid.New()

	rec := performRequest(server, http.MethodDelete, "/api/v1/entries/"+id.String(), "", validToken)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, id, deleted)
}

func TestRouter_AnalyzeUnavailable(t *testing.T) {
	svc := &stubJournal{
		reanalyzeFn: func(int64, uuid.UUID) (journal.Entry, error) {
			return journal.Entry{}, apperrors.Wrap(apperrors.CodeAnalysisUnavailable, "emotion analysis is unavailable, please try again later", nil)
		},
	}
	server := newRouterUnderTest(t, svc, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/entries/"+uuid.NewString()+"/analyze", "", validToken)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, apperrors.CodeAnalysisUnavailable, body["error"]["code"])
}

func TestRouter_InternalErrorsHideCause(t *testing.T) {
	svc := &stubJournal{
		dashboardFn: func(int64) (journal.Dashboard, error) {
			return journal.Dashboard{}, apperrors.Wrap("journal_error", "failed to load emotion history", errors.New("pq: connection refused"))
		},
	}
	server := newRouterUnderTest(t, svc, nil)

	rec := performRequest(server, http.MethodGet, "/api/v1/dashboard", "", validToken)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "journal_error", body["error"]["code"])
	require.Equal(t, "failed to load emotion history", body["error"]["message"])
}

func TestRouter_RetriesTransientPostFailures(t *testing.T) {
	attempts := 0
	svc := &stubJournal{
		reanalyzeFn: func(_ int64, id uuid.UUID) (journal.Entry, error) {
			attempts++
			if attempts == 1 {
				return journal.Entry{}, errors.New("upstream hiccup")
			}
			return journal.Entry{ID: id, Analyzed: true}, nil
		},
	}
	server := newRouterUnderTest(t, svc, func(cfg *config.Config) {
		cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 2}
	})

	rec := performRequest(server, http.MethodPost, "/api/v1/entries/"+uuid.NewString()+"/analyze", "", validToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, attempts)
}

func TestRouter_AnalyzeUnavailableIsNotRetried(t *testing.T) {
	calls := 0
	svc := &stubJournal{
		reanalyzeFn: func(int64, uuid.UUID) (journal.Entry, error) {
			calls++
			return journal.Entry{}, apperrors.Wrap(apperrors.CodeAnalysisUnavailable, "emotion analysis is unavailable, please try again later", nil)
		},
	}
	server := newRouterUnderTest(t, svc, func(cfg *config.Config) {
		cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3}
	})

	rec := performRequest(server, http.MethodPost, "/api/v1/entries/"+uuid.NewString()+"/analyze", "", validToken)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, 1, calls)
}

func TestRouter_RetryExclusionMatchesEntryRoute(t *testing.T) {
	calls := 0
	svc := &stubJournal{
		reanalyzeFn: func(int64, uuid.UUID) (journal.Entry, error) {
			calls++
			return journal.Entry{}, errors.New("database restarting")
		},
	}
	server := newRouterUnderTest(t, svc, func(cfg *config.Config) {
		cfg.HTTP.Retry = config.RetryConfig{
			Enabled:     true,
			MaxAttempts: 3,
			Exclude:     []string{"/api/v1/entries/:id/analyze"},
		}
	})

	rec := performRequest(server, http.MethodPost, "/api/v1/entries/"+uuid.NewString()+"/analyze", "", validToken)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, calls)
}

func TestRouter_RateLimit(t *testing.T) {
	server := newRouterUnderTest(t, &stubJournal{}, func(cfg *config.Config) {
		cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	})

	rec := performRequest(server, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "rate_limit_exceeded", body["error"]["code"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, &stubJournal{}, func(cfg *config.Config) {
		cfg.HTTP.AllowedOrigins = []string{"https://journal.example"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/entries", nil)
	req.Header.Set("Origin", "https://journal.example")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://journal.example", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/entries", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func performRequest(server *http.Server, method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc journal.Service, mutate func(*config.Config)) *http.Server {
	t.Helper()
	handler := NewHandler(stubAuth{}, svc, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubAuth struct{}

func (stubAuth) Register(_ context.Context, req auth.RegisterRequest) (auth.UserView, error) {
	if req.Username == "taken" {
		return auth.UserView{}, apperrors.Wrap(apperrors.CodeUsernameExists, "username already exists", nil)
	}
	return auth.UserView{ID: 1, Username: req.Username}, nil
}

func (stubAuth) Login(_ context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if req.Password != "secret1" {
		return auth.LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidCredentials, "invalid username or password", nil)
	}
	return auth.LoginResponse{Token: validToken}, nil
}

func (stubAuth) ValidateToken(_ context.Context, token string) (auth.Claims, error) {
	if token != validToken {
		return auth.Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token is invalid or expired", nil)
	}
	return auth.Claims{UserID: 7, Username: "ana", TokenType: "access"}, nil
}

func (stubAuth) Refresh(context.Context, string) (auth.LoginResponse, error) {
	return auth.LoginResponse{Token: validToken}, nil
}

func (stubAuth) Profile(_ context.Context, userID int64) (auth.UserView, error) {
	return auth.UserView{ID: userID, Username: "ana"}, nil
}

func (stubAuth) Logout(context.Context, auth.Claims) error {
	return nil
}

type stubJournal struct {
	createFn    func(userID int64, req journal.CreateEntryRequest) (journal.Entry, error)
	getFn       func(userID int64, id uuid.UUID) (journal.Entry, error)
	listFn      func(userID int64, req journal.ListRequest) (journal.EntryPage, error)
	reanalyzeFn func(userID int64, id uuid.UUID) (journal.Entry, error)
	deleteFn    func(userID int64, id uuid.UUID) error
	dashboardFn func(userID int64) (journal.Dashboard, error)
}

func (s *stubJournal) CreateEntry(_ context.Context, userID int64, req journal.CreateEntryRequest) (journal.Entry, error) {
	if s.createFn != nil {
		return s.createFn(userID, req)
	}
	return journal.Entry{}, nil
}

func (s *stubJournal) GetEntry(_ context.Context, userID int64, id uuid.UUID) (journal.Entry, error) {
	if s.getFn != nil {
		return s.getFn(userID, id)
	}
	return journal.Entry{ID: id}, nil
}

func (s *stubJournal) ListEntries(_ context.Context, userID int64, req journal.ListRequest) (journal.EntryPage, error) {
	if s.listFn != nil {
		return s.listFn(userID, req)
	}
	return journal.EntryPage{Items: []journal.Entry{}}, nil
}

func (s *stubJournal) UpdateEntry(_ context.Context, _ int64, id uuid.UUID, _ journal.UpdateEntryRequest) (journal.Entry, error) {
	return journal.Entry{ID: id}, nil
}

func (s *stubJournal) ReanalyzeEntry(_ context.Context, userID int64, id uuid.UUID) (journal.Entry, error) {
	if s.reanalyzeFn != nil {
		return s.reanalyzeFn(userID, id)
	}
	return journal.Entry{ID: id}, nil
}

func (s *stubJournal) DeleteEntry(_ context.Context, userID int64, id uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(userID, id)
	}
	return nil
}

func (s *stubJournal) ListTags(context.Context, int64) ([]journal.TagCount, error) {
	return []journal.TagCount{}, nil
}

func (s *stubJournal) Dashboard(_ context.Context, userID int64) (journal.Dashboard, error) {
	if s.dashboardFn != nil {
		return s.dashboardFn(userID)
	}
	return journal.Dashboard{}, nil
}

func (s *stubJournal) Export(context.Context, int64) (journal.ExportResult, error) {
	return journal.ExportResult{Key: "exports/7/x.json"}, nil
}
