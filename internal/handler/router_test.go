package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/internal/infrastructure/openai"
	"github.com/aryan0dhankhar/meetlog/internal/security/auth"
	"github.com/aryan0dhankhar/meetlog/internal/service"
)

type testServer struct {
	srv        *httptest.Server
	tokens     *auth.TokenManager
	summarizer *fakeSummarizer
	contacts   *fakeContacts
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	members := &fakeMembers{byID: map[int64]*domain.Member{
		7: {ID: 7, Name: "Sato", DepartmentID: 5},
		8: {ID: 8, Name: "Suzuki", DepartmentID: 5},
		9: {ID: 9, Name: "Ito", DepartmentID: 6},
	}}
	creds := &fakeCreds{hashes: map[int64]string{}}
	cards := &fakeCards{byID: map[int64]*domain.BusinessCard{
		1: {ID: 1, Name: "Tanaka", Company: "Acme"},
	}}
	contacts := &fakeContacts{records: map[int64]*domain.MeetingRecord{}, cards: cards}
	summarizer := &fakeSummarizer{}

	hasher := auth.NewHasher(bcrypt.MinCost)
	tokens := auth.NewTokenManager("test-secret", "meetlog", 30*time.Minute)
	authSvc := service.NewAuthService(members, creds, tokens, hasher, nil, logger)
	require.NoError(t, authSvc.SetPassword(context.Background(), 7, "Password123"))

	paging := Paging{DefaultPerPage: 10, MaxPerPage: 100}
	rt := &Router{
		Auth:     NewAuthHandler(authSvc, logger),
		Contacts: NewContactHandler(service.NewContactService(contacts, nil, nil, logger), service.NewSummaryService(summarizer, nil, 0, 10000, logger), paging, logger),
		Cards:    NewCardHandler(service.NewCardService(cards, logger), paging, logger),
		Members:  NewMemberHandler(service.NewMemberService(members), paging, logger),
		Health: NewHealthHandler(map[string]Checker{
			"database": func(context.Context) error { return nil },
			"redis":    nil,
		}, logger),
		Resolver: service.NewGuard(tokens, members, logger),
		Logger:   logger,
	}

	srv := httptest.NewServer(rt.Mux())
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, tokens: tokens, summarizer: summarizer, contacts: contacts}
}

func (ts *testServer) token(t *testing.T, memberID int64) string {
	t.Helper()
	tok, _, err := ts.tokens.Issue(memberID)
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rdr)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 && raw[0] == '[' {
		var items []any
		require.NoError(t, json.Unmarshal(raw, &items))
		out["items"] = items
	}
	return resp.StatusCode, out
}

func TestLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodPost, "/api/auth/login", "", `{"member_id":7,"password":"Password123"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "bearer", body["token_type"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	status, body = ts.do(t, http.MethodGet, "/api/auth/me", token, "")
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 7, body["id"])

	status, body = ts.do(t, http.MethodPost, "/api/auth/login", "", `{"member_id":7,"password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "could not validate credentials", body["error"])

	status, _ = ts.do(t, http.MethodPost, "/api/auth/login", "", `{"member_id":404,"password":"Password123"}`)
	require.Equal(t, http.StatusUnauthorized, status, "unknown member must look like a bad password")

	status, _ = ts.do(t, http.MethodPost, "/api/auth/login", "", `{"member_id":7,"password":""}`)
	require.Equal(t, http.StatusUnauthorized, status, "empty password is a bad credential")

	status, body = ts.do(t, http.MethodPost, "/api/auth/logout", "", "")
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["message"])
}

func TestChangePassword(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, 7)

	status, _ := ts.do(t, http.MethodPost, "/api/auth/password", token, `{"old_password":"wrong-one","new_password":"NewPassword1"}`)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, http.MethodPost, "/api/auth/password", token, `{"old_password":"Password123","new_password":"short"}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodPost, "/api/auth/password", token, `{"old_password":"Password123","new_password":"`+strings.Repeat("a", 80)+`"}`)
	require.Equal(t, http.StatusBadRequest, status, "bcrypt input limit is a validation error")

	status, body := ts.do(t, http.MethodPost, "/api/auth/password", token, `{"old_password":"Password123","new_password":"NewPassword1"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "password updated", body["message"])

	status, _ = ts.do(t, http.MethodPost, "/api/auth/login", "", `{"member_id":7,"password":"Password123"}`)
	require.Equal(t, http.StatusUnauthorized, status)
	status, _ = ts.do(t, http.MethodPost, "/api/auth/login", "", `{"member_id":7,"password":"NewPassword1"}`)
	require.Equal(t, http.StatusOK, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/auth/me", "/api/contacts/drafts", "/api/cards", "/api/members"} {
		status, _ := ts.do(t, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusUnauthorized, status, path)
	}
	status, _ := ts.do(t, http.MethodGet, "/api/contacts/drafts", "not-a-token", "")
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestContactLifecycle(t *testing.T) {
	ts := newTestServer(t)
	owner, mate, outsider := ts.token(t, 7), ts.token(t, 8), ts.token(t, 9)

	status, body := ts.do(t, http.MethodPost, "/api/contacts", owner,
		`{"title":"Kickoff","contact_date":"2026-03-01","status":0,"person_ids":[1,99]}`)
	require.Equal(t, http.StatusCreated, status)
	require.EqualValues(t, 5, body["department_id"])
	require.EqualValues(t, 7, body["member_id"])
	require.Len(t, body["persons"], 1)
	id := int64(body["id"].(float64))
	path := fmt.Sprintf("/api/contacts/%d", id)

	status, _ = ts.do(t, http.MethodGet, path, mate, "")
	require.Equal(t, http.StatusOK, status)
	status, _ = ts.do(t, http.MethodGet, path, outsider, "")
	require.Equal(t, http.StatusForbidden, status)

	status, _ = ts.do(t, http.MethodPut, path, mate, `{"title":"hijack"}`)
	require.Equal(t, http.StatusNotFound, status)
	status, _ = ts.do(t, http.MethodDelete, path, mate, "")
	require.Equal(t, http.StatusNotFound, status)

	status, body = ts.do(t, http.MethodGet, "/api/contacts/drafts", owner, "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["items"], 1)

	status, body = ts.do(t, http.MethodPut, path, owner, `{"status":1}`)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, body["status"])
	require.Equal(t, "Kickoff", body["title"])

	status, body = ts.do(t, http.MethodPost, "/api/contacts/search", mate, `{"keyword":"kick","page":1,"per_page":5}`)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, body["total"])
	require.EqualValues(t, 1, body["total_pages"])

	status, _ = ts.do(t, http.MethodDelete, path, owner, "")
	require.Equal(t, http.StatusOK, status)
	status, _ = ts.do(t, http.MethodDelete, path, owner, "")
	require.Equal(t, http.StatusOK, status)

	status, body = ts.do(t, http.MethodPut, path, owner, `{"status":0}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body["error"], "validation error")

	status, body = ts.do(t, http.MethodGet, path, owner, "")
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 9, body["status"])
}

func TestContactValidation(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.token(t, 7)

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/contacts", `{"status":9}`},
		{http.MethodPost, "/api/contacts", `{"contact_date":"01/03/2026"}`},
		{http.MethodPost, "/api/contacts", `{not json`},
		{http.MethodGet, "/api/contacts/abc", ""},
		{http.MethodGet, "/api/contacts/drafts?page=0", ""},
		{http.MethodGet, "/api/contacts/history?per_page=-1", ""},
		{http.MethodPost, "/api/contacts/search", `{"keyword":"x","page":-2}`},
	}
	for _, tc := range cases {
		status, _ := ts.do(t, tc.method, tc.path, owner, tc.body)
		require.Equal(t, http.StatusBadRequest, status, "%s %s %s", tc.method, tc.path, tc.body)
	}

	status, _ := ts.do(t, http.MethodGet, "/api/contacts/404", owner, "")
	require.Equal(t, http.StatusNotFound, status)
}

func TestSummarizeEndpoint(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.token(t, 7)

	status, body := ts.do(t, http.MethodPost, "/api/contacts/summarize", owner, `{"text":"notes"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "- summary", body["summary"])

	long := strings.Repeat("a", 10001)
	status, _ = ts.do(t, http.MethodPost, "/api/contacts/summarize", owner, `{"text":"`+long+`"}`)
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = ts.do(t, http.MethodPost, "/api/contacts/summarize", owner, `{"text":"   "}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, 1, ts.summarizer.calls)

	ts.summarizer.err = openai.ErrQuotaExceeded
	status, body = ts.do(t, http.MethodPost, "/api/contacts/summarize", owner, `{"text":"notes"}`)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Contains(t, body["error"], "quota")
	require.Nil(t, body["summary"])
}

func TestDirectoryEndpoints(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token(t, 8)

	status, body := ts.do(t, http.MethodPost, "/api/cards", tok, `{"name":"Kato","company":"Globex"}`)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "Kato", body["name"])

	status, _ = ts.do(t, http.MethodPost, "/api/cards", tok, `{"name":"Kato"}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, body = ts.do(t, http.MethodPost, "/api/cards/search", tok, `{"keyword":"acme"}`)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, body["total"])
	require.EqualValues(t, 10, body["per_page"])

	status, body = ts.do(t, http.MethodGet, "/api/cards?per_page=1", tok, "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["items"], 1)

	status, body = ts.do(t, http.MethodPost, "/api/members/search", tok, `{"keyword":"su","per_page":500}`)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 100, body["per_page"], "per_page is clamped")
	require.EqualValues(t, 1, body["total"])

	status, _ = ts.do(t, http.MethodGet, "/api/members/9", tok, "")
	require.Equal(t, http.StatusOK, status)
	status, _ = ts.do(t, http.MethodGet, "/api/members/99", tok, "")
	require.Equal(t, http.StatusNotFound, status)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])

	status, body = ts.do(t, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, status)
	checks := body["checks"].(map[string]any)
	require.Equal(t, "ok", checks["database"])
	require.Equal(t, "not configured", checks["redis"])
}

func TestReadyReportsFailures(t *testing.T) {
	h := NewHealthHandler(map[string]Checker{
		"database": func(context.Context) error { return errors.New("connection refused") },
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func TestWriteErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, slog.New(slog.NewTextHandler(io.Discard, nil)), errors.New("pq: relation \"contacts\" does not exist"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestWriteErrorExternalServiceReasons(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rec := httptest.NewRecorder()
	transport := fmt.Errorf("%w: request failed: %w", domain.ErrExternalService,
		errors.New(`Post "http://10.255.255.1:1/internal-gw/chat/completions": dial tcp 10.255.255.1:1: i/o timeout`))
	writeError(rec, logger, transport)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"summarization failed"}`, rec.Body.String())
	require.NotContains(t, rec.Body.String(), "10.255.255.1")

	rec = httptest.NewRecorder()
	writeError(rec, logger, fmt.Errorf("summarize: %w", openai.ErrRateLimited))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"external service error: API rate limit reached, try again later"}`, rec.Body.String())
}

func TestSummarizeUnreachableUpstreamHidesAddress(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	upstream := httptest.NewServer(http.NotFoundHandler())
	addr := upstream.URL
	upstream.Close()

	client := openai.NewClient(openai.Config{APIKey: "k", BaseURL: addr + "/internal-gw"}, logger)
	_, err := client.Summarize(context.Background(), "notes")
	require.Error(t, err)

	rec := httptest.NewRecorder()
	writeError(rec, logger, err)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"summarization failed"}`, rec.Body.String())
}
