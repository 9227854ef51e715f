package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/prompty/notifier/internal/api"
	"github.com/prompty/notifier/internal/dispatcher"
	"github.com/prompty/notifier/internal/domain"
	"github.com/prompty/notifier/internal/mapper"
	"github.com/prompty/notifier/internal/repository"
)

// stubTokenSource satisfies fcm.TokenSource with a fixed bearer or error.
type stubTokenSource struct {
	err error
}

func (s *stubTokenSource) Token(_ context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "test-bearer", nil
}

// stubSender accepts every push.
type stubSender struct{}

func (s *stubSender) Send(_ context.Context, _, _ string, _ domain.Notification) (string, error) {
	return "projects/test/messages/1", nil
}

type serverFixture struct {
	queue   *repository.MockQueueRepository
	tokens  *repository.MockDeviceTokenRepository
	content *repository.MockContentRepository
	source  *stubTokenSource
	handler http.Handler
}

func newServerFixture() *serverFixture {
	f := &serverFixture{
		queue:   repository.NewMockQueueRepository(),
		tokens:  repository.NewMockDeviceTokenRepository(),
		content: repository.NewMockContentRepository(),
		source:  &stubTokenSource{},
	}
	m := mapper.New(f.content, 1000, zap.NewNop())
	d := dispatcher.New(f.queue, f.tokens, m, f.source, &stubSender{}, 1000, 10, zap.NewNop(), dispatcher.Hooks{})
	f.handler = api.NewRouter(d, f.queue, f.tokens, prometheus.NewRegistry(), zap.NewNop())
	return f
}

func (f *serverFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestTokenHandler_Register(t *testing.T) {
	f := newServerFixture()

	rec := f.do(t, http.MethodPost, "/api/v1/tokens", `{"token":"tok-1","user_id":"U"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	tok := f.tokens.Get("tok-1")
	if tok == nil || tok.UserID != "U" || !tok.IsActive {
		t.Fatalf("expected active token for U, got %+v", tok)
	}
}

func TestTokenHandler_Register_InvalidJSON(t *testing.T) {
	f := newServerFixture()

	rec := f.do(t, http.MethodPost, "/api/v1/tokens", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTokenHandler_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing token", body: `{"user_id":"U"}`},
		{name: "missing user_id", body: `{"token":"tok-1"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newServerFixture()
			rec := f.do(t, http.MethodPost, "/api/v1/tokens", tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTokenHandler_Deactivate(t *testing.T) {
	f := newServerFixture()
	_ = f.tokens.Register(context.Background(), "tok-1", "U")

	rec := f.do(t, http.MethodDelete, "/api/v1/tokens/tok-1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if tok := f.tokens.Get("tok-1"); tok == nil || tok.IsActive {
		t.Fatal("expected token to be deactivated")
	}

	// Repeating the call, or deleting an unknown token, is still 204.
	if rec := f.do(t, http.MethodDelete, "/api/v1/tokens/tok-1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on repeat, got %d", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/api/v1/tokens/tok-never-seen", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for unknown token, got %d", rec.Code)
	}
}

func TestQueueHandler_Process(t *testing.T) {
	f := newServerFixture()
	f.content.AddProfile("F", "Aki", "aki_dev")
	_ = f.tokens.Register(context.Background(), "tok-U", "U")
	data, _ := json.Marshal(domain.FollowRecord{FollowerID: "F", FollowingID: "U"})
	f.queue.Add(&domain.QueueItem{
		ID:         "q1",
		TableName:  domain.TableFollows,
		RecordData: data,
		CreatedAt:  time.Now().UTC(),
	})

	rec := f.do(t, http.MethodPost, "/api/v1/queue/process", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res dispatcher.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.TotalItems != 1 || res.ProcessedCount != 1 || res.ErrorCount != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestQueueHandler_Process_CredentialError(t *testing.T) {
	f := newServerFixture()
	f.source.err = &domain.CredentialError{StatusCode: 400, Body: "invalid_grant"}

	rec := f.do(t, http.MethodPost, "/api/v1/queue/process", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "push credential exchange failed" {
		t.Fatalf("unexpected error body: %q", body["error"])
	}
}

func TestQueueHandler_Stats(t *testing.T) {
	f := newServerFixture()
	f.queue.Add(&domain.QueueItem{ID: "q1", TableName: domain.TableLikes, CreatedAt: time.Now().UTC()})
	f.queue.Add(&domain.QueueItem{ID: "q2", TableName: domain.TableLikes, Processed: true, CreatedAt: time.Now().UTC()})

	rec := f.do(t, http.MethodGet, "/api/v1/queue/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats domain.QueueStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.Pending != 1 || stats.Processed != 1 {
		t.Fatalf("expected 1 pending / 1 processed, got %+v", stats)
	}
}
