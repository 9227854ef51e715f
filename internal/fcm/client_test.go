package fcm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prompty/notifier/internal/domain"
	"github.com/prompty/notifier/internal/fcm"
)

var testNotification = domain.Notification{
	RecipientID: "U",
	Title:       "新しいフォロワー",
	Body:        "Akiさんにフォローされました",
	Data:        map[string]string{"type": "follow", "follower_id": "F"},
}

func TestClient_Send(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"projects/prompty-prod/messages/0:123"}`))
	}))
	defer srv.Close()

	client := fcm.NewClient(srv.URL, "prompty-prod", 5*time.Second)
	name, err := client.Send(context.Background(), "bearer-123", "tok-1", testNotification)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "projects/prompty-prod/messages/0:123" {
		t.Fatalf("unexpected message name %q", name)
	}

	if gotPath != "/v1/projects/prompty-prod/messages:send" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer bearer-123" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}

	msg, _ := gotBody["message"].(map[string]any)
	if msg["token"] != "tok-1" {
		t.Errorf("unexpected message token: %v", msg["token"])
	}
	notif, _ := msg["notification"].(map[string]any)
	if notif["title"] != testNotification.Title || notif["body"] != testNotification.Body {
		t.Errorf("unexpected notification payload: %v", notif)
	}
	data, _ := msg["data"].(map[string]any)
	if data["type"] != "follow" {
		t.Errorf("unexpected data payload: %v", data)
	}
}

func TestClient_Send_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.FailureReason
	}{
		{
			name:   "unregistered detail",
			status: http.StatusNotFound,
			body:   `{"error":{"code":404,"status":"NOT_FOUND","details":[{"@type":"type.googleapis.com/google.firebase.fcm.v1.FcmError","errorCode":"UNREGISTERED"}]}}`,
			want:   domain.ReasonUnregistered,
		},
		{
			name:   "invalid argument status",
			status: http.StatusBadRequest,
			body:   `{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"The registration token is not a valid FCM registration token"}}`,
			want:   domain.ReasonInvalidArgument,
		},
		{
			name:   "unavailable",
			status: http.StatusServiceUnavailable,
			body:   `{"error":{"code":503,"status":"UNAVAILABLE"}}`,
			want:   domain.ReasonTransient,
		},
		{
			name:   "quota exhausted",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`,
			want:   domain.ReasonTransient,
		},
		{
			name:   "unparseable error body falls back to status code",
			status: http.StatusNotFound,
			body:   `gateway says no`,
			want:   domain.ReasonUnregistered,
		},
		{
			name:   "unknown rejection",
			status: http.StatusForbidden,
			body:   `{"error":{"code":403,"status":"PERMISSION_DENIED"}}`,
			want:   domain.ReasonUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := fcm.NewClient(srv.URL, "prompty-prod", 5*time.Second)
			_, err := client.Send(context.Background(), "bearer", "tok-1", testNotification)

			var de *domain.DeliveryError
			if !errors.As(err, &de) {
				t.Fatalf("expected DeliveryError, got %v", err)
			}
			if de.Reason != tc.want {
				t.Fatalf("expected reason %s, got %s", tc.want, de.Reason)
			}
			if de.StatusCode != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, de.StatusCode)
			}
		})
	}
}

func TestClient_Send_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := fcm.NewClient(srv.URL, "prompty-prod", time.Second)
	_, err := client.Send(context.Background(), "bearer", "tok-1", testNotification)

	var de *domain.DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if de.Reason != domain.ReasonTransient {
		t.Fatalf("expected transient reason, got %s", de.Reason)
	}
}
