package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prompty/notifier/internal/domain"
)

// Client delivers notifications via the FCM HTTP v1 API, one device token
// per call. The base URL is injected from config so tests can point to a
// local mock.
type Client struct {
	baseURL    string
	projectID  string
	httpClient *http.Client
}

func NewClient(baseURL, projectID string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		projectID: projectID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts one message to the per-project send endpoint and returns the
// provider-assigned message name. Failures surface as *domain.DeliveryError
// with a classified reason; no retry is attempted here.
func (c *Client) Send(ctx context.Context, bearer, deviceToken string, n domain.Notification) (string, error) {
	body, err := json.Marshal(sendRequest{
		Message: message{
			Token: deviceToken,
			Notification: notificationBody{
				Title: n.Title,
				Body:  n.Body,
			},
			Data: n.Data,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/projects/%s/messages:send", c.baseURL, c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.DeliveryError{Reason: domain.ReasonTransient, Body: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.DeliveryError{
			Reason:     classify(resp.StatusCode, respBody),
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var sendResp sendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return sendResp.Name, nil
}

// fcmErrorBody maps the relevant parts of an FCM v1 error response:
//
//	{"error": {"status": "NOT_FOUND", "details": [{"errorCode": "UNREGISTERED"}]}}
type fcmErrorBody struct {
	Error struct {
		Status  string `json:"status"`
		Details []struct {
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

// classify maps an FCM error response to a typed failure reason so the
// dispatcher never has to substring-match provider error text.
//
// Deactivation-worthy reasons:
//
//	UNREGISTERED / 404     — token no longer registered with the provider
//	INVALID_ARGUMENT / 400 — token (or payload) rejected as malformed
//
// Everything retry-shaped (429, 5xx, UNAVAILABLE, INTERNAL, QUOTA_EXCEEDED)
// classifies as Transient and must leave the token active.
func classify(statusCode int, body []byte) domain.FailureReason {
	var parsed fcmErrorBody
	_ = json.Unmarshal(body, &parsed) // best effort; fall back to status code

	for _, d := range parsed.Error.Details {
		switch d.ErrorCode {
		case "UNREGISTERED":
			return domain.ReasonUnregistered
		case "INVALID_ARGUMENT":
			return domain.ReasonInvalidArgument
		case "UNAVAILABLE", "INTERNAL", "QUOTA_EXCEEDED":
			return domain.ReasonTransient
		}
	}

	switch parsed.Error.Status {
	case "NOT_FOUND":
		return domain.ReasonUnregistered
	case "INVALID_ARGUMENT":
		return domain.ReasonInvalidArgument
	case "UNAVAILABLE", "INTERNAL", "RESOURCE_EXHAUSTED":
		return domain.ReasonTransient
	}

	switch {
	case statusCode == http.StatusNotFound:
		return domain.ReasonUnregistered
	case statusCode == http.StatusBadRequest:
		return domain.ReasonInvalidArgument
	case statusCode == http.StatusTooManyRequests || statusCode >= 500:
		return domain.ReasonTransient
	}

	return domain.ReasonUnknown
}

// compile-time check that Client implements Sender
var _ Sender = (*Client)(nil)
