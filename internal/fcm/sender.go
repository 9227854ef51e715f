package fcm

import (
	"context"

	"github.com/prompty/notifier/internal/domain"
)

// sendRequest is the JSON body posted to the FCM v1 send endpoint.
type sendRequest struct {
	Message message `json:"message"`
}

type message struct {
	Token        string            `json:"token"`
	Notification notificationBody  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type notificationBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// sendResponse maps the FCM success response.
// Name is the provider-assigned message resource name
// (projects/{project}/messages/{id}).
type sendResponse struct {
	Name string `json:"name"`
}

// TokenSource exchanges service-account credentials for a short-lived OAuth2
// bearer token. Implemented by ServiceAccountTokenSource; mocked in tests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Sender abstracts push delivery to a single device token.
// Mocking this interface in tests gives full control over provider behaviour
// without making real HTTP calls.
type Sender interface {
	Send(ctx context.Context, bearer, deviceToken string, n domain.Notification) (string, error)
}
