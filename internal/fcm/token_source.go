package fcm

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prompty/notifier/internal/domain"
)

const (
	messagingScope = "https://www.googleapis.com/auth/firebase.messaging"
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// Assertion validity window; the returned access token inherits roughly
	// the same lifetime. Tokens are fetched per invocation, never cached
	// across invocations.
	assertionTTL = time.Hour
)

// ServiceAccountTokenSource implements the two-legged OAuth2 flow for a
// Google service account: sign a JWT assertion with the account's RSA key,
// then exchange it at the token endpoint for a bearer token.
type ServiceAccountTokenSource struct {
	clientEmail string
	key         *rsa.PrivateKey
	tokenURL    string
	httpClient  *http.Client
}

// NewServiceAccountTokenSource parses the PEM-encoded RSA private key and
// returns a ready token source. The token URL is injected from config so
// tests can point to a local mock.
func NewServiceAccountTokenSource(clientEmail, privateKeyPEM, tokenURL string, timeout time.Duration) (*ServiceAccountTokenSource, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	return &ServiceAccountTokenSource{
		clientEmail: clientEmail,
		key:         key,
		tokenURL:    tokenURL,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// Token signs a fresh RS256 assertion and exchanges it for an access token.
// Any rejection surfaces as *domain.CredentialError carrying the raw
// endpoint response; no retry is attempted here.
func (s *ServiceAccountTokenSource) Token(ctx context.Context) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.clientEmail,
		"scope": messagingScope,
		"aud":   s.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.CredentialError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", &domain.CredentialError{StatusCode: resp.StatusCode, Body: "empty access_token in response"}
	}

	return tokenResp.AccessToken, nil
}

// compile-time check that ServiceAccountTokenSource implements TokenSource
var _ TokenSource = (*ServiceAccountTokenSource)(nil)
