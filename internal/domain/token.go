package domain

import "time"

// DeviceToken is a push-provider registration token owned by one user.
// A user owns zero or more tokens. The pipeline deactivates tokens the
// provider rejects as unregistered or invalid; it never deletes them.
type DeviceToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterTokenRequest is the inbound payload for registering a device token.
type RegisterTokenRequest struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (r *RegisterTokenRequest) Validate() error {
	if r.Token == "" {
		return ErrInvalidToken
	}
	if r.UserID == "" {
		return ErrInvalidUserID
	}
	return nil
}
