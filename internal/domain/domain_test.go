package domain_test

import (
	"testing"

	"github.com/prompty/notifier/internal/domain"
)

func TestEventTable_IsValid(t *testing.T) {
	valid := []domain.EventTable{
		domain.TableComments, domain.TableLikes,
		domain.TableFollows, domain.TableAnnouncements,
	}
	for _, table := range valid {
		if !table.IsValid() {
			t.Errorf("expected %q to be valid", table)
		}
	}

	for _, table := range []domain.EventTable{"", "prompts", "reports", "COMMENTS"} {
		if table.IsValid() {
			t.Errorf("expected %q to be invalid", table)
		}
	}
}

func TestFailureReason_DeactivatesToken(t *testing.T) {
	tests := []struct {
		reason domain.FailureReason
		want   bool
	}{
		{domain.ReasonUnregistered, true},
		{domain.ReasonInvalidArgument, true},
		{domain.ReasonTransient, false},
		{domain.ReasonUnknown, false},
	}
	for _, tc := range tests {
		if got := tc.reason.DeactivatesToken(); got != tc.want {
			t.Errorf("%s: DeactivatesToken() = %v, want %v", tc.reason, got, tc.want)
		}
	}
}

func TestRegisterTokenRequest_Validate(t *testing.T) {
	ok := domain.RegisterTokenRequest{Token: "tok-1", UserID: "user-1"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missingToken := domain.RegisterTokenRequest{UserID: "user-1"}
	if err := missingToken.Validate(); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	missingUser := domain.RegisterTokenRequest{Token: "tok-1"}
	if err := missingUser.Validate(); err != domain.ErrInvalidUserID {
		t.Fatalf("expected ErrInvalidUserID, got %v", err)
	}
}
