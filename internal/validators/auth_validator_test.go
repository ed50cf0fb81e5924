package validators

import (
	"testing"

	"chatRelay/internal/models"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"jane@example.com", "j.doe+tag@sub.example.org"}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}
	invalid := []string{"", "jane", "jane@", "@example.com", "jane@example"}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestValidateUser(t *testing.T) {
	user := &models.User{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "password123",
	}
	if errs := ValidateUser(user); len(errs) != 0 {
		t.Errorf("expected valid user, got %v", errs)
	}

	bad := &models.User{
		FirstName: "J",
		LastName:  "",
		Email:     "not-an-email",
		Password:  "short",
	}
	if errs := ValidateUser(bad); len(errs) != 4 {
		t.Errorf("expected 4 validation errors, got %d: %v", len(errs), errs)
	}

	if errs := ValidateUser(nil); len(errs) != 1 {
		t.Errorf("expected a single error for nil user, got %v", errs)
	}
}
