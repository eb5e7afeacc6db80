package google

import (
	"context"
	"strings"
	"testing"
)

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Fatal("expected error when GOOGLE_SPREADSHEET_ID is unset")
	}
}

func TestNewFromEnvRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error when no credentials are configured")
	}
	if !strings.Contains(err.Error(), "service account") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTabName(t *testing.T) {
	tests := []struct {
		group, section, want string
	}{
		{"Japan 2025", "Balances", "Japan 2025 - Balances"},
		{"a/b", "Expenses", "a_b - Expenses"},
		{"trip [draft]", "Settlements", "trip _draft_ - Settlements"},
	}
	for _, tt := range tests {
		if got := tabName(tt.group, tt.section); got != tt.want {
			t.Errorf("tabName(%q, %q) = %q, want %q", tt.group, tt.section, got, tt.want)
		}
	}
}

func TestTabNameLengthLimit(t *testing.T) {
	long := strings.Repeat("x", 200)
	if got := tabName(long, "Balances"); len(got) > maxTabName {
		t.Fatalf("tab name too long: %d", len(got))
	}
}
