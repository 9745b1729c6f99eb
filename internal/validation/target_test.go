package validation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckForwardTarget(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "id_test")
	if err := os.WriteFile(keyFile, []byte("not a real key"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		target   string
		identity string
		wantOK   bool
	}{
		{"plain host", "clawhost", "", true},
		{"user at host", "user@clawhost", "", true},
		{"with valid identity", "user@clawhost", keyFile, true},
		{"empty target", "", "", false},
		{"whitespace only", "   ", "", false},
		{"embedded space", "user@claw host", "", false},
		{"missing user", "@clawhost", "", false},
		{"missing host", "user@", "", false},
		{"missing identity file", "user@clawhost", "/nonexistent/id", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckForwardTarget(tt.target, tt.identity)
			if got.OK != tt.wantOK {
				t.Errorf("CheckForwardTarget(%q, %q).OK = %v, want %v (message: %s)",
					tt.target, tt.identity, got.OK, tt.wantOK, got.Message)
			}
			if !got.OK && len(got.Fixes) == 0 {
				t.Error("failed check should suggest a fix")
			}
		})
	}
}

func TestCheckForwardTarget_IdentityIsDirectory(t *testing.T) {
	got := CheckForwardTarget("user@host", t.TempDir())
	if got.OK {
		t.Error("directory identity path should fail validation")
	}
}
