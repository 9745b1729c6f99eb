package hostcheck

import "testing"

func TestCheckNoHints(t *testing.T) {
	if err := Check(nil); err != nil {
		t.Errorf("Check(nil) = %v, want nil", err)
	}
	if err := Check([]string{}); err != nil {
		t.Errorf("Check(empty) = %v, want nil", err)
	}
}
