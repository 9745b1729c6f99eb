package wake

import "testing"

func TestMatches(t *testing.T) {
	triggers := []string{"hey clawdis", "ok computer"}

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact match", "hey clawdis", true},
		{"substring match", "well hey clawdis please open the door", true},
		{"case insensitive text", "HEY CLAWDIS", true},
		{"mixed case", "Hey Clawdis, are you there", true},
		{"second trigger", "ok computer play music", true},
		{"no match", "good morning", false},
		{"partial trigger", "hey claw", false},
		{"empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.text, triggers); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatches_TriggerCasing(t *testing.T) {
	if !Matches("hey clawdis", []string{"HEY CLAWDIS"}) {
		t.Error("trigger casing should not matter")
	}
	if !Matches("hey clawdis", []string{"  hey clawdis  "}) {
		t.Error("trigger whitespace should be trimmed")
	}
}

func TestMatches_DegenerateTriggers(t *testing.T) {
	if Matches("anything", nil) {
		t.Error("no triggers should never match")
	}
	if Matches("anything", []string{""}) {
		t.Error("empty trigger should never match")
	}
	if Matches("anything", []string{"   "}) {
		t.Error("blank trigger should never match")
	}
}
