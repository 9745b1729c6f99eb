package wake

import (
	"testing"
	"time"
)

func TestHoldPolicyDefaults(t *testing.T) {
	var zero HoldPolicy
	p := zero.withDefaults()
	def := DefaultHoldPolicy()
	if p != def {
		t.Errorf("withDefaults() = %+v, want %+v", p, def)
	}

	partial := HoldPolicy{SilenceGap: 2 * time.Second}.withDefaults()
	if partial.SilenceGap != 2*time.Second {
		t.Errorf("explicit SilenceGap overwritten: %v", partial.SilenceGap)
	}
	if partial.MaxHold != def.MaxHold || partial.PollInterval != def.PollInterval {
		t.Errorf("zero fields not defaulted: %+v", partial)
	}
}

func TestHoldPolicyExpired(t *testing.T) {
	p := HoldPolicy{MaxHold: 10 * time.Second, SilenceGap: time.Second}
	start := time.Now()

	tests := []struct {
		name       string
		now        time.Time
		lastSpeech time.Time
		want       bool
	}{
		{"fresh speech", start.Add(2 * time.Second), start.Add(2 * time.Second), false},
		{"silence gap elapsed", start.Add(3 * time.Second), start.Add(1900 * time.Millisecond), true},
		{"just under the gap", start.Add(3 * time.Second), start.Add(2100 * time.Millisecond), false},
		{"max hold caps continuous speech", start.Add(10 * time.Second), start.Add(10 * time.Second), true},
		{"boundary is inclusive", start.Add(time.Second), start, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.expired(tt.now, start, tt.lastSpeech); got != tt.want {
				t.Errorf("expired(now=%v, lastSpeech=%v) = %v, want %v",
					tt.now.Sub(start), tt.lastSpeech.Sub(start), got, tt.want)
			}
		})
	}
}
