package interview

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusIdle, StatusConnecting, true},
		{StatusConnecting, StatusWaitingForAI, true},
		{StatusConnecting, StatusIdle, true},
		{StatusWaitingForAI, StatusAISpeaking, true},
		{StatusListening, StatusAISpeaking, true},
		{StatusAISpeaking, StatusListening, true},
		{StatusAISpeaking, StatusIdle, true},
		{StatusListening, StatusIdle, true},

		{StatusIdle, StatusListening, false},
		{StatusIdle, StatusAISpeaking, false},
		{StatusConnecting, StatusAISpeaking, false},
		{StatusWaitingForAI, StatusListening, false},
		{StatusListening, StatusConnecting, false},
		{StatusAISpeaking, StatusWaitingForAI, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
