package interview

// Status is the single lifecycle state of an audio interview session. The
// session owns the value; every other component only reads it.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusConnecting   Status = "connecting"
	StatusWaitingForAI Status = "waiting_for_ai"
	StatusAISpeaking   Status = "ai_speaking"
	StatusListening    Status = "listening"
)

var legalTransitions = map[Status][]Status{
	StatusIdle:         {StatusConnecting},
	StatusConnecting:   {StatusWaitingForAI, StatusIdle},
	StatusWaitingForAI: {StatusAISpeaking, StatusIdle},
	StatusAISpeaking:   {StatusListening, StatusIdle},
	StatusListening:    {StatusAISpeaking, StatusIdle},
}

// CanTransition reports whether moving from one status to another is legal.
// Idle is reachable from every state; it is terminal for a session instance.
func CanTransition(from, to Status) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
