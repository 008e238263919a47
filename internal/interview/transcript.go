package interview

import (
	"strings"
	"sync"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry in the interview transcript. The sequence is
// append-only; an entry is only ever mutated to extend the open message of
// its role during streaming accumulation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Accumulator assembles incrementally arriving transcript fragments into
// per-turn messages. Each role has its own cumulative buffer and at most one
// open message at a time; a turn-complete signal closes both.
type Accumulator struct {
	mu       sync.Mutex
	messages []Message
	buffers  map[Role]*strings.Builder
	open     map[Role]int
	turns    int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		buffers: map[Role]*strings.Builder{
			RoleUser:  {},
			RoleModel: {},
		},
		open: map[Role]int{
			RoleUser:  -1,
			RoleModel: -1,
		},
	}
}

// AddFragment appends a fragment to the role's cumulative buffer and writes
// the accumulated text into the role's open message, opening a new one if
// the previous turn closed it. Returns the updated message.
func (a *Accumulator) AddFragment(role Role, fragment string) Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf := a.buffers[role]
	buf.WriteString(fragment)

	idx := a.open[role]
	if idx < 0 {
		a.messages = append(a.messages, Message{Role: role})
		idx = len(a.messages) - 1
		a.open[role] = idx
	}

	// Replace, not append: the buffer is cumulative.
	a.messages[idx].Content = buf.String()
	return a.messages[idx]
}

// CompleteTurn closes the current turn: both buffers reset and both open
// messages become permanent. The message sequence is untouched.
func (a *Accumulator) CompleteTurn() {
	a.mu.Lock()
	defer a.mu.Unlock()

	exchanged := a.buffers[RoleUser].Len() > 0 || a.buffers[RoleModel].Len() > 0
	if exchanged {
		a.turns++
	}

	for role, buf := range a.buffers {
		buf.Reset()
		a.open[role] = -1
	}
}

// Messages returns a snapshot of the transcript.
func (a *Accumulator) Messages() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// Turns reports how many completed turns carried at least one fragment.
func (a *Accumulator) Turns() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.turns
}
