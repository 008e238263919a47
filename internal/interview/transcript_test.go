package interview

import "testing"

func TestAccumulator_FragmentsCoalesceWithinTurn(t *testing.T) {
	acc := NewAccumulator()

	acc.AddFragment(RoleUser, "Hel")
	acc.AddFragment(RoleUser, "lo ")
	acc.CompleteTurn()
	acc.AddFragment(RoleUser, "Hi")

	msgs := acc.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "Hello " {
		t.Errorf("first message: expected {user, \"Hello \"}, got {%s, %q}", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != RoleUser || msgs[1].Content != "Hi" {
		t.Errorf("second message: expected {user, \"Hi\"}, got {%s, %q}", msgs[1].Role, msgs[1].Content)
	}
}

func TestAccumulator_OneOpenMessagePerRole(t *testing.T) {
	acc := NewAccumulator()

	acc.AddFragment(RoleModel, "Tell me ")
	acc.AddFragment(RoleUser, "Sure")
	acc.AddFragment(RoleModel, "about yourself.")
	acc.AddFragment(RoleUser, ", happy to.")

	msgs := acc.Messages()
	if len(msgs) != 2 {
		t.Fatalf("interleaved fragments must extend open messages, got %d messages", len(msgs))
	}
	if msgs[0].Content != "Tell me about yourself." {
		t.Errorf("model message: got %q", msgs[0].Content)
	}
	if msgs[1].Content != "Sure, happy to." {
		t.Errorf("user message: got %q", msgs[1].Content)
	}
}

func TestAccumulator_TurnCompleteLeavesSequence(t *testing.T) {
	acc := NewAccumulator()

	acc.AddFragment(RoleModel, "Question one.")
	acc.AddFragment(RoleUser, "Answer one.")
	acc.CompleteTurn()

	before := acc.Messages()
	acc.CompleteTurn()
	after := acc.Messages()

	if len(before) != len(after) {
		t.Errorf("turn complete must not alter the message sequence: %d vs %d", len(before), len(after))
	}
}

func TestAccumulator_TurnsCounted(t *testing.T) {
	acc := NewAccumulator()

	if acc.Turns() != 0 {
		t.Fatalf("expected 0 turns, got %d", acc.Turns())
	}

	acc.CompleteTurn()
	if acc.Turns() != 0 {
		t.Errorf("empty turn must not count, got %d", acc.Turns())
	}

	acc.AddFragment(RoleModel, "Hi.")
	acc.CompleteTurn()
	if acc.Turns() != 1 {
		t.Errorf("expected 1 turn, got %d", acc.Turns())
	}

	acc.AddFragment(RoleUser, "Hello.")
	acc.AddFragment(RoleModel, "Welcome.")
	acc.CompleteTurn()
	if acc.Turns() != 2 {
		t.Errorf("expected 2 turns, got %d", acc.Turns())
	}
}

func TestAccumulator_MessagesReturnsCopy(t *testing.T) {
	acc := NewAccumulator()
	acc.AddFragment(RoleUser, "original")

	snapshot := acc.Messages()
	snapshot[0].Content = "mutated"

	if acc.Messages()[0].Content != "original" {
		t.Error("snapshot mutation leaked into the accumulator")
	}
}
