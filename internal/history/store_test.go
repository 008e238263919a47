package history

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pathforge/coach-backend/internal/interview"
	"github.com/pathforge/coach-backend/internal/shared"
)

func setupTestStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	store := NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return store
}

func sampleTranscript() []interview.Message {
	return []interview.Message{
		{Role: interview.RoleModel, Content: "Tell me about a system you designed."},
		{Role: interview.RoleUser, Content: "I built a queue-backed ingest pipeline."},
		{Role: interview.RoleModel, Content: "What were the trade-offs?"},
		{Role: interview.RoleUser, Content: "We accepted higher latency for durability."},
	}
}

func TestStore_AppendAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.AppendTranscript(ctx, "ada@example.com", "software_engineering", sampleTranscript())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected record ID")
	}

	record, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if record.Turns != 2 {
		t.Errorf("turns: got %d, want 2", record.Turns)
	}
	if len(record.Messages) != 4 {
		t.Errorf("messages: got %d, want 4", len(record.Messages))
	}
	if record.Messages[1].Role != interview.RoleUser {
		t.Errorf("round-tripped role: got %q", record.Messages[1].Role)
	}
}

func TestStore_ListByUserIsScoped(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.AppendTranscript(ctx, "ada@example.com", "software_engineering", sampleTranscript()); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := store.AppendTranscript(ctx, "grace@example.com", "data_science", sampleTranscript()); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	records, err := store.ListByUser(ctx, "ada@example.com", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].UserEmail != "ada@example.com" {
		t.Errorf("record for wrong user: %q", records[0].UserEmail)
	}
}

func TestStore_UserAnswers(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.AppendTranscript(ctx, "ada@example.com", "software_engineering", sampleTranscript()); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := store.AppendTranscript(ctx, "ada@example.com", "design", sampleTranscript()); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	answers, err := store.UserAnswers(ctx, "ada@example.com", "software_engineering", 10)
	if err != nil {
		t.Fatalf("user answers failed: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	for _, a := range answers {
		if a == "" {
			t.Error("empty answer extracted")
		}
	}

	limited, err := store.UserAnswers(ctx, "ada@example.com", "", 1)
	if err != nil {
		t.Fatalf("limited answers failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit not applied: got %d", len(limited))
	}
}

func TestStore_DeleteIsOwnerScoped(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.AppendTranscript(ctx, "ada@example.com", "finance", sampleTranscript())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if err := store.Delete(ctx, "grace@example.com", id); err != shared.ErrNotFound {
		t.Errorf("delete by non-owner: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "ada@example.com", id); err != nil {
		t.Errorf("delete by owner failed: %v", err)
	}
	if _, err := store.GetByID(ctx, id); err != shared.ErrNotFound {
		t.Errorf("record should be gone, got %v", err)
	}
}
