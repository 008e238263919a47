package profile

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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

func TestStore_UpsertReplacesExisting(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, &Profile{
		Email:       "ada@example.com",
		TargetTrack: shared.TrackSoftwareEngineering,
		TargetRole:  "Staff Engineer",
		Skills:      []string{"go", "distributed systems"},
	}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	if err := store.Upsert(ctx, &Profile{
		Email:       "ada@example.com",
		TargetTrack: shared.TrackDataScience,
		TargetRole:  "ML Engineer",
	}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	p, err := store.Get(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if p.TargetTrack != shared.TrackDataScience {
		t.Errorf("track not replaced: %q", p.TargetTrack)
	}

	var count int64
	store.db.Model(&Profile{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 profile, got %d", count)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.Get(context.Background(), "nobody@example.com"); err != shared.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_RoadmapLatestWins(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := &Roadmap{
		UserEmail: "ada@example.com",
		Track:     "software_engineering",
		Stages:    StageList{{Title: "Fundamentals", DurationWeeks: 4}},
	}
	if err := store.SaveRoadmap(ctx, first); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	second := &Roadmap{
		UserEmail: "ada@example.com",
		Track:     "software_engineering",
		Summary:   "Revised plan",
		Stages:    StageList{{Title: "System design", DurationWeeks: 6, Skills: []string{"architecture"}}},
	}
	if err := store.SaveRoadmap(ctx, second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	// Same creation timestamp is possible in sqlite; pin the order.
	store.db.Model(first).Update("created_at", "2024-01-01 00:00:00")

	got, err := store.LatestRoadmap(ctx, "ada@example.com", "software_engineering")
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("expected newest roadmap, got %q", got.ID)
	}
	if len(got.Stages) != 1 || got.Stages[0].Title != "System design" {
		t.Errorf("stages did not round-trip: %+v", got.Stages)
	}
}

func TestStore_RoadmapScopedToUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.SaveRoadmap(ctx, &Roadmap{UserEmail: "grace@example.com", Track: "finance"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := store.LatestRoadmap(ctx, "ada@example.com", ""); err != shared.ErrNotFound {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
}
