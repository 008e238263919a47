package bootstrap

import (
	"context"
	"log/slog"

	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"google.golang.org/genai"
	"gorm.io/gorm"

	"github.com/pathforge/coach-backend/internal/history"
	"github.com/pathforge/coach-backend/internal/interview"
	"github.com/pathforge/coach-backend/internal/profile"
	"github.com/pathforge/coach-backend/internal/recall"
	"github.com/pathforge/coach-backend/internal/user"
)

func ProvideUserStore(db *gorm.DB) *user.Store {
	return user.NewStore(db)
}

func ProvideProfileStore(db *gorm.DB) *profile.Store {
	return profile.NewStore(db)
}

func ProvideHistoryStore(db *gorm.DB) *history.Store {
	return history.NewStore(db)
}

func ProvideInterviewStore(redisClient *redis.Client) *interview.Store {
	return interview.NewStore(redisClient)
}

func ProvideEmbedder(genaiClient *genai.Client, cfg *Config) recall.Embedder {
	return recall.NewGenaiEmbedder(genaiClient, cfg.EmbedModel)
}

func ProvideRecallStore(qdrantClient *qdrant.Client, embedder recall.Embedder, logger *slog.Logger) *recall.Store {
	return recall.NewStore(qdrantClient, embedder, logger)
}

func RunMigrations(userStore *user.Store, profileStore *profile.Store, historyStore *history.Store, recallStore *recall.Store, logger *slog.Logger) error {
	if err := userStore.Migrate(); err != nil {
		return err
	}
	if err := profileStore.Migrate(); err != nil {
		return err
	}
	if err := historyStore.Migrate(); err != nil {
		return err
	}

	// Interviews work without the vector store; log and continue.
	if err := recallStore.EnsureCollection(context.Background()); err != nil {
		logger.Warn("recall collection unavailable", "error", err)
	}
	return nil
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideUserStore,
		ProvideProfileStore,
		ProvideHistoryStore,
		ProvideInterviewStore,
		ProvideEmbedder,
		ProvideRecallStore,
	),
	fx.Invoke(RunMigrations),
)
