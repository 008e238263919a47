package bootstrap

import (
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/pathforge/coach-backend/internal/health"
	"github.com/pathforge/coach-backend/internal/interview"
)

type HealthParams struct {
	fx.In

	DB      *gorm.DB
	Redis   *redis.Client
	Qdrant  *qdrant.Client
	Manager *interview.Manager
	Config  *Config
}

func ProvideHealthHandler(params HealthParams) *health.Handler {
	return health.NewHandler(params.DB, params.Redis, params.Qdrant, params.Manager, params.Config.Version)
}
