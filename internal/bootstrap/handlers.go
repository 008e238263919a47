package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/pathforge/coach-backend/internal/auth"
	"github.com/pathforge/coach-backend/internal/coach"
	"github.com/pathforge/coach-backend/internal/gateway"
	"github.com/pathforge/coach-backend/internal/health"
	"github.com/pathforge/coach-backend/internal/history"
	"github.com/pathforge/coach-backend/internal/interview"
	"github.com/pathforge/coach-backend/internal/profile"
	"github.com/pathforge/coach-backend/internal/recall"
	"github.com/pathforge/coach-backend/internal/speech"
	"github.com/pathforge/coach-backend/internal/user"
)

type HandlerParams struct {
	fx.In

	UserHandler      *user.Handler
	ProfileHandler   *profile.Handler
	HistoryHandler   *history.Handler
	CoachHandler     *coach.Handler
	SpeechHandler    *speech.Handler
	InterviewHandler *interview.Handler
	GatewayHandler   *gateway.Handler
	HealthHandler    *health.Handler
	JWTMiddleware    *auth.Middleware
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/v1")

	authGroup := api.Group("/auth")
	meGroup := api.Group("/auth")
	meGroup.Use(params.JWTMiddleware.Authenticate)
	params.UserHandler.RegisterRoutes(authGroup, meGroup)

	profileGroup := api.Group("/profile")
	profileGroup.Use(params.JWTMiddleware.Authenticate)
	params.ProfileHandler.RegisterRoutes(profileGroup)

	historyGroup := api.Group("/interviews/history")
	historyGroup.Use(params.JWTMiddleware.Authenticate)
	params.HistoryHandler.RegisterRoutes(historyGroup)

	coachGroup := api.Group("/coach")
	coachGroup.Use(params.JWTMiddleware.Authenticate)
	params.CoachHandler.RegisterRoutes(coachGroup)

	speakGroup := api.Group("/speak")
	speakGroup.Use(params.JWTMiddleware.Authenticate)
	params.SpeechHandler.RegisterRoutes(speakGroup)

	interviewGroup := api.Group("/interviews")
	interviewGroup.Use(params.JWTMiddleware.Authenticate)
	params.InterviewHandler.RegisterRoutes(interviewGroup)

	// The websocket endpoint authenticates itself from the token query
	// parameter, so no middleware here.
	params.GatewayHandler.RegisterRoutes(api.Group("/interviews/session"))

	params.HealthHandler.RegisterRoutes(e)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideJWTValidator(cfg *Config) *auth.JWTValidator {
	return auth.NewJWTValidator(cfg.HMACKey)
}

func ProvideJWTMiddleware(validator *auth.JWTValidator, userStore *user.Store) *auth.Middleware {
	return auth.NewMiddleware(validator, userStore)
}

func ProvideOAuthProviders(cfg *Config) []user.Provider {
	return []user.Provider{
		user.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
		user.NewLinkedInProvider(cfg.LinkedInClientID, cfg.LinkedInClientSecret, cfg.LinkedInRedirectURL),
	}
}

func ProvideUserHandler(store *user.Store, validator *auth.JWTValidator, providers []user.Provider, cfg *Config, logger *slog.Logger) *user.Handler {
	return user.NewHandler(store, validator, providers, cfg.FrontendURL, logger.With("handler", "user"))
}

func ProvideProfileHandler(store *profile.Store, logger *slog.Logger) *profile.Handler {
	return profile.NewHandler(store, logger.With("handler", "profile"))
}

func ProvideHistoryHandler(store *history.Store, logger *slog.Logger) *history.Handler {
	return history.NewHandler(store, logger.With("handler", "history"))
}

func ProvideCoachClient(cfg *Config, logger *slog.Logger) (*coach.Client, error) {
	return coach.NewClient(context.Background(), coach.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.CoachModel,
		Log:    logger,
	})
}

func ProvideCoachService(client *coach.Client, logger *slog.Logger) *coach.Service {
	return coach.NewService(client, logger.With("component", "coach_service"))
}

func ProvideCoachHandler(service *coach.Service, profiles *profile.Store, logger *slog.Logger) *coach.Handler {
	return coach.NewHandler(service, profiles, logger.With("handler", "coach"))
}

func ProvideSpeechHandler(speaker *speech.Speaker, logger *slog.Logger) *speech.Handler {
	return speech.NewHandler(speaker, logger.With("handler", "speech"))
}

func ProvideInterviewHandler(manager *interview.Manager, store *interview.Store, logger *slog.Logger) *interview.Handler {
	return interview.NewHandler(manager, store, logger.With("handler", "interview"))
}

func ProvideAnswerRecaller(store *recall.Store) gateway.AnswerRecaller {
	return store
}

func ProvideGatewayHandler(manager *interview.Manager, validator *auth.JWTValidator, recaller gateway.AnswerRecaller, logger *slog.Logger) *gateway.Handler {
	return gateway.NewHandler(manager, validator, recaller, logger)
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideJWTValidator,
		ProvideJWTMiddleware,
		ProvideOAuthProviders,
		ProvideUserHandler,
		ProvideProfileHandler,
		ProvideHistoryHandler,
		ProvideCoachClient,
		ProvideCoachService,
		ProvideCoachHandler,
		ProvideSpeechHandler,
		ProvideInterviewHandler,
		ProvideAnswerRecaller,
		ProvideGatewayHandler,
		ProvideHealthHandler,
	),
	fx.Invoke(RegisterRoutes),
)
