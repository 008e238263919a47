package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"google.golang.org/genai"

	"github.com/pathforge/coach-backend/internal/history"
	"github.com/pathforge/coach-backend/internal/interview"
	"github.com/pathforge/coach-backend/internal/live"
	"github.com/pathforge/coach-backend/internal/recall"
	"github.com/pathforge/coach-backend/internal/speech"
)

func ProvideLiveDialer(cfg *Config, logger *slog.Logger) (live.Dialer, error) {
	return live.NewClient(context.Background(), live.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.LiveModel,
		Log:    logger,
	})
}

func ProvideSpeaker(genaiClient *genai.Client, cfg *Config, logger *slog.Logger) *speech.Speaker {
	synth := speech.NewGenaiSynthesizer(genaiClient, cfg.TTSModel, logger)
	return speech.NewSpeaker(synth, logger)
}

// ProvideTranscriptSink chains transcript persistence with answer indexing.
func ProvideTranscriptSink(historyStore *history.Store, recallStore *recall.Store, logger *slog.Logger) *recall.TranscriptSink {
	return recall.NewTranscriptSink(historyStore, recallStore, logger)
}

func ProvideInterviewManager(lc fx.Lifecycle, dialer live.Dialer, sink *recall.TranscriptSink, speaker *speech.Speaker, store *interview.Store, logger *slog.Logger) *interview.Manager {
	manager := interview.NewManager(interview.ManagerConfig{
		Dialer:  dialer,
		History: sink,
		Speech:  speaker,
		Store:   store,
		Log:     logger,
	})

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return manager.Close()
		},
	})

	return manager
}

var VoiceModule = fx.Options(
	fx.Provide(
		ProvideLiveDialer,
		ProvideSpeaker,
		ProvideTranscriptSink,
		ProvideInterviewManager,
	),
)
