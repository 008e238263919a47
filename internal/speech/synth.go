package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

const (
	defaultTTSModel = "models/gemini-2.5-flash-preview-tts"
	defaultVoice    = "Aoede"
)

// Synthesizer turns text into playback-rate PCM.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// GenaiSynthesizer synthesizes speech through the hosted TTS model.
type GenaiSynthesizer struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewGenaiSynthesizer(client *genai.Client, model string, logger *slog.Logger) *GenaiSynthesizer {
	if model == "" {
		model = defaultTTSModel
	}
	return &GenaiSynthesizer{
		client: client,
		model:  model,
		log:    logger,
	}
}

func (s *GenaiSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = defaultVoice
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("speech: synthesis failed: %w", err)
	}

	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, errors.New("speech: no audio in response")
}
