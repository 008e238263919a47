package speech

import (
	"context"
	"log/slog"
	"sync"
)

// Speaker serializes text-to-speech outside interview sessions. There is one
// speaking slot and no queue: a new request silences whatever is in flight,
// and starting an interview silences the speaker entirely.
type Speaker struct {
	synth Synthesizer
	log   *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	epoch    int
	speaking bool
}

func NewSpeaker(synth Synthesizer, logger *slog.Logger) *Speaker {
	return &Speaker{
		synth: synth,
		log:   logger.With("component", "speaker"),
	}
}

func (s *Speaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// Speak cancels any in-flight synthesis, then synthesizes text and returns
// the PCM. The speaking flag covers the synthesis call.
func (s *Speaker) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	speakCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.epoch++
	mine := s.epoch
	s.speaking = true
	s.mu.Unlock()

	pcm, err := s.synth.Synthesize(speakCtx, text, voice)
	cancel()

	s.mu.Lock()
	// A newer request may own the slot already; only the current request
	// clears it.
	if s.epoch == mine {
		s.cancel = nil
		s.speaking = false
	}
	s.mu.Unlock()

	return pcm, err
}

// Stop cancels the in-flight synthesis, if any. Safe to call at any time.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.speaking = false
}
