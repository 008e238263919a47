package recall

import (
	"context"
	"log/slog"

	"github.com/pathforge/coach-backend/internal/interview"
)

// AnswerIndexer is the indexing half of the store, split out so the sink can
// be tested without a vector database.
type AnswerIndexer interface {
	IndexAnswers(ctx context.Context, userEmail, track string, answers []string) error
}

// TranscriptSink persists a finished transcript and then indexes the user's
// answers for later recall. Indexing is best effort; a vector store outage
// never loses the transcript.
type TranscriptSink struct {
	history interview.HistoryAppender
	indexer AnswerIndexer
	log     *slog.Logger
}

func NewTranscriptSink(history interview.HistoryAppender, indexer AnswerIndexer, logger *slog.Logger) *TranscriptSink {
	return &TranscriptSink{
		history: history,
		indexer: indexer,
		log:     logger.With("component", "transcript_sink"),
	}
}

func (s *TranscriptSink) AppendTranscript(ctx context.Context, userEmail, track string, messages []interview.Message) (string, error) {
	recordID, err := s.history.AppendTranscript(ctx, userEmail, track, messages)
	if err != nil {
		return "", err
	}

	if s.indexer != nil {
		var answers []string
		for _, m := range messages {
			if m.Role == interview.RoleUser {
				answers = append(answers, m.Content)
			}
		}
		if err := s.indexer.IndexAnswers(ctx, userEmail, track, answers); err != nil {
			s.log.Error("failed to index answers", "error", err, "user", userEmail)
		}
	}

	return recordID, nil
}
