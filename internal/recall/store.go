package recall

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const collectionName = "interview_answers"

// Store keeps past interview answers in a vector collection so the coach can
// recall what a user said in earlier sessions.
type Store struct {
	qdrant   *qdrant.Client
	embedder Embedder
	log      *slog.Logger
}

func NewStore(qdrantClient *qdrant.Client, embedder Embedder, logger *slog.Logger) *Store {
	return &Store{
		qdrant:   qdrantClient,
		embedder: embedder,
		log:      logger.With("component", "recall"),
	}
}

// EnsureCollection creates the answer collection on first run.
func (s *Store) EnsureCollection(ctx context.Context) error {
	if s.qdrant == nil {
		return errors.New("qdrant client not configured")
	}

	exists, err := s.qdrant.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return s.qdrant.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

// IndexAnswers embeds and stores a user's answers from one interview.
func (s *Store) IndexAnswers(ctx context.Context, userEmail, track string, answers []string) error {
	if s.qdrant == nil {
		return errors.New("qdrant client not configured")
	}

	points := make([]*qdrant.PointStruct, 0, len(answers))
	for _, answer := range answers {
		if answer == "" {
			continue
		}
		vector, err := s.embedder.Embed(ctx, answer)
		if err != nil {
			return err
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"user_email": userEmail,
				"track":      track,
				"text":       answer,
			}),
		})
	}
	if len(points) == 0 {
		return nil
	}

	_, err := s.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
	})
	return err
}

// Search returns the user's stored answers most similar to the query.
func (s *Store) Search(ctx context.Context, userEmail, track, query string, limit int) ([]string, error) {
	if s.qdrant == nil {
		return nil, errors.New("qdrant client not configured")
	}
	if limit <= 0 {
		limit = 5
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	must := []*qdrant.Condition{
		qdrant.NewMatch("user_email", userEmail),
	}
	if track != "" {
		must = append(must, qdrant.NewMatch("track", track))
	}

	results, err := s.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         &qdrant.Filter{Must: must},
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	answers := make([]string, 0, len(results))
	for _, r := range results {
		if text := r.Payload["text"].GetStringValue(); text != "" {
			answers = append(answers, text)
		}
	}
	return answers, nil
}

// PastAnswers recalls answers relevant to an upcoming interview on a track.
func (s *Store) PastAnswers(ctx context.Context, userEmail, track string, limit int) ([]string, error) {
	return s.Search(ctx, userEmail, track, "interview answers about "+track, limit)
}
