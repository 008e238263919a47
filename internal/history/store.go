package history

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pathforge/coach-backend/internal/interview"
	"github.com/pathforge/coach-backend/internal/shared"
)

// Store persists finished interview transcripts.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&InterviewRecord{})
}

// AppendTranscript saves the transcript of a finished session and returns the
// record ID. It satisfies the session's save hook.
func (s *Store) AppendTranscript(ctx context.Context, userEmail, track string, messages []interview.Message) (string, error) {
	turns := 0
	for _, m := range messages {
		if m.Role == interview.RoleUser {
			turns++
		}
	}

	record := &InterviewRecord{
		ID:        shared.NewID("hist_"),
		UserEmail: userEmail,
		Track:     track,
		Messages:  messages,
		Turns:     turns,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return "", err
	}
	return record.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*InterviewRecord, error) {
	var record InterviewRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &record, err
}

// ListByUser returns a user's interviews newest first.
func (s *Store) ListByUser(ctx context.Context, userEmail string, limit int) ([]InterviewRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var records []InterviewRecord
	err := s.db.WithContext(ctx).
		Where("user_email = ?", userEmail).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// UserAnswers extracts the user's side of recent interviews on a track, most
// recent first.
func (s *Store) UserAnswers(ctx context.Context, userEmail, track string, limit int) ([]string, error) {
	records, err := s.ListByUser(ctx, userEmail, 10)
	if err != nil {
		return nil, err
	}

	var answers []string
	for _, record := range records {
		if track != "" && record.Track != track {
			continue
		}
		for _, m := range record.Messages {
			if m.Role != interview.RoleUser {
				continue
			}
			answers = append(answers, m.Content)
			if limit > 0 && len(answers) >= limit {
				return answers, nil
			}
		}
	}
	return answers, nil
}

func (s *Store) Delete(ctx context.Context, userEmail, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_email = ?", id, userEmail).
		Delete(&InterviewRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
