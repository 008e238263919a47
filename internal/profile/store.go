package profile

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pathforge/coach-backend/internal/shared"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Profile{}, &Roadmap{})
}

func (s *Store) Get(ctx context.Context, email string) (*Profile, error) {
	var p Profile
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &p, err
}

// Upsert writes the whole profile; the email in the record decides the row.
func (s *Store) Upsert(ctx context.Context, p *Profile) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			UpdateAll: true,
		}).
		Create(p).Error
}

// SaveRoadmap stores a generated roadmap alongside any earlier ones so the
// user can compare revisions.
func (s *Store) SaveRoadmap(ctx context.Context, r *Roadmap) error {
	if r.ID == "" {
		r.ID = shared.NewID("map_")
	}
	return s.db.WithContext(ctx).Create(r).Error
}

// LatestRoadmap returns the most recent roadmap for the user on a track.
func (s *Store) LatestRoadmap(ctx context.Context, email, track string) (*Roadmap, error) {
	query := s.db.WithContext(ctx).Where("user_email = ?", email)
	if track != "" {
		query = query.Where("track = ?", track)
	}

	var r Roadmap
	err := query.Order("created_at DESC").First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &r, err
}
