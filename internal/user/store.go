package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pathforge/coach-backend/internal/shared"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&User{})
}

func (s *Store) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = shared.NewID("user_")
	}
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &u, err
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &u, err
}

func (s *Store) GetByProvider(ctx context.Context, provider, sub string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("provider = ? AND provider_sub = ?", provider, sub).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &u, err
}

// FindOrCreate resolves an OAuth identity to a user, refreshing the profile
// fields the provider reports.
func (s *Store) FindOrCreate(ctx context.Context, provider, sub, email, name, avatar string) (*User, error) {
	u, err := s.GetByProvider(ctx, provider, sub)
	if err == nil {
		if u.Email != email || u.Name != name || u.AvatarURL != avatar {
			u.Email = email
			u.Name = name
			u.AvatarURL = avatar
			if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
				return nil, err
			}
		}
		return u, nil
	}

	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	u = &User{
		ID:          shared.NewID("user_"),
		Provider:    provider,
		ProviderSub: sub,
		Email:       email,
		Name:        name,
		AvatarURL:   avatar,
	}

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}

	return u, nil
}

// SyncFromJWT keeps the local record in step with the claims of a token
// issued elsewhere, creating the user on first sight.
func (s *Store) SyncFromJWT(ctx context.Context, userID, email, name, avatar string) error {
	var u User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error
	if err == nil {
		if u.Email != email || u.Name != name || u.AvatarURL != avatar {
			u.Email = email
			u.Name = name
			u.AvatarURL = avatar
			return s.db.WithContext(ctx).Save(&u).Error
		}
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	u = User{
		ID:          userID,
		Provider:    "token",
		ProviderSub: userID,
		Email:       email,
		Name:        name,
		AvatarURL:   avatar,
	}
	return s.db.WithContext(ctx).Create(&u).Error
}
