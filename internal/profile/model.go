package profile

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pathforge/coach-backend/internal/shared"
)

// Profile holds what the coach knows about a user's career situation. Keyed
// by email so records survive provider switches.
type Profile struct {
	Email           string             `gorm:"primaryKey" json:"email"`
	TargetTrack     shared.TargetTrack `gorm:"index" json:"target_track"`
	CurrentRole     string             `json:"current_role,omitempty"`
	TargetRole      string             `json:"target_role,omitempty"`
	ExperienceYears int                `json:"experience_years"`
	Skills          shared.StringSlice `gorm:"type:json" json:"skills"`
	ResumeText      string             `json:"resume_text,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type RoadmapStage struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	DurationWeeks int      `json:"duration_weeks"`
	Skills        []string `json:"skills,omitempty"`
}

// StageList stores roadmap stages as a JSON column.
type StageList []RoadmapStage

func (s StageList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StageList) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StageList", value)
	}

	return json.Unmarshal(bytes, s)
}

type Roadmap struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserEmail string    `gorm:"index;not null" json:"user_email"`
	Track     string    `json:"track"`
	Summary   string    `json:"summary,omitempty"`
	Stages    StageList `gorm:"type:json" json:"stages"`
	CreatedAt time.Time `json:"created_at"`
}
