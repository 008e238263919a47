package history

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pathforge/coach-backend/internal/interview"
)

// MessageList stores an interview transcript as a JSON column.
type MessageList []interview.Message

func (m MessageList) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "[]", nil
	}
	return json.Marshal(m)
}

func (m *MessageList) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into MessageList", value)
	}

	return json.Unmarshal(bytes, m)
}

type InterviewRecord struct {
	ID        string      `gorm:"primaryKey" json:"id"`
	UserEmail string      `gorm:"index;not null" json:"user_email"`
	Track     string      `gorm:"index" json:"track"`
	Messages  MessageList `gorm:"type:json" json:"messages"`
	Turns     int         `json:"turns"`
	CreatedAt time.Time   `json:"created_at"`
}
