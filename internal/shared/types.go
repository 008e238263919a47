package shared

import (
	"crypto/rand"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// StringSlice stores a []string as a JSON column.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value any) error {
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
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}

	return json.Unmarshal(bytes, s)
}

func NewID(prefix string) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return prefix + hex.EncodeToString(b)
}

// TargetTrack is the coaching track a user is preparing for.
type TargetTrack string

const (
	TrackSoftwareEngineering TargetTrack = "software_engineering"
	TrackDataScience         TargetTrack = "data_science"
	TrackProductManagement   TargetTrack = "product_management"
	TrackDesign              TargetTrack = "design"
	TrackMarketing           TargetTrack = "marketing"
	TrackFinance             TargetTrack = "finance"
)

func (t TargetTrack) String() string {
	return string(t)
}

// ValidTrack reports whether s names a supported coaching track.
func ValidTrack(s string) bool {
	switch TargetTrack(s) {
	case TrackSoftwareEngineering, TrackDataScience, TrackProductManagement,
		TrackDesign, TrackMarketing, TrackFinance:
		return true
	}
	return false
}
