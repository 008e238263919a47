package interview

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pathforge/coach-backend/internal/shared"
	"github.com/redis/go-redis/v9"
)

const (
	recordTTL  = 24 * time.Hour
	metricsTTL = 7 * 24 * time.Hour
)

type RecordStatus string

const (
	RecordActive RecordStatus = "active"
	RecordEnded  RecordStatus = "ended"
)

// Record is the redis-side row for one interview session: who, what track,
// when, and how many turns were exchanged.
type Record struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Track     string       `json:"track"`
	Status    RecordStatus `json:"status"`
	Turns     int          `json:"turns"`
	StartedAt time.Time    `json:"started_at"`
	EndedAt   time.Time    `json:"ended_at,omitzero"`
}

func (r *Record) RedisKey() string {
	return "interview:" + r.ID
}

type Store struct {
	redis *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) CreateRecord(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = shared.NewID("ivw_")
	}
	rec.Status = RecordActive
	rec.StartedAt = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, rec.RedisKey(), data, recordTTL).Err(); err != nil {
		return err
	}
	return s.incrMetric(ctx, "sessions", 1)
}

func (s *Store) GetRecord(ctx context.Context, id string) (*Record, error) {
	data, err := s.redis.Get(ctx, "interview:"+id).Bytes()
	if err == redis.Nil {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) FinishRecord(ctx context.Context, id string, turns int) error {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	rec.Status = RecordEnded
	rec.Turns = turns
	rec.EndedAt = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, rec.RedisKey(), data, recordTTL).Err(); err != nil {
		return err
	}
	return s.incrMetric(ctx, "turns", int64(turns))
}

func (s *Store) IncrementErrors(ctx context.Context) error {
	return s.incrMetric(ctx, "errors", 1)
}

func metricsKey(date string, hour int) string {
	return "interview:metrics:" + date + ":" + strconv.Itoa(hour)
}

func (s *Store) incrMetric(ctx context.Context, field string, value int64) error {
	now := time.Now().UTC()
	key := metricsKey(now.Format("2006-01-02"), now.Hour())

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, field, value)
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Metrics is one hourly bucket of usage counters.
type Metrics struct {
	Date     string `json:"date"`
	Hour     int    `json:"hour"`
	Sessions int64  `json:"sessions"`
	Turns    int64  `json:"turns"`
	Errors   int64  `json:"errors"`
}

func (s *Store) GetMetrics(ctx context.Context, hours int) ([]*Metrics, error) {
	now := time.Now().UTC()
	var out []*Metrics

	for i := 0; i < hours; i++ {
		t := now.Add(-time.Duration(i) * time.Hour)
		key := metricsKey(t.Format("2006-01-02"), t.Hour())

		data, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil || len(data) == 0 {
			continue
		}

		m := &Metrics{Date: t.Format("2006-01-02"), Hour: t.Hour()}
		m.Sessions, _ = strconv.ParseInt(data["sessions"], 10, 64)
		m.Turns, _ = strconv.ParseInt(data["turns"], 10, 64)
		m.Errors, _ = strconv.ParseInt(data["errors"], 10, 64)
		out = append(out, m)
	}
	return out, nil
}
