// Package quota tracks daily YouTube Data API usage so callers can stop
// spending units before the project limit is hit.
package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-harm-classifier-go/pkg/logger"
)

const (
	// DefaultDailyLimit is the YouTube Data API v3 default project quota.
	DefaultDailyLimit       = 10000
	DefaultThresholdPercent = 90

	keyPrefix = "youtube_quota:"
	keyTTL    = 48 * time.Hour
)

// Info is a snapshot of today's usage.
type Info struct {
	Used      int `json:"quota_used"`
	Limit     int `json:"quota_limit"`
	Remaining int `json:"quota_remaining"`
}

// Store persists the per-day counter. Add must be atomic and accept negative
// costs, which refund earlier additions.
type Store interface {
	Used(ctx context.Context, day string) (int, error)
	Add(ctx context.Context, day string, cost int) (int, error)
}

// Manager handles YouTube API quota management.
type Manager struct {
	store            Store
	dailyLimit       int
	thresholdPercent int // Stop spending when this % of quota is used
	now              func() time.Time
}

// NewManager creates a new quota manager. A nil store keeps counts in memory.
func NewManager(store Store, dailyLimit int, thresholdPercent int) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	if thresholdPercent <= 0 || thresholdPercent > 100 {
		thresholdPercent = DefaultThresholdPercent
	}

	return &Manager{
		store:            store,
		dailyLimit:       dailyLimit,
		thresholdPercent: thresholdPercent,
		now:              time.Now,
	}
}

// Reserve spends cost units up front and reports whether they fit under the
// threshold. The counter is incremented before the check, so concurrent
// callers can never jointly overshoot it; a rejected reservation is refunded.
func (m *Manager) Reserve(ctx context.Context, cost int, operationType string) (bool, Info, error) {
	day := m.day()

	used, err := m.store.Add(ctx, day, cost)
	if err != nil {
		return false, Info{}, fmt.Errorf("failed to reserve quota: %w", err)
	}

	if used > m.threshold() {
		refunded, err := m.store.Add(ctx, day, -cost)
		if err != nil {
			return false, Info{}, fmt.Errorf("failed to refund quota: %w", err)
		}
		logger.L().Debug("YouTube quota threshold reached",
			zap.Int("used", refunded),
			zap.Int("limit", m.dailyLimit),
			zap.Int("required", cost),
		)
		return false, m.info(refunded), nil
	}

	logger.L().Debug("YouTube quota used",
		zap.Int("used", used),
		zap.Int("limit", m.dailyLimit),
		zap.Int("cost", cost),
		zap.String("operation", operationType),
	)
	return true, m.info(used), nil
}

// GetQuotaInfo returns current quota information.
func (m *Manager) GetQuotaInfo(ctx context.Context) (Info, error) {
	used, err := m.store.Used(ctx, m.day())
	if err != nil {
		return Info{}, err
	}
	return m.info(used), nil
}

func (m *Manager) info(used int) Info {
	remaining := m.threshold() - used
	if remaining < 0 {
		remaining = 0
	}
	return Info{Used: used, Limit: m.dailyLimit, Remaining: remaining}
}

func (m *Manager) threshold() int {
	return (m.dailyLimit * m.thresholdPercent) / 100
}

// day keys the counter by the Pacific date, which is when YouTube resets quota.
func (m *Manager) day() string {
	return m.now().In(pacific).Format("2006-01-02")
}

var pacific = loadPacific()

func loadPacific() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return time.FixedZone("PST", -8*60*60)
	}
	return loc
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.Mutex
	used map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{used: make(map[string]int)}
}

func (s *MemoryStore) Used(_ context.Context, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used[day], nil
}

func (s *MemoryStore) Add(_ context.Context, day string, cost int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Only today's counter is ever read.
	for d := range s.used {
		if d != day {
			delete(s.used, d)
		}
	}
	s.used[day] += cost
	return s.used[day], nil
}

// RedisStore shares the counter between replicas.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Used(ctx context.Context, day string) (int, error) {
	n, err := s.rdb.Get(ctx, keyPrefix+day).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read quota counter: %w", err)
	}
	return n, nil
}

func (s *RedisStore) Add(ctx context.Context, day string, cost int) (int, error) {
	key := keyPrefix + day

	pipe := s.rdb.TxPipeline()
	incr := pipe.IncrBy(ctx, key, int64(cost))
	pipe.Expire(ctx, key, keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment quota counter: %w", err)
	}
	return int(incr.Val()), nil
}
