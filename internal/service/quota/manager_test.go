package quota

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Used(context.Context, string) (int, error)     { return 0, errors.New("down") }
func (failingStore) Add(context.Context, string, int) (int, error) { return 0, errors.New("down") }

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(nil, 0, 150)

	assert.Equal(t, DefaultDailyLimit, m.dailyLimit)
	assert.Equal(t, DefaultThresholdPercent, m.thresholdPercent)
	assert.NotNil(t, m.store)
}

func TestManager_Reserve(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), 100, 50)

	info, err := m.GetQuotaInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, Info{Used: 0, Limit: 100, Remaining: 50}, info)

	ok, info, err := m.Reserve(ctx, 49, "videos.list")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 49, info.Used)

	ok, info, err = m.Reserve(ctx, 2, "videos.list")
	require.NoError(t, err)
	assert.False(t, ok, "49+2 crosses the threshold of 50")
	assert.Equal(t, 49, info.Used, "rejected reservation is refunded")

	ok, info, err = m.Reserve(ctx, 1, "videos.list")
	require.NoError(t, err)
	assert.True(t, ok, "49+1 stays within the threshold")
	assert.Equal(t, 50, info.Used)
	assert.Zero(t, info.Remaining)
}

func TestManager_Reserve_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), 10, 100)

	var granted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := m.Reserve(ctx, 1, "videos.list")
			assert.NoError(t, err)
			if ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), granted.Load())

	info, err := m.GetQuotaInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, info.Used)
}

func TestManager_ResetsDaily(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), 10, 100)

	day := time.Date(2024, 3, 1, 12, 0, 0, 0, pacific)
	m.now = func() time.Time { return day }
	ok, _, err := m.Reserve(ctx, 10, "videos.list")
	require.NoError(t, err)
	require.True(t, ok)

	ok, _, err = m.Reserve(ctx, 1, "videos.list")
	require.NoError(t, err)
	assert.False(t, ok)

	m.now = func() time.Time { return day.Add(24 * time.Hour) }
	ok, info, err := m.Reserve(ctx, 1, "videos.list")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, info.Used)
}

func TestManager_StoreErrors(t *testing.T) {
	ctx := context.Background()
	m := NewManager(failingStore{}, 10, 100)

	ok, _, err := m.Reserve(ctx, 1, "videos.list")
	assert.Error(t, err)
	assert.False(t, ok)

	_, err = m.GetQuotaInfo(ctx)
	assert.Error(t, err)
}
