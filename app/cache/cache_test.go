package cache

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetThenGet(t *testing.T) {
	s := NewMemoryStoreWith(time.Minute, 0)

	s.Set("city_info_tokyo", "value", time.Minute)

	v, ok := s.Get("city_info_tokyo")
	require.True(t, ok)
	assert.Equal(t, "value", v)
	assert.True(t, s.Has("city_info_tokyo"))
}

func TestMemoryStore_ExpiredEntryIsMissAndRemoved(t *testing.T) {
	s := NewMemoryStoreWith(time.Minute, 0)

	s.Set("short", 1, 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	_, ok := s.Get("short")
	assert.False(t, ok)
	_, ok = s.Get("short")
	assert.False(t, ok, "second read of an expired key must also miss")
	assert.False(t, s.Has("short"))
	assert.Equal(t, 0, s.Len(), "expired entry should be dropped on read")
}

func TestMemoryStore_MissKeepsConcurrentWrite(t *testing.T) {
	s := NewMemoryStoreWith(time.Minute, 0)
	s.Set("stale", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	for i := 0; i < 500; i++ {
		s.Delete("k")
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Get("k")
		}()
		s.Set("k", i, time.Hour)
		wg.Wait()

		v, ok := s.Get("k")
		require.True(t, ok, "iteration %d", i)
		require.Equal(t, i, v)
	}
	assert.False(t, s.Has("stale"))
}

func TestMemoryStore_OverwriteReplacesTTL(t *testing.T) {
	s := NewMemoryStoreWith(time.Minute, 0)

	s.Set("k", "old", 20*time.Millisecond)
	s.Set("k", "new", time.Hour)
	time.Sleep(40 * time.Millisecond)

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestMemoryStore_NonPositiveTTLUsesDefault(t *testing.T) {
	s := NewMemoryStoreWith(time.Hour, 0)

	s.Set("k", "v", 0)
	s.Set("j", "v", -5*time.Second)

	assert.True(t, s.Has("k"))
	assert.True(t, s.Has("j"))
}

func TestMemoryStore_SweepRemovesOnlyExpired(t *testing.T) {
	s := NewMemoryStoreWith(time.Hour, 0)

	s.Set("expired-a", 1, 10*time.Millisecond)
	s.Set("expired-b", 2, 10*time.Millisecond)
	s.Set("fresh", 3, time.Hour)
	time.Sleep(30 * time.Millisecond)

	require.Equal(t, 3, s.Len(), "expired entries stay physically stored until swept")
	s.Sweep()

	assert.Equal(t, 1, s.Len())
	v, ok := s.Get("fresh")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestMemoryStore_DeleteAndClearNeverFail(t *testing.T) {
	s := NewMemoryStoreWith(time.Hour, 0)

	s.Delete("missing")
	s.Clear()

	s.Set("a", 1, 0)
	s.Set("b", 2, 0)
	s.Delete("a")
	assert.False(t, s.Has("a"))
	s.Clear()
	assert.Equal(t, 0, s.Len())
	s.Clear()
}

func TestDeletePrefix(t *testing.T) {
	s := NewMemoryStoreWith(time.Hour, 0)
	s.Set("places_paris_12", 1, 0)
	s.Set("places_paris_20", 1, 0)
	s.Set("city_info_paris", 1, 0)
	s.Set("places_tokyo_12", 1, 0)

	removed := DeletePrefix(s, "places_paris_", "city_info_paris")

	assert.Equal(t, 3, removed)
	keys := s.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"places_tokyo_12"}, keys)
	assert.Equal(t, 0, DeletePrefix(s, "places_paris_"))
}

func newTestTier(t *testing.T) (*RedisTier, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisTier(client), mr
}

type cachedThing struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestRedisTier_SetAndGet(t *testing.T) {
	tier, _ := newTestTier(t)
	ctx := context.Background()

	require.NoError(t, tier.Set(ctx, "search:paris:{}", cachedThing{Name: "Paris", Items: []string{"Louvre"}}, time.Minute))

	var got cachedThing
	ok, err := tier.Get(ctx, "search:paris:{}", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Paris", got.Name)
	assert.Equal(t, []string{"Louvre"}, got.Items)
}

func TestRedisTier_MissIsNotAnError(t *testing.T) {
	tier, _ := newTestTier(t)

	var got cachedThing
	ok, err := tier.Get(context.Background(), "nothing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisTier_TTLExpires(t *testing.T) {
	tier, mr := newTestTier(t)
	ctx := context.Background()

	require.NoError(t, tier.Set(ctx, "k", cachedThing{Name: "x"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var got cachedThing
	ok, err := tier.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisTier_DeletePrefixAndClear(t *testing.T) {
	tier, mr := newTestTier(t)
	ctx := context.Background()

	require.NoError(t, tier.Set(ctx, "search:paris:{}", cachedThing{}, time.Minute))
	require.NoError(t, tier.Set(ctx, "search:paris:{\"budget\":\"low\"}", cachedThing{}, time.Minute))
	require.NoError(t, tier.Set(ctx, "search:tokyo:{}", cachedThing{}, time.Minute))
	require.NoError(t, mr.Set("unrelated", "keep"))

	n, err := tier.DeletePrefix(ctx, "search:paris:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists(namespace+"search:tokyo:{}"))

	require.NoError(t, tier.Clear(ctx))
	assert.False(t, mr.Exists(namespace+"search:tokyo:{}"))
	assert.True(t, mr.Exists("unrelated"), "clear only touches namespaced keys")
}
