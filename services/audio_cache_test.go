package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioCacheRoundTrip(t *testing.T) {
	cache := NewAudioCache(t.TempDir())
	ctx := context.Background()

	_, found := cache.Get(ctx, "hello", "voice-1")
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, "hello", "voice-1", []byte("mp3-bytes")))

	data, found := cache.Get(ctx, "hello", "voice-1")
	require.True(t, found)
	assert.Equal(t, []byte("mp3-bytes"), data)

	// Same text under another voice is a separate entry
	_, found = cache.Get(ctx, "hello", "voice-2")
	assert.False(t, found)
}

func TestAudioCacheGetOrGenerate(t *testing.T) {
	cache := NewAudioCache(t.TempDir())
	ctx := context.Background()

	calls := 0
	generator := func() (io.ReadCloser, error) {
		calls++
		return io.NopCloser(strings.NewReader("synthesized")), nil
	}

	data, err := cache.GetOrGenerate(ctx, "welcome back", "voice-1", generator)
	require.NoError(t, err)
	assert.Equal(t, []byte("synthesized"), data)
	assert.Equal(t, 1, calls)

	// Second call is served from cache
	data, err = cache.GetOrGenerate(ctx, "welcome back", "voice-1", generator)
	require.NoError(t, err)
	assert.Equal(t, []byte("synthesized"), data)
	assert.Equal(t, 1, calls)
}

func TestAudioCacheGetOrGenerateError(t *testing.T) {
	cache := NewAudioCache(t.TempDir())

	_, err := cache.GetOrGenerate(context.Background(), "text", "voice", func() (io.ReadCloser, error) {
		return nil, fmt.Errorf("tts unavailable")
	})
	assert.Error(t, err)
}

func TestAudioCacheStats(t *testing.T) {
	cache := NewAudioCache(t.TempDir())
	ctx := context.Background()

	count, size, err := cache.GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, int64(0), size)

	require.NoError(t, cache.Set(ctx, "a", "v", []byte("12345")))
	require.NoError(t, cache.Set(ctx, "b", "v", []byte("123")))

	count, size, err = cache.GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, int64(8), size)
}
