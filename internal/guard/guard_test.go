package guard

import (
	"context"
	"testing"
	"time"

	"loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedis_Acquire(t *testing.T) {
	mr, rdb := setupRedis(t)
	g := NewRedis(rdb, 30*time.Second, logger.NewTestLogger(t))
	ctx := context.Background()
	key := Key("PF", "52998224725")

	release, acquired, err := g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 30*time.Second, mr.TTL(key))

	_, acquired, err = g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.False(t, acquired, "second acquire must be refused while held")

	release()
	assert.False(t, mr.Exists(key))

	release, acquired, err = g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, acquired)
	release()
}

func TestRedis_Acquire_Expires(t *testing.T) {
	mr, rdb := setupRedis(t)
	g := NewRedis(rdb, time.Second, logger.NewTestLogger(t))
	key := Key("PJ", "11222333000181")

	_, acquired, err := g.Acquire(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, acquired)

	mr.FastForward(2 * time.Second)

	_, acquired, err = g.Acquire(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRedis_Acquire_Unavailable(t *testing.T) {
	mr, rdb := setupRedis(t)
	g := NewRedis(rdb, time.Second, logger.NewTestLogger(t))
	mr.Close()

	release, acquired, err := g.Acquire(context.Background(), Key("PF", "52998224725"))

	require.Error(t, err)
	assert.False(t, acquired)
	assert.NotNil(t, release)
	assert.Equal(t, errors.ErrCodeGuardUnavailable, errors.AsStandardError(err).Code)
}

func TestKey(t *testing.T) {
	k1 := Key("PF", "52998224725")
	k2 := Key("PJ", "52998224725")

	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, Key("PF", "52998224725"))
	assert.NotContains(t, k1, "52998224725")
	assert.Len(t, k1, len(keyPrefix)+64)
}
