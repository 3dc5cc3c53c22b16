package repository

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLoginRateLimit(t *testing.T) {
	ctx := context.Background()
	email := "shopper@example.com"
	key := loginAttemptsKey(email)
	fixed := time.Unix(1_700_000_100, 0)
	window := 60 * time.Second

	newLimiter := func() (*redisRepository, redismock.ClientMock) {
		client, mock := redismock.NewClientMock()
		repo := &redisRepository{client: client, maxAttempts: 3, window: window, now: func() time.Time { return fixed }}
		return repo, mock
	}

	expectPipeline := func(mock redismock.ClientMock, count int64) {
		now := fixed.Unix()
		mock.ExpectZRemRangeByScore(key, "0", strconv.FormatInt(now-60, 10)).SetVal(0)
		mock.ExpectZAdd(key, redis.Z{Score: float64(now), Member: now}).SetVal(1)
		mock.ExpectZCard(key).SetVal(count)
		mock.ExpectExpire(key, window).SetVal(true)
	}

	t.Run("Success - Under the limit", func(t *testing.T) {
		// Arrange
		repo, mock := newLimiter()
		expectPipeline(mock, 2)

		// Act
		allowed, remaining, retryAfter, err := repo.CheckLoginRateLimit(ctx, email)

		// Assert
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 1, remaining)
		assert.Zero(t, retryAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Over the limit reports retry time", func(t *testing.T) {
		// Arrange
		repo, mock := newLimiter()
		expectPipeline(mock, 4)
		mock.ExpectZRangeArgsWithScores(redis.ZRangeArgs{Key: key, Start: 0, Stop: 0}).
			SetVal([]redis.Z{{Score: float64(fixed.Unix() - 45), Member: "x"}})

		// Act
		allowed, remaining, retryAfter, err := repo.CheckLoginRateLimit(ctx, email)

		// Assert
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Zero(t, remaining)
		assert.Equal(t, 15, retryAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Redis unavailable", func(t *testing.T) {
		// Arrange
		repo, mock := newLimiter()
		mock.ExpectZRemRangeByScore(key, "0", strconv.FormatInt(fixed.Unix()-60, 10)).SetErr(errors.New("connection refused"))

		// Act
		allowed, _, _, err := repo.CheckLoginRateLimit(ctx, email)

		// Assert
		require.Error(t, err)
		assert.False(t, allowed)
	})
}
