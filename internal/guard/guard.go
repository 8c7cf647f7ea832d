// internal/guard/guard.go
package guard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "loan-intake:submit:"

// Redis prevents two processes from submitting the same applicant at the
// same time. The lock expires after ttl even if release is never called.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log logger.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "guard"}),
	}
}

// Key derives the lock key for an applicant without exposing the digits.
func Key(personType, digits string) string {
	sum := sha256.Sum256([]byte(personType + ":" + digits))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Acquire takes the lock for key. When acquired is false another submission
// holds it and release is a no-op.
func (g *Redis) Acquire(ctx context.Context, key string) (release func(), acquired bool, err error) {
	ok, err := g.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return func() {}, false, errors.NewGuardUnavailableError(err)
	}
	if !ok {
		return func() {}, false, nil
	}

	release = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := g.client.Del(ctx, key).Err(); err != nil {
			g.logger.Warn("failed to release submission lock", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return release, true, nil
}
