package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis opens the client that backs the job queues, the notification
// pub/sub fan-out and the expiration-sweep lock. Connectivity is validated at
// startup so a bad REDIS_URL fails fast instead of at the first enqueue.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
