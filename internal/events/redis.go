// Package events carries change events over a Redis stream so that other
// processes can follow edits made in a session.
package events

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects to addr and checks the server answers
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}
