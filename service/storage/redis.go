package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

var (
	rdb *redis.Client
	ctx = context.Background()
)

// InitRedis connects the package-level client. Callers that never call
// this run without the presence mirror; every operation then reports
// ErrNotInitialized and the registry carries on alone.
func InitRedis(c Config) error {
	rdb = redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	return rdb.Ping(ctx).Err()
}

func Enabled() bool { return rdb != nil }
