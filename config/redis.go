package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// RedisOptions reads REDIS_ADDR (or REDIS_URI/REDIS_URL). A redis:// or
// rediss:// URL carries its own credentials; a bare host:port takes
// REDIS_PASSWORD and REDIS_DB.
func RedisOptions() (*redis.Options, error) {
	addr := firstEnv("REDIS_ADDR", "REDIS_URI", "REDIS_URL")
	if addr == "" {
		return nil, errors.New("REDIS_ADDR (or REDIS_URI/REDIS_URL) environment variable is not set")
	}

	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		return redis.ParseURL(addr)
	}

	opt := &redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")}
	if v := strings.TrimSpace(os.Getenv("REDIS_DB")); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			return nil, fmt.Errorf("invalid REDIS_DB %q", v)
		}
		opt.DB = db
	}
	return opt, nil
}

func InitRedis() error {
	opt, err := RedisOptions()
	if err != nil {
		return err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping %s: %w", opt.Addr, err)
	}

	RedisClient = client
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
