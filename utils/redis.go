package utils

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/sharath018/event-resource-backend/config"
)

var (
	RedisClient *redis.Client
	Ctx         = context.Background()
)

// InitRedis connects the shared client and pings it. On failure RedisClient
// stays nil and callers fall back to running without pub/sub.
func InitRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(Ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unavailable at %s: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return err
	}
	RedisClient = client
	log.Println("✅ Connected to Redis")
	return nil
}

func IsRedisEnabled() bool {
	return RedisClient != nil
}
