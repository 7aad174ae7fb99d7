package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/event-resource-backend/utils"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter limits requests per client IP. Counters live in Redis when it
// is connected so every replica shares them.
func RateLimiter(perMinute int64) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  perMinute,
	}

	var store limiter.Store = memory.NewStore()
	if utils.RedisClient != nil {
		redisStore, err := sredis.NewStoreWithOptions(utils.RedisClient, limiter.StoreOptions{
			Prefix: "event_rate_limit",
		})
		if err != nil {
			log.Printf("⚠️ Redis rate-limit store unavailable, using memory: %v", err)
		} else {
			store = redisStore
		}
	}

	return ginlimiter.NewMiddleware(limiter.New(store, rate))
}
