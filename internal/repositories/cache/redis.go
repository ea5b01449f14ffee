package cache

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// HealthCheck pings redis.
func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// GetStats returns the connection pool statistics.
func (s *CacheService) GetStats() *redis.PoolStats {
	return s.client.PoolStats()
}

// RegisterMetrics exposes the connection pool statistics on reg.
func (s *CacheService) RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "paygate",
			Subsystem: "redis",
			Name:      "pool_total_conns",
			Help:      "Connections in the redis pool.",
		}, func() float64 { return float64(s.GetStats().TotalConns) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "paygate",
			Subsystem: "redis",
			Name:      "pool_idle_conns",
			Help:      "Idle connections in the redis pool.",
		}, func() float64 { return float64(s.GetStats().IdleConns) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "paygate",
			Subsystem: "redis",
			Name:      "pool_timeouts_total",
			Help:      "Times a connection could not be taken from the pool in time.",
		}, func() float64 { return float64(s.GetStats().Timeouts) }),
	)
}
