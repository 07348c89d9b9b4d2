package services

import (
	"context"
	"encoding/json"
	"hotel-iot-service/config"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: "", // No password set
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	return &RedisService{
		Client: client,
		Ctx:    ctx,
	}
}

// Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// CacheDashboardStats 缓存仪表盘统计数据
func (s *RedisService) CacheDashboardStats(section string, stats interface{}, expiration time.Duration) error {
	return s.Set("dashboard_stats:"+section, stats, expiration)
}

// GetDashboardStats 读取仪表盘统计数据缓存
func (s *RedisService) GetDashboardStats(section string, dest interface{}) error {
	return s.Get("dashboard_stats:"+section, dest)
}

// InvalidateDashboardStats 使指定板块的统计缓存失效
func (s *RedisService) InvalidateDashboardStats(section string) error {
	return s.Delete("dashboard_stats:" + section)
}
