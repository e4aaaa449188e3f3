package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
)

// latestReadingTTL bounds staleness of the per-sensor hot cache. Anything
// older is served from the database instead.
const latestReadingTTL = 10 * time.Minute

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	Ping() error
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	CacheLatestReading(sensorID uint, reading *models.Reading) error
	GetLatestReading(sensorID uint) (*models.Reading, error)
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	return &RedisService{
		Client: client,
		Ctx:    ctx,
	}
}

// 1 Ping probes the Redis connection.
func (s *RedisService) Ping() error {
	ctx, cancel := context.WithTimeout(s.Ctx, 5*time.Second)
	defer cancel()
	return s.Client.Ping(ctx).Err()
}

// 2 Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// 3 Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// 4 Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// 5 CacheLatestReading stores the newest reading for a sensor
func (s *RedisService) CacheLatestReading(sensorID uint, reading *models.Reading) error {
	key := fmt.Sprintf("latest_reading:%d", sensorID)
	return s.Set(key, reading, latestReadingTTL)
}

// 6 GetLatestReading gets the newest cached reading for a sensor
func (s *RedisService) GetLatestReading(sensorID uint) (*models.Reading, error) {
	var reading models.Reading
	key := fmt.Sprintf("latest_reading:%d", sensorID)
	if err := s.Get(key, &reading); err != nil {
		return nil, err
	}
	return &reading, nil
}
