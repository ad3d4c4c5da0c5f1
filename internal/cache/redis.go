package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"incomify/internal/models"
	"incomify/internal/render"
)

const modelInfoKey = "modelinfo:v1"

type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisClient() (*RedisClient, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	// Test connection
	_, err = client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		ctx:    ctx,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Store what-if view with expiration so a client can re-read its last
// simulation without re-running it
func (r *RedisClient) StoreWhatIfResult(sessionID string, view *render.WhatIfView, duration time.Duration) error {
	key := fmt.Sprintf("whatif:%s", sessionID)

	jsonData, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	err = r.client.Set(r.ctx, key, jsonData, duration).Err()
	if err != nil {
		return fmt.Errorf("failed to store result in Redis: %w", err)
	}

	return nil
}

// Get what-if view
func (r *RedisClient) GetWhatIfResult(sessionID string) (*render.WhatIfView, bool, error) {
	key := fmt.Sprintf("whatif:%s", sessionID)

	data, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil // Key doesn't exist
		}
		return nil, false, fmt.Errorf("failed to get result from Redis: %w", err)
	}

	var view render.WhatIfView
	if err := json.Unmarshal([]byte(data), &view); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &view, true, nil
}

// Delete what-if view
func (r *RedisClient) DeleteWhatIfResult(sessionID string) error {
	key := fmt.Sprintf("whatif:%s", sessionID)
	return r.client.Del(r.ctx, key).Err()
}

// StoreModelInfo shares the fetched model metadata across instances.
func (r *RedisClient) StoreModelInfo(info *models.ModelInfo, duration time.Duration) error {
	jsonData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal model info: %w", err)
	}

	if err := r.client.Set(r.ctx, modelInfoKey, jsonData, duration).Err(); err != nil {
		return fmt.Errorf("failed to store model info in Redis: %w", err)
	}

	return nil
}

// GetModelInfo reads the shared model metadata, if any instance cached it.
func (r *RedisClient) GetModelInfo() (*models.ModelInfo, bool, error) {
	data, err := r.client.Get(r.ctx, modelInfoKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get model info from Redis: %w", err)
	}

	var info models.ModelInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal model info: %w", err)
	}

	return &info, true, nil
}

// Get Redis status
func (r *RedisClient) GetStatus() (map[string]interface{}, error) {
	info, err := r.client.Info(r.ctx).Result()
	if err != nil {
		return nil, err
	}

	stats := r.client.PoolStats()

	return map[string]interface{}{
		"connected":    true,
		"hits":         stats.Hits,
		"misses":       stats.Misses,
		"active_conns": stats.TotalConns,
		"redis_info":   info,
	}, nil
}
