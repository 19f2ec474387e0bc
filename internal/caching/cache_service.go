package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"toolkeeper/internal/models"
)

// CacheService is a read-through cache for registry lookups. Cache failures
// are never fatal; callers log and fall back to the database.
type CacheService interface {
	GetTool(ctx context.Context, barcode string) (*models.Tool, error)
	SetTool(ctx context.Context, tool *models.Tool, ttl time.Duration) error
	DeleteTool(ctx context.Context, barcode string) error

	GetConsumable(ctx context.Context, barcode string) (*models.Consumable, error)
	SetConsumable(ctx context.Context, consumable *models.Consumable, ttl time.Duration) error
	DeleteConsumable(ctx context.Context, barcode string) error

	GetWorker(ctx context.Context, barcode string) (*models.Worker, error)
	SetWorker(ctx context.Context, worker *models.Worker, ttl time.Duration) error
	DeleteWorker(ctx context.Context, barcode string) error

	InvalidateAll(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis:// and rediss:// prefixed addresses.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func toolKey(barcode string) string       { return fmt.Sprintf("tool:%s", barcode) }
func consumableKey(barcode string) string { return fmt.Sprintf("consumable:%s", barcode) }
func workerKey(barcode string) string     { return fmt.Sprintf("worker:%s", barcode) }

// get unmarshals the value at key into dst; found is false on a cache miss.
func (s *redisCacheService) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *redisCacheService) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *redisCacheService) GetTool(ctx context.Context, barcode string) (*models.Tool, error) {
	tool := &models.Tool{}
	found, err := s.get(ctx, toolKey(barcode), tool)
	if err != nil || !found {
		return nil, err
	}
	return tool, nil
}

func (s *redisCacheService) SetTool(ctx context.Context, tool *models.Tool, ttl time.Duration) error {
	return s.set(ctx, toolKey(tool.Barcode), tool, ttl)
}

func (s *redisCacheService) DeleteTool(ctx context.Context, barcode string) error {
	return s.client.Del(ctx, toolKey(barcode)).Err()
}

func (s *redisCacheService) GetConsumable(ctx context.Context, barcode string) (*models.Consumable, error) {
	consumable := &models.Consumable{}
	found, err := s.get(ctx, consumableKey(barcode), consumable)
	if err != nil || !found {
		return nil, err
	}
	return consumable, nil
}

func (s *redisCacheService) SetConsumable(ctx context.Context, consumable *models.Consumable, ttl time.Duration) error {
	return s.set(ctx, consumableKey(consumable.Barcode), consumable, ttl)
}

func (s *redisCacheService) DeleteConsumable(ctx context.Context, barcode string) error {
	return s.client.Del(ctx, consumableKey(barcode)).Err()
}

func (s *redisCacheService) GetWorker(ctx context.Context, barcode string) (*models.Worker, error) {
	worker := &models.Worker{}
	found, err := s.get(ctx, workerKey(barcode), worker)
	if err != nil || !found {
		return nil, err
	}
	return worker, nil
}

func (s *redisCacheService) SetWorker(ctx context.Context, worker *models.Worker, ttl time.Duration) error {
	return s.set(ctx, workerKey(worker.Barcode), worker, ttl)
}

func (s *redisCacheService) DeleteWorker(ctx context.Context, barcode string) error {
	return s.client.Del(ctx, workerKey(barcode)).Err()
}

func (s *redisCacheService) InvalidateAll(ctx context.Context) error {
	for _, pattern := range []string{"tool:*", "consumable:*", "worker:*"} {
		iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}
