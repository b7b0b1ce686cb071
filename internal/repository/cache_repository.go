package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/util"
)

const categoriesKey = "categories:active"

type CacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, ttl time.Duration) *CacheRepository {
	return &CacheRepository{rdb, ttl}
}

func (r *CacheRepository) GetCategories(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.get(ctx, categoriesKey, &names); err != nil || names == nil {
		return nil, err
	}
	return names, nil
}

func (r *CacheRepository) SetCategories(ctx context.Context, names []string) error {
	return r.set(ctx, categoriesKey, names)
}

func (r *CacheRepository) DeleteCategories(ctx context.Context) error {
	return r.del(ctx, categoriesKey)
}

func (r *CacheRepository) GetDocuments(ctx context.Context, userID string) ([]model.Document, error) {
	var documents []model.Document
	if err := r.get(ctx, documentsKey(userID), &documents); err != nil || documents == nil {
		return nil, err
	}
	return documents, nil
}

func (r *CacheRepository) SetDocuments(ctx context.Context, userID string, documents []model.Document) error {
	return r.set(ctx, documentsKey(userID), documents)
}

func (r *CacheRepository) DeleteDocuments(ctx context.Context, userID string) error {
	return r.del(ctx, documentsKey(userID))
}

// get : leaves dst untouched on a miss
func (r *CacheRepository) get(ctx context.Context, key string, dst any) error {
	val, err := r.client.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	} else if err != nil {
		return util.LogError("[CacheRepo] redis get "+key, err)
	}

	if err := json.Unmarshal(val, dst); err != nil {
		return util.LogError("[CacheRepo] decode "+key, err)
	}
	return nil
}

func (r *CacheRepository) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return util.LogError("[CacheRepo] encode "+key, err)
	}

	cmd := r.client.Client.Set(ctx, key, data, r.ttl)
	if err := cmd.Err(); err != nil {
		return util.LogError("[CacheRepo] redis set "+key, err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("[CacheRepo] unexpected redis reply: %s", cmd.Val())
	}
	return nil
}

func (r *CacheRepository) del(ctx context.Context, key string) error {
	if err := r.client.Client.Del(ctx, key).Err(); err != nil {
		return util.LogError("[CacheRepo] redis del "+key, err)
	}
	return nil
}

func documentsKey(userID string) string {
	return fmt.Sprintf("documents:user:%s", userID)
}
