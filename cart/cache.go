package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipebook/models"
)

// Cache holds resolved cart views. Recipes are immutable so a view only
// goes stale when the cart itself changes, and every change deletes it.
//
// Delete also bumps a per-user generation. Set only stores a view when the
// generation still equals the one read before the view was loaded, so a
// slow read cannot put back a cart that was changed meanwhile.
type Cache interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error)
	Generation(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Set(ctx context.Context, userID primitive.ObjectID, gen int64, view *models.CartView) error
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

var (
	ErrCacheMiss  = errors.New("cache miss")
	ErrCacheStale = errors.New("cache generation changed")
)

// generations outlive every cached view
const generationTTL = 24 * time.Hour

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (r *RedisCache) Get(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var view models.CartView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &view, nil
}

func (r *RedisCache) Generation(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

func (r *RedisCache) Set(ctx context.Context, userID primitive.ObjectID, gen int64, view *models.CartView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// jitter keeps a burst of carts from expiring together
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	genKey := generationKey(userID)

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return ErrCacheStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(userID), data, ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrCacheStale), errors.Is(err, redis.TxFailedErr):
		return ErrCacheStale
	default:
		return fmt.Errorf("redis set failed: %w", err)
	}
}

func (r *RedisCache) Delete(ctx context.Context, userID primitive.ObjectID) error {
	genKey := generationKey(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, cacheKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID primitive.ObjectID) string {
	return "cart:" + userID.Hex()
}

func generationKey(userID primitive.ObjectID) string {
	return "cart:gen:" + userID.Hex()
}
