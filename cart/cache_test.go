package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipebook/models"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	_, err := c.Get(ctx, userID)
	assert.ErrorIs(t, err, ErrCacheMiss)

	item := models.CartItem{ID: primitive.NewObjectID(), RecipeID: primitive.NewObjectID(), Quantity: 2}
	view := &models.CartView{
		Cart:  models.Cart{ID: primitive.NewObjectID(), UserID: userID, Items: []models.CartItem{item}},
		Lines: []models.CartLineView{{Item: item, Recipe: &models.Recipe{ID: item.RecipeID, Title: "Pancakes"}}},
	}
	require.NoError(t, c.Set(ctx, userID, 0, view))

	ttl := mr.TTL(cacheKey(userID))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.Less(t, ttl, 20*time.Minute)

	got, err := c.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, item.ID, got.Lines[0].Item.ID)
	assert.Equal(t, 2, got.Lines[0].Item.Quantity)
	assert.Equal(t, "Pancakes", got.Lines[0].Recipe.Title)

	require.NoError(t, c.Delete(ctx, userID))
	_, err = c.Get(ctx, userID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	userID := primitive.NewObjectID()
	require.NoError(t, mr.Set(cacheKey(userID), "{not json"))

	_, err := c.Get(context.Background(), userID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_SetSkippedAfterDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	view := &models.CartView{Cart: models.Cart{UserID: userID}}

	gen, err := c.Generation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	require.NoError(t, c.Delete(ctx, userID))
	assert.ErrorIs(t, c.Set(ctx, userID, gen, view), ErrCacheStale)
	_, err = c.Get(ctx, userID)
	assert.ErrorIs(t, err, ErrCacheMiss)

	gen, err = c.Generation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	require.NoError(t, c.Set(ctx, userID, gen, view))
	_, err = c.Get(ctx, userID)
	assert.NoError(t, err)
}
