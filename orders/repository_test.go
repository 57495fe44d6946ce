//go:build integration

package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"recipebook/db/mongotest"
	"recipebook/models"
)

func TestMongoRepository_PlaceAndGet(t *testing.T) {
	repo := NewMongoRepository(mongotest.Start(t))
	svc := NewService(repo, nil, zap.NewNop())
	ctx := context.Background()

	order, err := svc.Place(ctx, validRequest())
	require.NoError(t, err)
	assert.False(t, order.ID.IsZero())
	assert.NotEqual(t, order.ID.Hex(), order.OrderID)

	got, err := svc.Get(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Len(t, got.Items, 2)

	dup := *order
	dup.ID = primitive.NilObjectID
	assert.ErrorIs(t, repo.Insert(ctx, &dup), models.ErrConflict)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
