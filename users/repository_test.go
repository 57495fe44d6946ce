//go:build integration

package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipebook/db/mongotest"
	"recipebook/models"
)

func TestMongoRepository_CreateAndFind(t *testing.T) {
	repo := NewMongoRepository(mongotest.Start(t))
	ctx := context.Background()

	user := &models.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.False(t, user.ID.IsZero())

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Nil(t, found.Cart)

	byID, err := repo.FindByIDs(ctx, []primitive.ObjectID{user.ID, primitive.NewObjectID()})
	require.NoError(t, err)
	assert.Len(t, byID, 1)

	err = repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "other"})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
