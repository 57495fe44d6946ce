package recipes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipebook/models"
	"recipebook/users"
)

func newTestService(t *testing.T) (*Service, *models.Identity) {
	t.Helper()
	userRepo := users.NewMemoryRepository()
	alice := &models.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, userRepo.Create(context.Background(), alice))
	return NewService(NewMemoryRepository(), userRepo), &models.Identity{UserID: alice.ID, Username: alice.Username}
}

func TestCreate_RequiresIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.Create(ctx, nil, &models.Recipe{Title: "Pancakes"})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	list, err := svc.List(ctx, models.RecipeFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_SetsCreatorAndValidates(t *testing.T) {
	svc, alice := newTestService(t)
	ctx := context.Background()

	forged := primitive.NewObjectID()
	r := &models.Recipe{Title: "Pancakes", CreatedBy: forged}
	require.NoError(t, svc.Create(ctx, alice, r))
	assert.Equal(t, alice.UserID, r.CreatedBy)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Creator)
	assert.Equal(t, "alice", got.Creator.Username)

	err = svc.Create(ctx, alice, &models.Recipe{})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestList_FiltersNewestFirst(t *testing.T) {
	svc, alice := newTestService(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, r := range []models.Recipe{
		{Title: "Pancakes", Category: "breakfast", Difficulty: "easy"},
		{Title: "Omelette", Category: "breakfast", Difficulty: "medium"},
		{Title: "Lasagne", Category: "dinner", Difficulty: "hard"},
	} {
		r := r
		r.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, svc.Create(ctx, alice, &r))
	}

	titles := func(filter models.RecipeFilter) []string {
		list, err := svc.List(ctx, filter)
		require.NoError(t, err)
		out := []string{}
		for _, r := range list {
			require.NotNil(t, r.Creator)
			out = append(out, r.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Lasagne", "Omelette", "Pancakes"}, titles(models.RecipeFilter{}))
	assert.Equal(t, []string{"Omelette", "Pancakes"}, titles(models.RecipeFilter{Category: "breakfast"}))
	assert.Equal(t, []string{"Pancakes"}, titles(models.RecipeFilter{Category: "breakfast", Difficulty: "easy"}))
	assert.Empty(t, titles(models.RecipeFilter{Difficulty: "impossible"}))
}

func TestGet_Missing(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
