//go:build integration

// Package mongotest starts a throwaway MongoDB for repository tests.
package mongotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"recipebook/db"
)

// Start runs mongo:7 in a container and returns an indexed database.
// The container is terminated when the test ends.
func Start(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	database, err := db.Connect(ctx, uri, "testdb")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Client().Disconnect(ctx) })

	require.NoError(t, db.EnsureIndexes(ctx, database))
	return database
}
