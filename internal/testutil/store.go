package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/store"
)

// NewTestStore opens an in-memory plant mirror with the schema applied.
// The store is closed when the test ends.
func NewTestStore(t testing.TB) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err, "opening test store")
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

// NewSeededStore is NewTestStore with plants mirrored. With no plants it
// seeds SamplePlants.
func NewSeededStore(t testing.TB, plants ...model.Plant) *store.SQLiteStore {
	t.Helper()

	if len(plants) == 0 {
		plants = SamplePlants()
	}
	s := NewTestStore(t)
	require.NoError(t, s.UpsertPlants(context.Background(), plants), "seeding test store")
	return s
}
