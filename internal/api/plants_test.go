package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/api"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/testutil"
)

func newPlant() model.Plant {
	return model.Plant{
		PlantName:         "Snake Plant",
		Category:          "Succulent",
		CareLevel:         "easy",
		WateringFrequency: "every 10 days",
		LastWateredDate:   "2024-03-01T10:00:00Z",
		HealthStatus:      "healthy",
		OwnerName:         "Sam",
		OwnerEmail:        "sam@example.com",
	}
}

func TestClient_CRUD(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeAPI(t, testutil.SamplePlants()...)
	fake.Token = "secret"
	c := api.NewClient(fake.URL()+"/", api.WithToken(api.StaticToken("secret")))

	plants, err := c.ListPlants(ctx)
	require.NoError(t, err)
	assert.Len(t, plants, 4)

	id, err := c.CreatePlant(ctx, newPlant())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored, ok := fake.Plant(id)
	require.True(t, ok)
	assert.Equal(t, "succulent", stored.Category)
	assert.Equal(t, "2024-03-01", stored.LastWateredDate)
	assert.Equal(t, "2024-03-11", stored.NextWateringDate)

	got, err := c.GetPlant(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Snake Plant", got.PlantName)

	got.WateringFrequency = "every 2 days"
	got.NextWateringDate = "stale"
	require.NoError(t, c.UpdatePlant(ctx, *got))
	stored, _ = fake.Plant(id)
	assert.Equal(t, "2024-03-03", stored.NextWateringDate)

	err = c.UpdatePlant(ctx, *got)
	assert.ErrorIs(t, err, api.ErrNotModified)

	require.NoError(t, c.DeletePlant(ctx, id))
	assert.ErrorIs(t, c.DeletePlant(ctx, id), api.ErrNotFound)

	_, err = c.GetPlant(ctx, id)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestClient_ValidationHappensBeforeRequest(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	c := api.NewClient(fake.URL())

	p := newPlant()
	p.LastWateredDate = "last tuesday"
	_, err := c.CreatePlant(context.Background(), p)

	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 0, fake.Requests())
}

func TestClient_AuthError(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Token = "secret"
	c := api.NewClient(fake.URL(), api.WithToken(api.StaticToken("wrong")))

	_, err := c.ListPlants(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
	assert.ErrorContains(t, err, "unauthorized access")
}

func TestClient_StatusErrorAndNoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := api.NewClient(srv.URL).ListPlants(context.Background())
	require.Error(t, err)

	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "boom", se.Body)
	assert.Equal(t, 1, calls)
	assert.False(t, api.IsAuthError(err))
}

func TestClient_UpdateRequiresID(t *testing.T) {
	err := api.NewClient("http://unused").UpdatePlant(context.Background(), newPlant())
	assert.ErrorContains(t, err, "missing id")
}
