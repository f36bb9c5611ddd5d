package recent_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nhle/plant-care/internal/recent"
	"github.com/nhle/plant-care/internal/recent/mocks"
)

type plant struct {
	ID   string `json:"_id"`
	Name string `json:"plantName"`
}

func ids(items []recent.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestTracker_RecordView(t *testing.T) {
	ctx := context.Background()

	t.Run("most recent first with eviction", func(t *testing.T) {
		tr := recent.New(&recent.MemoryStorage{}, recent.WithCapacity(2))
		for _, id := range []string{"a", "b", "c"} {
			_, err := tr.RecordView(ctx, id, plant{ID: id})
			require.NoError(t, err)
		}

		items, err := tr.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b"}, ids(items))
	})

	t.Run("repeat view is idempotent", func(t *testing.T) {
		tr := recent.New(&recent.MemoryStorage{}, recent.WithCapacity(2))
		_, err := tr.RecordView(ctx, "a", plant{ID: "a"})
		require.NoError(t, err)
		got, err := tr.RecordView(ctx, "a", plant{ID: "a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(got))
	})

	t.Run("revisit moves to front without duplication", func(t *testing.T) {
		tr := recent.New(&recent.MemoryStorage{})
		for _, id := range []string{"a", "b", "c", "b"} {
			_, err := tr.RecordView(ctx, id, plant{ID: id})
			require.NoError(t, err)
		}
		items, _ := tr.LoadAll(ctx)
		assert.Equal(t, []string{"b", "c", "a"}, ids(items))
	})

	t.Run("payload is a snapshot", func(t *testing.T) {
		tr := recent.New(&recent.MemoryStorage{})
		p := &plant{ID: "a", Name: "Fern"}
		_, err := tr.RecordView(ctx, p.ID, p)
		require.NoError(t, err)

		p.Name = "Cactus"

		items, _ := tr.LoadAll(ctx)
		require.Len(t, items, 1)
		got, err := recent.Decode[plant](items[0])
		require.NoError(t, err)
		assert.Equal(t, "Fern", got.Name)
	})

	t.Run("explicit capacity", func(t *testing.T) {
		tr := recent.New(&recent.MemoryStorage{})
		for i := 0; i < 5; i++ {
			_, err := tr.RecordView(ctx, fmt.Sprint(i), nil)
			require.NoError(t, err)
		}
		got, err := tr.RecordViewWithCapacity(ctx, "x", nil, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "4", "3"}, ids(got))
	})

	t.Run("empty id rejected", func(t *testing.T) {
		tr := recent.New(&recent.MemoryStorage{})
		_, err := tr.RecordView(ctx, "", nil)
		assert.ErrorIs(t, err, recent.ErrEmptyID)
	})
}

func TestTracker_DefaultCapacity(t *testing.T) {
	ctx := context.Background()
	tr := recent.New(&recent.MemoryStorage{})
	assert.Equal(t, 6, tr.Capacity())

	for i := 0; i < 10; i++ {
		_, err := tr.RecordView(ctx, fmt.Sprint(i), nil)
		require.NoError(t, err)
	}
	items, _ := tr.LoadAll(ctx)
	assert.Equal(t, []string{"9", "8", "7", "6", "5", "4"}, ids(items))
}

func TestTracker_RandomSequencesKeepInvariants(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	const capacity = 4

	tr := recent.New(&recent.MemoryStorage{}, recent.WithCapacity(capacity))
	var model []string

	for step := 0; step < 500; step++ {
		id := fmt.Sprint(rng.Intn(10))
		if rng.Intn(4) == 0 {
			_, err := tr.RemoveItem(ctx, id)
			require.NoError(t, err)
			model = without(model, id)
		} else {
			got, err := tr.RecordView(ctx, id, nil)
			require.NoError(t, err)
			require.Equal(t, id, got[0].ID)
			model = append([]string{id}, without(model, id)...)
			if len(model) > capacity {
				model = model[:capacity]
			}
		}

		items, err := tr.LoadAll(ctx)
		require.NoError(t, err)
		require.Equal(t, model, ids(items), "step %d", step)
		require.LessOrEqual(t, len(items), capacity)
	}
}

func without(s []string, id string) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func TestTracker_RemoveItem(t *testing.T) {
	ctx := context.Background()
	tr := recent.New(&recent.MemoryStorage{})
	for _, id := range []string{"a", "b", "c"} {
		_, err := tr.RecordView(ctx, id, nil)
		require.NoError(t, err)
	}

	got, err := tr.RemoveItem(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(got))

	got, err = tr.RemoveItem(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(got))

	require.NoError(t, tr.Clear(ctx))
	items, _ := tr.LoadAll(ctx)
	assert.Empty(t, items)
}

func TestTracker_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces snapshot in place", func(t *testing.T) {
		tr := recent.New(&recent.MemoryStorage{})
		for _, id := range []string{"c", "b", "a"} {
			_, err := tr.RecordView(ctx, id, plant{ID: id, Name: "old " + id})
			require.NoError(t, err)
		}

		got, err := tr.Refresh(ctx, "b", plant{ID: "b", Name: "new b"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ids(got))

		items, _ := tr.LoadAll(ctx)
		assert.Equal(t, []string{"a", "b", "c"}, ids(items))
		b, err := recent.Decode[plant](items[1])
		require.NoError(t, err)
		assert.Equal(t, "new b", b.Name)
		a, err := recent.Decode[plant](items[0])
		require.NoError(t, err)
		assert.Equal(t, "old a", a.Name)
	})

	t.Run("absent id writes nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		storage := mocks.NewMockStorage(ctrl)
		storage.EXPECT().Get(gomock.Any(), recent.DefaultKey).Return(`[{"id":"a"}]`, true, nil)

		got, err := recent.New(storage).Refresh(ctx, "zz", plant{ID: "zz"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(got))
	})

	t.Run("write failure keeps stored order", func(t *testing.T) {
		const stored = `[{"id":"a"},{"id":"b"},{"id":"c"}]`
		ctrl := gomock.NewController(t)
		storage := mocks.NewMockStorage(ctrl)
		storage.EXPECT().Get(gomock.Any(), recent.DefaultKey).Return(stored, true, nil).Times(2)
		storage.EXPECT().Set(gomock.Any(), recent.DefaultKey, gomock.Any()).Return(errors.New("disk full")).Times(1)

		tr := recent.New(storage)
		_, err := tr.Refresh(ctx, "b", plant{ID: "b", Name: "new b"})
		var swe *recent.StorageWriteError
		require.ErrorAs(t, err, &swe)

		items, err := tr.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ids(items))
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := recent.New(&recent.MemoryStorage{}).Refresh(ctx, "", nil)
		assert.ErrorIs(t, err, recent.ErrEmptyID)
	})
}

func TestTracker_CorruptStateIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := &recent.MemoryStorage{}
	require.NoError(t, store.Set(ctx, recent.DefaultKey, "{not json"))

	tr := recent.New(store)
	items, err := tr.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	got, err := tr.RecordView(ctx, "a", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestTracker_DuplicateStoredEntriesCollapse(t *testing.T) {
	ctx := context.Background()
	store := &recent.MemoryStorage{}
	require.NoError(t, store.Set(ctx, recent.DefaultKey, `[{"id":"a"},{"id":"b"},{"id":"a"},{"id":""}]`))

	items, err := recent.New(store).LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(items))
}

func TestTracker_StorageFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("write failure surfaces StorageWriteError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		storage := mocks.NewMockStorage(ctrl)
		storage.EXPECT().Get(gomock.Any(), recent.DefaultKey).Return("", false, nil)
		storage.EXPECT().Set(gomock.Any(), recent.DefaultKey, gomock.Any()).Return(errors.New("disk full"))

		_, err := recent.New(storage).RecordView(ctx, "a", nil)
		require.Error(t, err)

		var swe *recent.StorageWriteError
		require.ErrorAs(t, err, &swe)
		assert.Equal(t, recent.DefaultKey, swe.Key)
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("read failure treated as empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		storage := mocks.NewMockStorage(ctrl)
		storage.EXPECT().Get(gomock.Any(), "custom").Return("", false, errors.New("locked"))
		storage.EXPECT().Set(gomock.Any(), "custom", `[{"id":"a","payload":{"_id":"a","plantName":""}}]`).Return(nil)

		got, err := recent.New(storage, recent.WithKey("custom")).RecordView(ctx, "a", plant{ID: "a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(got))
	})
}

func TestOthers(t *testing.T) {
	items := []recent.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	assert.Equal(t, []string{"a", "c"}, ids(recent.Others(items, "b")))
	assert.Equal(t, []string{"a", "b", "c"}, ids(recent.Others(items, "z")))
}
