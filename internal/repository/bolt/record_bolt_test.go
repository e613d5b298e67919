package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"datapost/internal/model"
	"datapost/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, collection string) *RecordBolt {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), collection)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newRecord(id, title, typeTag string, createdAt time.Time) *model.Record {
	return &model.Record{
		ID:        id,
		Title:     title,
		TypeTag:   typeTag,
		Status:    model.StatusPublished,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestRecordBolt_InsertAndFind(t *testing.T) {
	store := openTestStore(t, "data")
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := store.Insert(ctx, newRecord("id-1", "prices", "json", now))
	require.NoError(t, err)

	rec, err := store.FindByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "prices", rec.Title)
	assert.Equal(t, "json", rec.TypeTag)
	assert.True(t, now.Equal(rec.CreatedAt))

	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordBolt_InsertDuplicate(t *testing.T) {
	store := openTestStore(t, "data")
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := store.Insert(ctx, newRecord("id-1", "prices", "json", now))
	require.NoError(t, err)

	_, err = store.Insert(ctx, newRecord("id-2", "prices", "json", now))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	// Same title under another type tag is a different file.
	_, err = store.Insert(ctx, newRecord("id-3", "prices", "csv", now))
	assert.NoError(t, err)
}

func TestRecordBolt_Update(t *testing.T) {
	store := openTestStore(t, "data")
	ctx := context.Background()

	_, err := store.Insert(ctx, newRecord("id-1", "prices", "json", time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, "id-1", "prices", `{"a":1}`))

	rec, err := store.FindByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, rec.Content)
	assert.Equal(t, "json", rec.TypeTag)

	assert.ErrorIs(t, store.Update(ctx, "missing", "x", "y"), repository.ErrNotFound)
}

func TestRecordBolt_Query(t *testing.T) {
	store := openTestStore(t, "data")
	ctx := context.Background()
	base := time.Now().UTC()

	for i, r := range []*model.Record{
		newRecord("id-1", "prices", "json", base),
		newRecord("id-2", "old_prices", "json", base.Add(time.Second)),
		newRecord("id-3", "price_list", "json", base.Add(2*time.Second)),
		newRecord("id-4", "prices", "csv", base.Add(3*time.Second)),
	} {
		_, err := store.Insert(ctx, r)
		require.NoError(t, err, i)
	}

	t.Run("substring capped at default limit, newest first", func(t *testing.T) {
		res, err := store.Query(ctx, repository.RecordQuery{Title: "price", TypeTag: "json"})
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "id-3", res[0].ID)
		assert.Equal(t, "id-2", res[1].ID)
	})

	t.Run("substring with larger limit", func(t *testing.T) {
		res, err := store.Query(ctx, repository.RecordQuery{Title: "price", TypeTag: "json", Limit: 10})
		require.NoError(t, err)
		assert.Len(t, res, 3)
	})

	t.Run("exact", func(t *testing.T) {
		res, err := store.Query(ctx, repository.RecordQuery{Title: "prices", TypeTag: "json", Match: repository.MatchExact})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "id-1", res[0].ID)
	})

	t.Run("type tag filter", func(t *testing.T) {
		res, err := store.Query(ctx, repository.RecordQuery{Title: "prices", TypeTag: "csv"})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "id-4", res[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		res, err := store.Query(ctx, repository.RecordQuery{Title: "prices", TypeTag: "yaml"})
		require.NoError(t, err)
		assert.Empty(t, res)
	})
}

func TestRecordBolt_Delete(t *testing.T) {
	store := openTestStore(t, "data")
	ctx := context.Background()

	_, err := store.Insert(ctx, newRecord("id-1", "prices", "json", time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "id-1"))
	_, err = store.FindByID(ctx, "id-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "id-1"))
}

func TestRecordBolt_CollectionsAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()

	a, err := Open(path, "data")
	require.NoError(t, err)
	_, err = a.Insert(ctx, newRecord("id-1", "prices", "json", time.Now().UTC()))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := Open(path, "reports")
	require.NoError(t, err)
	defer b.Close()

	res, err := b.Query(ctx, repository.RecordQuery{Title: "prices", TypeTag: "json"})
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.NoError(t, b.PingContext(ctx))
}
