package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

const testCollection = "Polytopes.Lattice.SmoothReflexive"

// setupTestStore creates a SQLite mirror in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close(context.Background()))
	})
	return store
}

func testDocuments() []domain.Document {
	return []domain.Document{
		{
			"_id":        "F.2D.0000",
			"DIM":        int64(2),
			"N_VERTICES": int64(3),
			"VERTICES":   []any{[]any{int64(1), int64(-1), int64(-1)}, []any{int64(1), int64(1), int64(0)}},
			"VOLUME":     1.5,
			"_attrs": map[string]any{
				"VERTICES": map[string]any{"_type": "Matrix<Rational,NonSymmetric>"},
			},
		},
		{"_id": "F.2D.0001", "DIM": int64(2), "N_VERTICES": int64(4)},
		{"_id": "F.3D.0000", "DIM": int64(3), "N_VERTICES": int64(4)},
	}
}

func seed(t *testing.T, store *Store) {
	t.Helper()
	n, err := store.Import(context.Background(), testCollection, testDocuments(), "batch-1")
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

// ==================== Store Creation ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "mirror")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close(context.Background())

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	seed(t, store)
	require.NoError(t, store.Close(ctx))

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close(ctx)

	n, err := reopened.Count(ctx, testCollection, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

// ==================== Import ====================

func TestStore_Import_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store)

	doc, err := store.FindOne(context.Background(), testCollection, domain.FindOptions{
		Filter: map[string]any{"_id": "F.2D.0000"},
	})

	require.NoError(t, err)
	assert.Equal(t, testDocuments()[0], doc)
}

func TestStore_Import_Upserts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seed(t, store)

	_, err := store.Import(ctx, testCollection, []domain.Document{
		{"_id": "F.2D.0001", "DIM": int64(2), "N_VERTICES": int64(5)},
	}, "batch-2")
	require.NoError(t, err)

	n, err := store.Count(ctx, testCollection, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	doc, err := store.FindOne(ctx, testCollection, domain.FindOptions{
		Filter: map[string]any{"_id": "F.2D.0001"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), doc["N_VERTICES"])

	batch, err := store.LastBatch(ctx, testCollection)
	require.NoError(t, err)
	assert.Equal(t, "batch-2", batch.ID)
	assert.Equal(t, 1, batch.Documents)
}

func TestStore_Import_AccumulatesBatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	docs := testDocuments()

	_, err := store.Import(ctx, testCollection, docs[:2], "batch-1")
	require.NoError(t, err)
	_, err = store.Import(ctx, testCollection, docs[2:], "batch-1")
	require.NoError(t, err)

	batch, err := store.LastBatch(ctx, testCollection)
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Documents)
	assert.False(t, batch.ImportedAt.IsZero())
}

func TestStore_Import_RequiresID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Import(ctx, testCollection, []domain.Document{
		{"_id": "ok"},
		{"DIM": int64(2)},
	}, "batch-1")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	n, err := store.Count(ctx, testCollection, nil)
	require.NoError(t, err)
	assert.Zero(t, n, "failed imports are rolled back")
}

func TestStore_LastBatch_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.LastBatch(context.Background(), testCollection)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Queries ====================

func TestStore_ListCollectionNames(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seed(t, store)
	_, err := store.Import(ctx, "_collectionInfo."+testCollection,
		[]domain.Document{{"_id": testCollection + ".2.1"}}, "batch-1")
	require.NoError(t, err)

	all, err := store.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testCollection, "_collectionInfo." + testCollection}, all)

	info, err := store.ListCollectionNames(ctx, `^_collectionInfo\.`)
	require.NoError(t, err)
	assert.Equal(t, []string{"_collectionInfo." + testCollection}, info)

	_, err = store.ListCollectionNames(ctx, "(")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Find(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seed(t, store)

	cur, err := store.Find(ctx, testCollection, domain.FindOptions{
		Filter:     map[string]any{"N_VERTICES": 4},
		Sort:       []domain.SortField{{Field: "DIM", Descending: true}},
		Projection: map[string]any{"DIM": 1},
	})
	require.NoError(t, err)

	var docs []domain.Document
	for cur.Next(ctx) {
		docs = append(docs, cur.Document())
	}
	require.NoError(t, cur.Err())
	require.NoError(t, cur.Close(ctx))
	assert.Equal(t, []domain.Document{
		{"_id": "F.3D.0000", "DIM": int64(3)},
		{"_id": "F.2D.0001", "DIM": int64(2)},
	}, docs)
}

func TestStore_FindOne_NotFound(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store)

	_, err := store.FindOne(context.Background(), testCollection, domain.FindOptions{
		Filter: map[string]any{"_id": "missing"},
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DistinctAndCount(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seed(t, store)

	values, err := store.Distinct(ctx, testCollection, "N_VERTICES", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{int64(3), int64(4)}, values)

	n, err := store.Count(ctx, testCollection, map[string]any{"DIM": map[string]any{"$gte": 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDecodeDocument_Numbers(t *testing.T) {
	doc, err := decodeDocument(`{"_id":"x","a":1,"b":2.5,"c":[1,2e3],"d":{"e":18446744073709551616}}`)

	require.NoError(t, err)
	assert.Equal(t, int64(1), doc["a"])
	assert.Equal(t, 2.5, doc["b"])
	assert.Equal(t, []any{int64(1), 2000.0}, doc["c"])
	assert.Equal(t, map[string]any{"e": 1.8446744073709552e19}, doc["d"])

	_, err = decodeDocument("{")
	assert.Error(t, err)
}
