package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryptonum-dev/audiofast-filters/internal/domain"
)

func testProduct(id string) domain.ProductFilterMetadata {
	return domain.ProductFilterMetadata{
		ID:           id,
		Name:         "Product " + id,
		Slug:         "product-" + id,
		CategoryPath: "/kategoria/glosniki/",
		BrandSlug:    "brand-1",
	}
}

func TestMemoryStore_UpsertAndSnapshot(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	p := testProduct("p1")
	require.NoError(t, store.Upsert(ctx, &p))

	products, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, p, products[0])
}

func TestMemoryStore_UpsertReplacesExisting(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	p := testProduct("p1")
	require.NoError(t, store.Upsert(ctx, &p))

	updated := testProduct("p1")
	updated.Name = "Renamed"
	require.NoError(t, store.Upsert(ctx, &updated))

	products, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Renamed", products[0].Name)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	p := testProduct("p1")
	require.NoError(t, store.Upsert(ctx, &p))
	require.NoError(t, store.Delete(ctx, "p1"))

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStore_DeleteUnknownIDIsNoOp(t *testing.T) {
	store := NewMemoryStore()

	assert.NoError(t, store.Delete(context.Background(), "missing"))
}

func TestMemoryStore_BulkUpsert(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.BulkUpsert(ctx, []domain.ProductFilterMetadata{
		testProduct("p2"),
		testProduct("p1"),
	}))

	products, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	// Snapshot orders by ID.
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "p2", products[1].ID)
}

func TestMemoryStore_ReplaceSwapsCatalog(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.BulkUpsert(ctx, []domain.ProductFilterMetadata{
		testProduct("old1"),
		testProduct("old2"),
	}))

	require.NoError(t, store.Replace(ctx, []domain.ProductFilterMetadata{
		testProduct("new1"),
	}))

	products, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "new1", products[0].ID)
}

func TestMemoryStore_SnapshotIsACopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	p := testProduct("p1")
	require.NoError(t, store.Upsert(ctx, &p))

	first, err := store.Snapshot(ctx)
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Product p1", second[0].Name)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			p := testProduct(id)
			_ = store.Upsert(ctx, &p)
		}("p" + string(rune('0'+i)))
		go func() {
			defer wg.Done()
			_, _ = store.Snapshot(ctx)
		}()
	}
	wg.Wait()

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}
