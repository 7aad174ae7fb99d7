package inventory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sharath018/event-resource-backend/internal/domain"
	"github.com/sharath018/event-resource-backend/internal/inventory"
	"github.com/sharath018/event-resource-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projector(qty int) inventory.Equipment {
	return inventory.Equipment{ID: 1, TypeName: "Projector", Quantity: qty}
}

func TestReconcileReservesNewLines(t *testing.T) {
	store := testutil.NewInventoryStore(projector(5), inventory.Equipment{ID: 2, TypeName: "Speaker", Quantity: 4})
	alloc := inventory.NewAllocator(store)

	res, err := alloc.Reconcile(context.Background(), nil, []inventory.Line{
		{EquipmentID: 1, Quantity: 3},
		{EquipmentID: 2, Quantity: 4},
	})
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Equal(t, 2, store.Quantity(1))
	assert.Equal(t, 0, store.Quantity(2))

	require.Len(t, res.Lines, 2)
	assert.Equal(t, inventory.AllocatedLine{EquipmentID: 1, Name: "Projector", Quantity: 3, Available: 2}, res.Lines[0])
	assert.Equal(t, []inventory.Line{{EquipmentID: 1, Quantity: 3}, {EquipmentID: 2, Quantity: 4}}, res.Reserved())
}

func TestReconcileRejectsGrowthBeyondAvailability(t *testing.T) {
	store := testutil.NewInventoryStore(projector(5))
	alloc := inventory.NewAllocator(store)
	ctx := context.Background()

	_, err := alloc.Reconcile(ctx, nil, []inventory.Line{{EquipmentID: 1, Quantity: 3}})
	require.NoError(t, err)
	require.Equal(t, 2, store.Quantity(1))

	res, err := alloc.Reconcile(ctx, []inventory.Line{{EquipmentID: 1, Quantity: 3}}, []inventory.Line{{EquipmentID: 1, Quantity: 5}})
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, []domain.Ref{{ID: 1, Name: "Projector"}}, res.Rejected)
	assert.Empty(t, res.Applied)
	assert.Equal(t, 2, store.Quantity(1))
}

func TestReconcileShrinkAndDropReturnStock(t *testing.T) {
	store := testutil.NewInventoryStore(projector(2), inventory.Equipment{ID: 2, TypeName: "Mic", Quantity: 0})
	alloc := inventory.NewAllocator(store)

	res, err := alloc.Reconcile(context.Background(),
		[]inventory.Line{{EquipmentID: 1, Quantity: 3}, {EquipmentID: 2, Quantity: 2}},
		[]inventory.Line{{EquipmentID: 1, Quantity: 1}},
	)
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Equal(t, 4, store.Quantity(1))
	assert.Equal(t, 2, store.Quantity(2))
	assert.Len(t, res.Applied, 2)
	assert.Equal(t, []inventory.Line{{EquipmentID: 1, Quantity: 1}}, res.Reserved())
}

func TestReconcileConservesStock(t *testing.T) {
	store := testutil.NewInventoryStore(projector(10))
	alloc := inventory.NewAllocator(store)
	ctx := context.Background()

	steps := [][]inventory.Line{
		{{EquipmentID: 1, Quantity: 4}},
		{{EquipmentID: 1, Quantity: 5}},
		{{EquipmentID: 1, Quantity: 2}},
		nil,
	}
	var held []inventory.Line
	for _, next := range steps {
		res, err := alloc.Reconcile(ctx, held, next)
		require.NoError(t, err)
		require.False(t, res.Failed())
		held = res.Reserved()

		reserved := 0
		for _, l := range held {
			reserved += l.Quantity
		}
		assert.Equal(t, 10, store.Quantity(1)+reserved)
	}
}

func TestReconcileSkipsUnknownEquipment(t *testing.T) {
	store := testutil.NewInventoryStore(projector(5))
	alloc := inventory.NewAllocator(store)

	res, err := alloc.Reconcile(context.Background(), nil, []inventory.Line{
		{EquipmentID: 1, Quantity: 1},
		{EquipmentID: 99, Quantity: 1},
	})
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Equal(t, []inventory.Line{{EquipmentID: 1, Quantity: 1}}, res.Reserved())
}

func TestRestoreUndoesAppliedAdjustments(t *testing.T) {
	store := testutil.NewInventoryStore(projector(5), inventory.Equipment{ID: 2, TypeName: "Mic", Quantity: 1})
	alloc := inventory.NewAllocator(store)
	ctx := context.Background()

	res, err := alloc.Reconcile(ctx, nil, []inventory.Line{
		{EquipmentID: 1, Quantity: 2},
		{EquipmentID: 2, Quantity: 3},
	})
	require.NoError(t, err)
	require.True(t, res.Failed())
	assert.Equal(t, 3, store.Quantity(1))
	assert.Equal(t, 1, store.Quantity(2))

	require.NoError(t, alloc.Restore(ctx, res.Applied))
	assert.Equal(t, 5, store.Quantity(1))
	assert.Equal(t, 1, store.Quantity(2))
}

func TestReleaseReturnsEverything(t *testing.T) {
	store := testutil.NewInventoryStore(projector(1))
	alloc := inventory.NewAllocator(store)

	require.NoError(t, alloc.Release(context.Background(), []inventory.Line{{EquipmentID: 1, Quantity: 4}}))
	assert.Equal(t, 5, store.Quantity(1))
}

func TestReconcileReturnsStoreFailureAsError(t *testing.T) {
	store := testutil.NewInventoryStore(projector(5), inventory.Equipment{ID: 2, TypeName: "Mic", Quantity: 3})
	store.FailIDs[1] = testutil.ErrInjected
	alloc := inventory.NewAllocator(store)

	res, err := alloc.Reconcile(context.Background(), nil, []inventory.Line{
		{EquipmentID: 1, Quantity: 1},
		{EquipmentID: 2, Quantity: 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.NotErrorIs(t, err, domain.ErrInsufficientInventory)
	assert.False(t, res.Failed())
	assert.Equal(t, 5, store.Quantity(1))

	// The mic was taken before the batch failed; it must be handed back.
	require.Len(t, res.Applied, 1)
	assert.Equal(t, 2, store.Quantity(2))
	require.NoError(t, alloc.Restore(context.Background(), res.Applied))
	assert.Equal(t, 3, store.Quantity(2))
}

func TestReleaseReportsStoreFailure(t *testing.T) {
	store := testutil.NewInventoryStore(projector(1))
	store.FailIDs[1] = testutil.ErrInjected
	alloc := inventory.NewAllocator(store)

	err := alloc.Release(context.Background(), []inventory.Line{{EquipmentID: 1, Quantity: 4}})
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Equal(t, 1, store.Quantity(1))
}

func TestRejectedLineShowsCurrentStock(t *testing.T) {
	store := testutil.NewInventoryStore(projector(5))
	alloc := inventory.NewAllocator(store)
	ctx := context.Background()

	_, err := alloc.Reconcile(ctx, nil, []inventory.Line{{EquipmentID: 1, Quantity: 3}})
	require.NoError(t, err)

	res, err := alloc.Reconcile(ctx, []inventory.Line{{EquipmentID: 1, Quantity: 3}}, []inventory.Line{{EquipmentID: 1, Quantity: 5}})
	require.NoError(t, err)
	require.True(t, res.Failed())
	require.Len(t, res.Lines, 1)
	assert.Equal(t, inventory.AllocatedLine{EquipmentID: 1, Name: "Projector", Quantity: 5, Available: 2}, res.Lines[0])
}

func TestReconcileConcurrentRequestsNeverOversell(t *testing.T) {
	store := testutil.NewInventoryStore(projector(10))
	alloc := inventory.NewAllocator(store)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		admitted atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := alloc.Reconcile(ctx, nil, []inventory.Line{{EquipmentID: 1, Quantity: 1}})
			assert.NoError(t, err)
			if !res.Failed() {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), admitted.Load())
	assert.Equal(t, 0, store.Quantity(1))
}
