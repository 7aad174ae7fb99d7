package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sharath018/event-resource-backend/internal/domain"
)

// Store is the persistence boundary the allocator needs. Every method is a
// single-row atomic operation.
type Store interface {
	FindByIDs(ctx context.Context, ids []uint) ([]Equipment, error)
	// Increment adds amount and returns the new quantity.
	Increment(ctx context.Context, id uint, amount int) (int, error)
	// Decrement subtracts amount only while quantity >= floor and returns the
	// new quantity, or domain.ErrInsufficientInventory.
	Decrement(ctx context.Context, id uint, amount, floor int) (int, error)
}

// Allocator reserves and releases equipment quantity for event lines.
type Allocator struct {
	store Store
}

func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store}
}

type lineOutcome struct {
	available int
	applied   *Adjustment
	err       error
}

// Reconcile moves inventory from the previous reservation set to the next
// one. Lines that do not fit are listed in Rejected; store failures are
// joined into err. It never undoes its own work: successful mutations are
// listed in Applied, also when err is set, so the caller can hand them to
// Restore when the batch fails.
func (a *Allocator) Reconcile(ctx context.Context, previous, next []Line) (AllocationResult, error) {
	prev := quantitiesByID(previous)
	want := quantitiesByID(next)

	ids := make([]uint, 0, len(prev)+len(want))
	seen := make(map[uint]bool, cap(ids))
	for _, l := range append(append([]Line{}, next...), previous...) {
		if !seen[l.EquipmentID] {
			seen[l.EquipmentID] = true
			ids = append(ids, l.EquipmentID)
		}
	}

	items, err := a.store.FindByIDs(ctx, ids)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("load equipment: %w", err)
	}
	byID := make(map[uint]Equipment, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	outcomes := make(map[uint]*lineOutcome, len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			log.Printf("⚠️ equipment %d not found, skipping line", id)
			continue
		}
		prevQty, hadPrev := prev[id]
		nextQty, wantsNext := want[id]

		wg.Add(1)
		go func(item Equipment, prevQty, nextQty int, hadPrev, wantsNext bool) {
			defer wg.Done()
			out := a.applyLine(ctx, item, prevQty, nextQty, hadPrev, wantsNext)
			if out.err != nil {
				out.available = item.Quantity
			}
			mu.Lock()
			outcomes[item.ID] = out
			mu.Unlock()
		}(item, prevQty, nextQty, hadPrev, wantsNext)
	}
	wg.Wait()

	var (
		result AllocationResult
		errs   []error
	)
	for _, id := range ids {
		out, ok := outcomes[id]
		if !ok {
			continue
		}
		if out.applied != nil {
			result.Applied = append(result.Applied, *out.applied)
		}
		switch {
		case out.err == nil:
		case errors.Is(out.err, domain.ErrInsufficientInventory):
			result.Rejected = append(result.Rejected, domain.Ref{ID: id, Name: byID[id].TypeName})
		default:
			log.Printf("❌ equipment %d allocation failed: %v", id, out.err)
			errs = append(errs, fmt.Errorf("equipment %d: %w", id, out.err))
		}
	}
	for _, l := range next {
		out, ok := outcomes[l.EquipmentID]
		if !ok {
			continue
		}
		result.Lines = append(result.Lines, AllocatedLine{
			EquipmentID: l.EquipmentID,
			Name:        byID[l.EquipmentID].TypeName,
			Quantity:    l.Quantity,
			Available:   out.available,
		})
	}
	return result, errors.Join(errs...)
}

func (a *Allocator) applyLine(ctx context.Context, item Equipment, prevQty, nextQty int, hadPrev, wantsNext bool) *lineOutcome {
	switch {
	case hadPrev && !wantsNext:
		if prevQty == 0 {
			return &lineOutcome{available: item.Quantity}
		}
		return a.increment(ctx, item.ID, prevQty)

	case hadPrev && wantsNext:
		delta := prevQty - nextQty
		if delta == 0 {
			return &lineOutcome{available: item.Quantity}
		}
		if delta > 0 {
			return a.increment(ctx, item.ID, delta)
		}
		// A grown line must fit entirely in what is available now, not just
		// the increase: 3 reserved with 2 left cannot grow to 5.
		return a.decrement(ctx, item.ID, -delta, nextQty)

	default:
		if nextQty == 0 {
			return &lineOutcome{available: item.Quantity}
		}
		return a.decrement(ctx, item.ID, nextQty, nextQty)
	}
}

func (a *Allocator) increment(ctx context.Context, id uint, amount int) *lineOutcome {
	qty, err := a.store.Increment(ctx, id, amount)
	if err != nil {
		return &lineOutcome{err: err}
	}
	return &lineOutcome{
		available: qty,
		applied:   &Adjustment{EquipmentID: id, PreviousQuantity: qty - amount, Delta: amount},
	}
}

func (a *Allocator) decrement(ctx context.Context, id uint, amount, floor int) *lineOutcome {
	qty, err := a.store.Decrement(ctx, id, amount, floor)
	if err != nil {
		return &lineOutcome{err: err}
	}
	return &lineOutcome{
		available: qty,
		applied:   &Adjustment{EquipmentID: id, PreviousQuantity: qty + amount, Delta: -amount},
	}
}

// Restore applies the inverse of every adjustment. Inverse deltas are used
// instead of writing PreviousQuantity back so that unrelated concurrent
// changes to the same counter survive the rollback.
func (a *Allocator) Restore(ctx context.Context, applied []Adjustment) error {
	var mu sync.Mutex
	var errs []error
	var wg sync.WaitGroup

	for _, adj := range applied {
		if adj.Delta == 0 {
			continue
		}
		wg.Add(1)
		go func(adj Adjustment) {
			defer wg.Done()
			var err error
			if adj.Delta < 0 {
				_, err = a.store.Increment(ctx, adj.EquipmentID, -adj.Delta)
			} else {
				_, err = a.store.Decrement(ctx, adj.EquipmentID, adj.Delta, adj.Delta)
			}
			if err != nil {
				log.Printf("❌ restore equipment %d (delta %d) failed: %v", adj.EquipmentID, adj.Delta, err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("equipment %d: %w", adj.EquipmentID, err))
				mu.Unlock()
			}
		}(adj)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Release returns every reserved unit of lines to inventory.
func (a *Allocator) Release(ctx context.Context, lines []Line) error {
	result, err := a.Reconcile(ctx, lines, nil)
	if err != nil {
		return fmt.Errorf("release equipment: %w", err)
	}
	if result.Failed() {
		return fmt.Errorf("release %d equipment line(s) failed", len(result.Rejected))
	}
	return nil
}

func quantitiesByID(lines []Line) map[uint]int {
	out := make(map[uint]int, len(lines))
	for _, l := range lines {
		out[l.EquipmentID] += l.Quantity
	}
	return out
}
