package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"

	"github.com/bincshop/storefront-client/internal/account"
	"github.com/bincshop/storefront-client/internal/alert"
	"github.com/bincshop/storefront-client/internal/catalog"
)

// Favorites tracks two favorite lists: a guest list held only in this
// process, and the server-backed list of the signed-in user. Rapid repeated
// toggles on the same product are sequenced with a per-product counter so
// the last initiated toggle, not the last response to arrive, determines the
// final state.
type Favorites struct {
	mu sync.Mutex

	account *account.Service
	notify  alert.Notifier

	guest  []catalog.Product
	server []catalog.Product
	op     OpState

	seq map[int64]uint64
}

// MergeOutcome reports the result of a guest favorites merge. Err aggregates
// the individual toggle failures; a partially failed merge is still a merge.
type MergeOutcome struct {
	Merged []int64
	Failed []int64
	Err    error
}

func NewFavorites(svc *account.Service, notify alert.Notifier) *Favorites {
	return &Favorites{
		account: svc,
		notify:  notify,
		seq:     make(map[int64]uint64),
	}
}

// ToggleGuest flips a product in the guest list. No server involved.
func (f *Favorites) ToggleGuest(p catalog.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.guest {
		if existing.ID == p.ID {
			f.guest = append(f.guest[:i], f.guest[i+1:]...)
			return
		}
	}
	f.guest = append(f.guest, p)
}

// Guest returns the guest list in insertion order.
func (f *Favorites) Guest() []catalog.Product {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]catalog.Product, len(f.guest))
	copy(out, f.guest)
	return out
}

// Load fetches the authoritative server list.
func (f *Favorites) Load(ctx context.Context) ([]catalog.Product, error) {
	f.mu.Lock()
	f.op.start()
	f.mu.Unlock()

	products, err := f.account.Favorites(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.op.fail(err)
		return f.server, err
	}
	f.server = products
	f.op.succeed()
	return f.server, nil
}

// Toggle flips a product on the server and applies the confirmed state. The
// store is not updated optimistically: membership changes only when the
// server answers, and an answer that arrives after a newer toggle for the
// same product has been initiated is discarded.
func (f *Favorites) Toggle(ctx context.Context, p catalog.Product) (bool, error) {
	f.mu.Lock()
	f.seq[p.ID]++
	initiated := f.seq[p.ID]
	f.mu.Unlock()

	status, err := f.account.ToggleFavorite(ctx, p.ID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seq[p.ID] != initiated {
		log.Debug().Int64("product", p.ID).Msg("discarding stale toggle response")
		return f.contains(p.ID), nil
	}
	if err != nil {
		return f.contains(p.ID), err
	}

	f.apply(p, status.IsFavorite)
	return status.IsFavorite, nil
}

// Server returns the last-known server list.
func (f *Favorites) Server() []catalog.Product {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]catalog.Product, len(f.server))
	copy(out, f.server)
	return out
}

func (f *Favorites) State() OpState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.op
}

// MergeGuest reconciles the guest list into the server list after login.
// Server items keep their positions; guest-only items are toggled onto the
// server one by one and appended in their original order. The merge is
// best-effort: a failing toggle is recorded and the loop continues, and the
// guest list is cleared once the toggles have run. Only when the server
// list itself cannot be loaded is the guest list kept for a later retry.
func (f *Favorites) MergeGuest(ctx context.Context) MergeOutcome {
	f.mu.Lock()
	guest := f.guest
	f.guest = nil
	f.mu.Unlock()

	if len(guest) == 0 {
		return MergeOutcome{}
	}

	server, err := f.Load(ctx)
	if err != nil {
		// Without the server list there is nothing to reconcile against. No
		// toggle was attempted, so the guest list is restored and the merge
		// can be retried after the transient failure passes.
		f.mu.Lock()
		f.guest = append(guest, f.guest...)
		f.mu.Unlock()
		return MergeOutcome{
			Failed: productIDs(guest),
			Err:    fmt.Errorf("load favorites before merge: %w", err),
		}
	}

	held := make(map[int64]bool, len(server))
	for _, p := range server {
		held[p.ID] = true
	}

	var outcome MergeOutcome
	for _, p := range guest {
		if held[p.ID] {
			continue
		}
		status, err := f.account.ToggleFavorite(ctx, p.ID)
		if err != nil {
			outcome.Failed = append(outcome.Failed, p.ID)
			outcome.Err = multierror.Append(outcome.Err, fmt.Errorf("favorite %d: %w", p.ID, err))
			continue
		}
		if status.IsFavorite {
			outcome.Merged = append(outcome.Merged, p.ID)
			f.mu.Lock()
			f.server = append(f.server, p)
			f.mu.Unlock()
		}
	}

	if outcome.Err != nil {
		f.notify.Notify(alert.LevelWarning,
			fmt.Sprintf("%d of %d favorites could not be transferred", len(outcome.Failed), len(guest)))
	}
	return outcome
}

func (f *Favorites) contains(productID int64) bool {
	for _, p := range f.server {
		if p.ID == productID {
			return true
		}
	}
	return false
}

func (f *Favorites) apply(p catalog.Product, favorite bool) {
	for i, existing := range f.server {
		if existing.ID != p.ID {
			continue
		}
		if !favorite {
			f.server = append(f.server[:i], f.server[i+1:]...)
		}
		return
	}
	if favorite {
		f.server = append(f.server, p)
	}
}

func productIDs(products []catalog.Product) []int64 {
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
