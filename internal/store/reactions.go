package store

import (
	"context"
	"errors"
	"sync"

	"github.com/bincshop/storefront-client/internal/alert"
	"github.com/bincshop/storefront-client/internal/reaction"
)

// Counts is the aggregate reaction tally for one product.
type Counts struct {
	Likes    int
	Dislikes int
}

// Reactions tracks the user's reaction per product and the aggregate counts.
// A deployment without the reactions backend downgrades to an informational
// notice instead of an error.
type Reactions struct {
	mu sync.Mutex

	svc    *reaction.Service
	notify alert.Notifier

	mine   map[int64]reaction.Reaction
	counts map[int64]Counts
}

func NewReactions(svc *reaction.Service, notify alert.Notifier) *Reactions {
	return &Reactions{
		svc:    svc,
		notify: notify,
		mine:   make(map[int64]reaction.Reaction),
		counts: make(map[int64]Counts),
	}
}

// Toggle applies a reaction and records the server's confirmed tally. An
// unavailable reactions backend is reported once per call as an info notice
// and leaves the local state untouched.
func (r *Reactions) Toggle(ctx context.Context, productID int64, kind reaction.Reaction) error {
	result, err := r.svc.Toggle(ctx, productID, kind)
	if errors.Is(err, reaction.ErrUnavailable) {
		r.notify.Notify(alert.LevelInfo, "reactions are not available right now")
		return nil
	}
	if err != nil {
		return err
	}

	r.record(productID, result)
	return nil
}

// Refresh fetches the user's reaction and the counts for a product.
func (r *Reactions) Refresh(ctx context.Context, productID int64) error {
	result, err := r.svc.UserReaction(ctx, productID)
	if errors.Is(err, reaction.ErrUnavailable) {
		r.notify.Notify(alert.LevelInfo, "reactions are not available right now")
		return nil
	}
	if err != nil {
		return err
	}

	r.record(productID, result)
	return nil
}

func (r *Reactions) record(productID int64, result reaction.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mine[productID] = result.UserReaction
	r.counts[productID] = Counts{Likes: result.Likes, Dislikes: result.Dislikes}
}

// Mine returns the user's recorded reaction for a product, Neutral when none
// is known.
func (r *Reactions) Mine(productID int64) reaction.Reaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kind, ok := r.mine[productID]; ok {
		return kind
	}
	return reaction.Neutral
}

func (r *Reactions) Counts(productID int64) Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[productID]
}
