// Package reaction is the client for product like/dislike reactions. Some
// deployments run without the reactions backend; that absence is surfaced as
// ErrUnavailable rather than a hard failure.
package reaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/bincshop/storefront-client/internal/api"
)

// ErrUnavailable marks deployments where the reactions endpoints do not
// exist. Callers downgrade this to an informational notice.
var ErrUnavailable = errors.New("reactions are not available on this server")

type Reaction string

const (
	Like    Reaction = "like"
	Dislike Reaction = "dislike"
	Neutral Reaction = "neutral"
)

// Result is the server's post-toggle tally for a product.
type Result struct {
	Likes        int      `json:"likes"`
	Dislikes     int      `json:"dislikes"`
	UserReaction Reaction `json:"user_reaction"`
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Toggle applies the reaction to a product and returns the updated tally.
// Toggling the same reaction twice returns it to neutral server-side.
func (s *Service) Toggle(ctx context.Context, productID int64, r Reaction) (Result, error) {
	if r != Like && r != Dislike && r != Neutral {
		return Result{}, fmt.Errorf("unknown reaction %q", r)
	}

	var result Result
	err := s.client.Post(ctx,
		fmt.Sprintf("/products/%d/reaction/", productID),
		map[string]string{"reaction": string(r)}, &result)
	if api.IsStatus(err, 404) {
		return Result{}, ErrUnavailable
	}
	return result, err
}

// UserReaction fetches the caller's current reaction for a product.
func (s *Service) UserReaction(ctx context.Context, productID int64) (Result, error) {
	var result Result
	err := s.client.Get(ctx, fmt.Sprintf("/products/%d/reaction/", productID), &result)
	if api.IsStatus(err, 404) {
		return Result{}, ErrUnavailable
	}
	return result, err
}
