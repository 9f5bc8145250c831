// Package account is the client for the signed-in user's own resources:
// profile, preferences and the server-side favorites list.
package account

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bincshop/storefront-client/internal/api"
	"github.com/bincshop/storefront-client/internal/catalog"
)

type Profile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	UserType string `json:"user_type,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// ProfileUpdate carries only the fields the user changed; zero-valued fields
// are left out of the request.
type ProfileUpdate struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type Preferences struct {
	Newsletter        bool   `json:"newsletter"`
	OrderUpdates      bool   `json:"order_updates"`
	PromotionalEmails bool   `json:"promotional_emails"`
	PreferredCurrency string `json:"preferred_currency,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
}

// FavoriteStatus is the server's answer to a toggle or a status probe.
type FavoriteStatus struct {
	ProductID  int64 `json:"product_id"`
	IsFavorite bool  `json:"is_favorite"`
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	err := s.client.Get(ctx, "/user/profile/", &p)
	return p, err
}

func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) (Profile, error) {
	var p Profile
	err := s.client.Patch(ctx, "/user/profile/", update, &p)
	return p, err
}

func (s *Service) Preferences(ctx context.Context) (Preferences, error) {
	var p Preferences
	err := s.client.Get(ctx, "/user/preferences/", &p)
	return p, err
}

func (s *Service) UpdatePreferences(ctx context.Context, prefs Preferences) (Preferences, error) {
	var p Preferences
	err := s.client.Put(ctx, "/user/preferences/", prefs, &p)
	return p, err
}

// Favorites lists the user's server-side favorites. The endpoint has shipped
// both bare arrays and envelope objects, so the listing goes through the
// discriminated decoder.
func (s *Service) Favorites(ctx context.Context) ([]catalog.Product, error) {
	var raw json.RawMessage
	err := s.client.Get(ctx, "/user/favorites/", &raw)
	if err != nil {
		return nil, err
	}
	return catalog.DecodeProductList(raw)
}

// ToggleFavorite flips the favorite flag for a product and returns the
// server-confirmed state.
func (s *Service) ToggleFavorite(ctx context.Context, productID int64) (FavoriteStatus, error) {
	var status FavoriteStatus
	err := s.client.Post(ctx, fmt.Sprintf("/user/favorites/toggle/%d/", productID), nil, &status)
	if err != nil {
		return FavoriteStatus{}, err
	}
	if status.ProductID == 0 {
		status.ProductID = productID
	}
	return status, nil
}

// FavoriteStatus probes whether a single product is favorited without
// mutating anything.
func (s *Service) FavoriteStatus(ctx context.Context, productID int64) (FavoriteStatus, error) {
	var status FavoriteStatus
	err := s.client.Get(ctx, fmt.Sprintf("/user/favorites/%d/status/", productID), &status)
	if err != nil {
		return FavoriteStatus{}, err
	}
	if status.ProductID == 0 {
		status.ProductID = productID
	}
	return status, nil
}
