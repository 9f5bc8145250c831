// Package notification is the client for the server-side notification feed.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bincshop/storefront-client/internal/api"
)

type Notification struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Kind      string `json:"type"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List fetches the user's notifications. The endpoint returns either a bare
// array or a {"notifications": [...]} envelope.
func (s *Service) List(ctx context.Context) ([]Notification, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/notifications/", &raw); err != nil {
		return nil, err
	}

	var list []Notification
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var envelope struct {
		Notifications []Notification `json:"notifications"`
		Results       []Notification `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode notification list: %w", err)
	}
	if envelope.Notifications != nil {
		return envelope.Notifications, nil
	}
	return envelope.Results, nil
}

func (s *Service) MarkAllRead(ctx context.Context) error {
	return s.client.Put(ctx, "/notifications/mark-all-read/", nil, nil)
}

func (s *Service) Delete(ctx context.Context, notificationID int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/notifications/%d/", notificationID), nil)
}

func (s *Service) DeleteAll(ctx context.Context) error {
	return s.client.Delete(ctx, "/notifications/all/", nil)
}

// Generate asks the server to produce fresh notifications for the user, such
// as restock and price-drop digests.
func (s *Service) Generate(ctx context.Context) ([]Notification, error) {
	var resp struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := s.client.Post(ctx, "/notifications/generate-ai/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}
