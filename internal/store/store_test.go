package store_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bincshop/storefront-client/internal/api"
	"github.com/bincshop/storefront-client/internal/catalog"
)

type tokens struct{}

func (tokens) AccessToken() string  { return "acc" }
func (tokens) RefreshToken() string { return "" }

func newClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, 5*time.Second, api.WithTokenProvider(tokens{}))
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func product(id int64, name string) catalog.Product {
	return catalog.Product{ID: id, Name: name}
}
