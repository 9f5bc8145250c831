package owner_test

import (
	"context"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bincshop/storefront-client/internal/api"
	"github.com/bincshop/storefront-client/internal/owner"
)

type tokens struct{}

func (tokens) AccessToken() string  { return "acc" }
func (tokens) RefreshToken() string { return "" }

func newService(t *testing.T, handler http.Handler) *owner.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, 5*time.Second, api.WithTokenProvider(tokens{}))
	require.NoError(t, err)
	return owner.NewService(client)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestCheckShop_NotFoundMeansNoShop(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	shop, err := svc.CheckShop(context.Background())
	require.NoError(t, err, "absence of a shop is not an error")
	assert.Nil(t, shop)
}

func TestCheckShop_ReturnsShop(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dashboard/shop/", r.URL.Path)
		writeJSON(w, `{"id":5,"name":"Corner Shop","is_approved":true}`)
	}))

	shop, err := svc.CheckShop(context.Background())
	require.NoError(t, err)
	require.NotNil(t, shop)
	assert.Equal(t, "Corner Shop", shop.Name)
	assert.True(t, shop.IsApproved)
}

func TestCheckShop_ServerErrorIsAnError(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := svc.CheckShop(context.Background())
	assert.Error(t, err)
}

func TestRegisterShop_Multipart(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Corner Shop", r.FormValue("name"))
		file, header, err := r.FormFile("logo")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "logo.png", header.Filename)

		writeJSON(w, `{"id":5,"name":"Corner Shop"}`)
	}))

	shop, err := svc.RegisterShop(context.Background(), owner.ShopRegistration{
		Name:        "Corner Shop",
		Description: "Everything in one aisle",
		LogoName:    "logo.png",
		Logo:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), shop.ID)
}

func TestRegisterShop_ValidatesInput(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid registration must not reach the server")
	}))

	_, err := svc.RegisterShop(context.Background(), owner.ShopRegistration{Name: "No description"})
	assert.ErrorContains(t, err, "invalid shop registration")
}

func TestCreateProduct_Multipart(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Desk", r.FormValue("name"))
		assert.Equal(t, "120.5", r.FormValue("price"))
		writeJSON(w, `{"id":11,"name":"Desk","price":120.5}`)
	}))

	product, err := svc.CreateProduct(context.Background(), owner.ProductInput{
		Name:      "Desk",
		Price:     120.5,
		ImageName: "desk.jpg",
		Image:     strings.NewReader("jpg-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), product.ID)
}

func TestUpdateProduct_JSONWithoutImage(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/dashboard/products/11/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		writeJSON(w, `{"id":11,"name":"Standing Desk"}`)
	}))

	product, err := svc.UpdateProduct(context.Background(), 11, owner.ProductInput{Name: "Standing Desk", Price: 200})
	require.NoError(t, err)
	assert.Equal(t, "Standing Desk", product.Name)
}

func TestUpdateProduct_MultipartWithImage(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)
		writeJSON(w, `{"id":11}`)
	}))

	_, err := svc.UpdateProduct(context.Background(), 11, owner.ProductInput{
		Name:      "Desk",
		Price:     200,
		ImageName: "new.jpg",
		Image:     strings.NewReader("jpg-bytes"),
	})
	require.NoError(t, err)
}

func TestSpecifications_Lifecycle(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			assert.Equal(t, "/dashboard/products/11/specifications/", r.URL.Path)
			writeJSON(w, `[{"id":1,"name":"material","value":"oak"}]`)
		case r.Method == http.MethodPut:
			assert.Equal(t, "/dashboard/products/11/specifications/1/", r.URL.Path)
			writeJSON(w, `{"id":1,"name":"material","value":"walnut"}`)
		case r.Method == http.MethodDelete:
			assert.Equal(t, "/dashboard/products/11/specifications/1/", r.URL.Path)
			writeJSON(w, `{}`)
		}
	}))

	ctx := context.Background()
	specs, err := svc.Specifications(ctx, 11)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "oak", specs[0].Value)

	updated, err := svc.UpdateSpecification(ctx, 11, 1, owner.Specification{Name: "material", Value: "walnut"})
	require.NoError(t, err)
	assert.Equal(t, "walnut", updated.Value)

	require.NoError(t, svc.DeleteSpecification(ctx, 11, 1))
}

func TestBrandsAndStats(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dashboard/brands/":
			writeJSON(w, `[{"id":1,"name":"Acme"}]`)
		case "/dashboard/stats/":
			writeJSON(w, `{"total_products":3,"total_revenue":42.5}`)
		}
	}))

	ctx := context.Background()
	brands, err := svc.Brands(ctx)
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, "Acme", brands[0].Name)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 42.5, stats.TotalRevenue)
}
