package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bincshop/storefront-client/internal/api"
	"github.com/bincshop/storefront-client/internal/fetch"
)

// RecommendationKind selects the recommendation strategy exposed by the
// backend.
type RecommendationKind string

const (
	RecommendationBasic        RecommendationKind = "basic"
	RecommendationHybrid       RecommendationKind = "hybrid"
	RecommendationPersonalized RecommendationKind = "personalized"
)

// Service is the catalog client. Listing reads are memoized and de-duplicated
// through fetch groups; writes invalidate the affected entries.
type Service struct {
	client     *api.Client
	lists      *fetch.Group[[]Product]
	details    *fetch.Group[Detail]
	categories *fetch.Group[[]Category]
}

func NewService(client *api.Client, lists *fetch.Group[[]Product], details *fetch.Group[Detail], categories *fetch.Group[[]Category]) *Service {
	return &Service{
		client:     client,
		lists:      lists,
		details:    details,
		categories: categories,
	}
}

// ParseProductID validates the textual product identifier format.
func ParseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id format: %q", s)
	}
	return id, nil
}

// Products lists the catalog. Listings are public endpoints; no credentials
// are attached.
func (s *Service) Products(ctx context.Context, params url.Values) ([]Product, error) {
	key := fetch.Key("/products/", params)
	return s.lists.Do(ctx, key, func(ctx context.Context) ([]Product, error) {
		return s.fetchList(ctx, "/products/", params)
	})
}

// NewProducts lists the most recently added products. When the dedicated
// endpoint fails, the full listing is sorted by creation date as a fallback.
func (s *Service) NewProducts(ctx context.Context, limit int) ([]Product, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	key := fetch.Key("/products/new/", params)
	return s.lists.Do(ctx, key, func(ctx context.Context) ([]Product, error) {
		products, err := s.fetchList(ctx, "/products/new/", params)
		if err == nil {
			return products, nil
		}
		log.Warn().Err(err).Msg("new products endpoint failed, deriving from full listing")
		return s.deriveListing(ctx, limit, byNewest)
	})
}

// PopularProducts lists the products ranked by popularity, with the same
// full-listing fallback as NewProducts.
func (s *Service) PopularProducts(ctx context.Context, limit int) ([]Product, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	key := fetch.Key("/products/popular/", params)
	return s.lists.Do(ctx, key, func(ctx context.Context) ([]Product, error) {
		products, err := s.fetchList(ctx, "/products/popular/", params)
		if err == nil {
			return products, nil
		}
		log.Warn().Err(err).Msg("popular products endpoint failed, deriving from full listing")
		return s.deriveListing(ctx, limit, byPopularity)
	})
}

// FeaturedProducts lists the featured selection with the full-listing
// fallback.
func (s *Service) FeaturedProducts(ctx context.Context, limit int) ([]Product, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	key := fetch.Key("/products/featured/", params)
	return s.lists.Do(ctx, key, func(ctx context.Context) ([]Product, error) {
		products, err := s.fetchList(ctx, "/products/featured/", params)
		if err == nil {
			return products, nil
		}
		log.Warn().Err(err).Msg("featured products endpoint failed, deriving from full listing")
		return s.deriveListing(ctx, limit, byNewest)
	})
}

// Detail fetches a single product with its related products.
func (s *Service) Detail(ctx context.Context, productID int64) (Detail, error) {
	key := fmt.Sprintf("/products/%d/", productID)
	return s.details.Do(ctx, key, func(ctx context.Context) (Detail, error) {
		var detail Detail
		err := s.client.Get(ctx, key, &detail, api.WithoutAuth())
		if err != nil {
			return Detail{}, err
		}
		return detail, nil
	})
}

// Search queries the catalog. Search results are not memoized: queries are
// high-cardinality and rarely repeated.
func (s *Service) Search(ctx context.Context, query string, params url.Values) ([]Product, error) {
	merged := url.Values{"query": {query}}
	for k, vs := range params {
		merged[k] = vs
	}

	var raw json.RawMessage
	err := s.client.Get(ctx, "/products/search/", &raw, api.WithoutAuth(), api.WithQuery(merged))
	if err != nil {
		return nil, err
	}
	return DecodeProductList(raw)
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.categories.Do(ctx, "/categories/", func(ctx context.Context) ([]Category, error) {
		var cats []Category
		err := s.client.Get(ctx, "/categories/", &cats, api.WithoutAuth())
		if err != nil {
			return nil, err
		}
		return cats, nil
	})
}

func (s *Service) Category(ctx context.Context, categoryID int64) (Category, error) {
	var cat Category
	err := s.client.Get(ctx, fmt.Sprintf("/categories/%d/", categoryID), &cat, api.WithoutAuth())
	return cat, err
}

func (s *Service) Reviews(ctx context.Context, productID int64) ([]Review, error) {
	var reviews []Review
	err := s.client.Get(ctx, fmt.Sprintf("/products/%d/reviews/", productID), &reviews, api.WithoutAuth())
	return reviews, err
}

// AddReview creates a review and invalidates the cached detail so the next
// read includes it.
func (s *Service) AddReview(ctx context.Context, productID int64, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	body := map[string]any{"rating": rating, "comment": comment}
	err := s.client.Post(ctx, fmt.Sprintf("/products/%d/reviews/create/", productID), body, nil)
	if err != nil {
		return err
	}
	return s.details.Forget(ctx, fmt.Sprintf("/products/%d/", productID))
}

// Promotions lists the running campaigns.
func (s *Service) Promotions(ctx context.Context) ([]Promotion, error) {
	var promos []Promotion
	err := s.client.Get(ctx, "/promotions/", &promos, api.WithoutAuth())
	return promos, err
}

func (s *Service) Promotion(ctx context.Context, promotionID int64) (Promotion, error) {
	var promo Promotion
	err := s.client.Get(ctx, fmt.Sprintf("/promotions/%d/", promotionID), &promo, api.WithoutAuth())
	return promo, err
}

// Recommendations fetches the selected recommendation listing. These are
// personalized per user, so they bypass the shared cache.
func (s *Service) Recommendations(ctx context.Context, kind RecommendationKind) ([]Product, error) {
	path := "/recommendations/"
	switch kind {
	case RecommendationHybrid:
		path = "/recommendations/hybrid/"
	case RecommendationPersonalized:
		path = "/recommendations/personalized/"
	}

	var raw json.RawMessage
	err := s.client.Get(ctx, path, &raw)
	if err != nil {
		return nil, err
	}
	return DecodeProductList(raw)
}

// ClearCache drops all memoized listings, details and categories.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.lists.Purge(ctx); err != nil {
		return err
	}
	if err := s.details.Purge(ctx); err != nil {
		return err
	}
	return s.categories.Purge(ctx)
}

func (s *Service) fetchList(ctx context.Context, path string, params url.Values) ([]Product, error) {
	var raw json.RawMessage
	opts := []api.RequestOption{api.WithoutAuth()}
	if len(params) > 0 {
		opts = append(opts, api.WithQuery(params))
	}
	err := s.client.Get(ctx, path, &raw, opts...)
	if err != nil {
		return nil, err
	}
	return DecodeProductList(raw)
}

// deriveListing builds a ranked listing from the full catalog when a
// dedicated endpoint is unavailable. Inactive products are excluded.
func (s *Service) deriveListing(ctx context.Context, limit int, less func(a, b Product) bool) ([]Product, error) {
	all, err := s.fetchList(ctx, "/products/", nil)
	if err != nil {
		return nil, err
	}

	active := make([]Product, 0, len(all))
	for _, p := range all {
		if p.Active() {
			active = append(active, p)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return less(active[i], active[j]) })

	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func byNewest(a, b Product) bool {
	return a.CreatedAt > b.CreatedAt
}

func byPopularity(a, b Product) bool {
	pa, pb := a.Popularity, b.Popularity
	if pa == 0 {
		pa = a.Likes
	}
	if pb == 0 {
		pb = b.Likes
	}
	return pa > pb
}
