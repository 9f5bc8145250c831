// Package owner is the shop owner's dashboard client: shop registration and
// settings, the owner-scoped product catalog, brands and sales analytics.
package owner

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/bincshop/storefront-client/internal/api"
)

type Shop struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	IsApproved  bool   `json:"is_approved"`
}

// ShopRegistration is the multipart payload for registering a new shop. The
// logo upload is optional.
type ShopRegistration struct {
	Name        string `validate:"required"`
	Description string `validate:"required"`
	Address     string
	Phone       string
	LogoName    string
	Logo        io.Reader
}

type Settings struct {
	Name             string `json:"name,omitempty"`
	Description      string `json:"description,omitempty"`
	Address          string `json:"address,omitempty"`
	Phone            string `json:"phone,omitempty"`
	AcceptingOrders  *bool  `json:"accepting_orders,omitempty"`
	ShippingFlatRate string `json:"shipping_flat_rate,omitempty"`
}

// ProductInput is the owner-side product payload. Create goes up as
// multipart (image upload); updates without an image go up as JSON.
type ProductInput struct {
	Name        string    `json:"name,omitempty" validate:"required"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price,omitempty" validate:"gt=0"`
	Stock       int       `json:"stock,omitempty"`
	Category    string    `json:"category,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	ImageName   string    `json:"-"`
	Image       io.Reader `json:"-"`
}

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Image       string  `json:"image"`
	IsActive    bool    `json:"is_active"`
}

// Specification is one technical attribute of an owner product, such as a
// dimension or material.
type Specification struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Stats struct {
	TotalProducts int     `json:"total_products"`
	TotalOrders   int     `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
	PendingOrders int     `json:"pending_orders"`
}

type Analytics struct {
	SalesByDay    map[string]float64 `json:"sales_by_day"`
	TopProducts   []Product          `json:"top_products"`
	OrdersByState map[string]int     `json:"orders_by_state"`
}

var validate = validator.New()

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// CheckShop reports the caller's shop, or nil when none is registered yet. A
// 404 is the server's way of saying "no shop", not a failure.
func (s *Service) CheckShop(ctx context.Context) (*Shop, error) {
	var shop Shop
	err := s.client.Get(ctx, "/dashboard/shop/", &shop)
	if api.IsStatus(err, 404) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// RegisterShop creates the shop via a multipart upload.
func (s *Service) RegisterShop(ctx context.Context, reg ShopRegistration) (Shop, error) {
	if err := validate.Struct(reg); err != nil {
		return Shop{}, fmt.Errorf("invalid shop registration: %w", err)
	}

	form := api.NewForm()
	if err := s.fillShopForm(form, reg); err != nil {
		return Shop{}, err
	}

	var shop Shop
	err := s.client.PostForm(ctx, "/dashboard/shop/register/", form, &shop)
	return shop, err
}

func (s *Service) fillShopForm(form *api.Form, reg ShopRegistration) error {
	fields := map[string]string{
		"name":        reg.Name,
		"description": reg.Description,
		"address":     reg.Address,
		"phone":       reg.Phone,
	}
	for name, value := range fields {
		if err := form.AddField(name, value); err != nil {
			return fmt.Errorf("encode shop form: %w", err)
		}
	}
	if reg.Logo != nil {
		if err := form.AddFile("logo", reg.LogoName, reg.Logo); err != nil {
			return fmt.Errorf("encode shop logo: %w", err)
		}
	}
	return nil
}

func (s *Service) Settings(ctx context.Context) (Settings, error) {
	var settings Settings
	err := s.client.Get(ctx, "/dashboard/shop/settings/", &settings)
	return settings, err
}

func (s *Service) UpdateSettings(ctx context.Context, settings Settings) (Settings, error) {
	var updated Settings
	err := s.client.Patch(ctx, "/dashboard/shop/settings/", settings, &updated)
	return updated, err
}

func (s *Service) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	err := s.client.Get(ctx, "/dashboard/products/", &products)
	return products, err
}

// CreateProduct uploads a new product as multipart so the image travels with
// its fields.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (Product, error) {
	if err := validate.Struct(input); err != nil {
		return Product{}, fmt.Errorf("invalid product: %w", err)
	}

	form := api.NewForm()
	if err := s.fillProductForm(form, input); err != nil {
		return Product{}, err
	}

	var product Product
	err := s.client.PostForm(ctx, "/dashboard/products/", form, &product)
	return product, err
}

// UpdateProduct patches a product. With an image attached the update is
// multipart; otherwise a plain JSON patch suffices.
func (s *Service) UpdateProduct(ctx context.Context, productID int64, input ProductInput) (Product, error) {
	path := fmt.Sprintf("/dashboard/products/%d/", productID)

	var product Product
	if input.Image == nil {
		err := s.client.Patch(ctx, path, input, &product)
		return product, err
	}

	form := api.NewForm()
	if err := s.fillProductForm(form, input); err != nil {
		return Product{}, err
	}
	err := s.client.PatchForm(ctx, path, form, &product)
	return product, err
}

func (s *Service) DeleteProduct(ctx context.Context, productID int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/dashboard/products/%d/", productID), nil)
}

func (s *Service) fillProductForm(form *api.Form, input ProductInput) error {
	fields := map[string]string{
		"name":        input.Name,
		"description": input.Description,
		"category":    input.Category,
		"brand":       input.Brand,
	}
	if input.Price > 0 {
		fields["price"] = strconv.FormatFloat(input.Price, 'f', -1, 64)
	}
	if input.Stock > 0 {
		fields["stock"] = strconv.Itoa(input.Stock)
	}
	for name, value := range fields {
		if err := form.AddField(name, value); err != nil {
			return fmt.Errorf("encode product form: %w", err)
		}
	}
	if input.Image != nil {
		if err := form.AddFile("image", input.ImageName, input.Image); err != nil {
			return fmt.Errorf("encode product image: %w", err)
		}
	}
	return nil
}

func (s *Service) Specifications(ctx context.Context, productID int64) ([]Specification, error) {
	var specs []Specification
	err := s.client.Get(ctx, fmt.Sprintf("/dashboard/products/%d/specifications/", productID), &specs)
	return specs, err
}

func (s *Service) UpdateSpecification(ctx context.Context, productID, specID int64, spec Specification) (Specification, error) {
	var updated Specification
	err := s.client.Put(ctx,
		fmt.Sprintf("/dashboard/products/%d/specifications/%d/", productID, specID), spec, &updated)
	return updated, err
}

func (s *Service) DeleteSpecification(ctx context.Context, productID, specID int64) error {
	return s.client.Delete(ctx,
		fmt.Sprintf("/dashboard/products/%d/specifications/%d/", productID, specID), nil)
}

func (s *Service) Brands(ctx context.Context) ([]Brand, error) {
	var brands []Brand
	err := s.client.Get(ctx, "/dashboard/brands/", &brands)
	return brands, err
}

func (s *Service) CreateBrand(ctx context.Context, name string) (Brand, error) {
	var brand Brand
	err := s.client.Post(ctx, "/dashboard/brands/", map[string]string{"name": name}, &brand)
	return brand, err
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.client.Get(ctx, "/dashboard/stats/", &stats)
	return stats, err
}

func (s *Service) Analytics(ctx context.Context) (Analytics, error) {
	var analytics Analytics
	err := s.client.Get(ctx, "/dashboard/analytics/", &analytics)
	return analytics, err
}
