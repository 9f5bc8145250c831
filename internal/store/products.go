package store

import (
	"context"
	"sync"

	"github.com/bincshop/storefront-client/internal/catalog"
)

// Products tracks the catalog listings and the current product detail. The
// four operations carry independent states so a failing listing does not
// block the others.
type Products struct {
	mu sync.Mutex

	catalog *catalog.Service

	all     []catalog.Product
	allOp   OpState
	fresh   []catalog.Product
	freshOp OpState
	popular []catalog.Product
	popOp   OpState

	detail   *catalog.Detail
	detailID int64
	detailOp OpState
}

func NewProducts(svc *catalog.Service) *Products {
	return &Products{catalog: svc}
}

// LoadAll fetches the full listing. When non-empty data is already held and
// no fetch is in flight, the held data is returned without a service call.
// This guard sits above the service-layer cache: it also skips the cache
// lookup and any key computation.
func (p *Products) LoadAll(ctx context.Context) ([]catalog.Product, error) {
	p.mu.Lock()
	if len(p.all) > 0 && !p.allOp.Loading {
		out := p.all
		p.mu.Unlock()
		return out, nil
	}
	p.allOp.start()
	p.mu.Unlock()

	products, err := p.catalog.Products(ctx, nil)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.allOp.fail(err)
		return p.all, err
	}
	p.all = products
	p.allOp.succeed()
	return p.all, nil
}

// LoadNew fetches the new-products listing with the same in-memory guard.
func (p *Products) LoadNew(ctx context.Context, limit int) ([]catalog.Product, error) {
	p.mu.Lock()
	if len(p.fresh) > 0 && !p.freshOp.Loading {
		out := p.fresh
		p.mu.Unlock()
		return out, nil
	}
	p.freshOp.start()
	p.mu.Unlock()

	products, err := p.catalog.NewProducts(ctx, limit)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.freshOp.fail(err)
		return p.fresh, err
	}
	p.fresh = products
	p.freshOp.succeed()
	return p.fresh, nil
}

// LoadPopular fetches the popularity listing with the same in-memory guard.
func (p *Products) LoadPopular(ctx context.Context, limit int) ([]catalog.Product, error) {
	p.mu.Lock()
	if len(p.popular) > 0 && !p.popOp.Loading {
		out := p.popular
		p.mu.Unlock()
		return out, nil
	}
	p.popOp.start()
	p.mu.Unlock()

	products, err := p.catalog.PopularProducts(ctx, limit)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.popOp.fail(err)
		return p.popular, err
	}
	p.popular = products
	p.popOp.succeed()
	return p.popular, nil
}

// LoadDetail fetches a product detail. The guard applies only when the held
// detail is for the requested product.
func (p *Products) LoadDetail(ctx context.Context, productID int64) (catalog.Detail, error) {
	p.mu.Lock()
	if p.detail != nil && p.detailID == productID && !p.detailOp.Loading {
		out := *p.detail
		p.mu.Unlock()
		return out, nil
	}
	p.detailOp.start()
	p.detailID = productID
	p.mu.Unlock()

	detail, err := p.catalog.Detail(ctx, productID)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.detailOp.fail(err)
		if p.detail != nil {
			return *p.detail, err
		}
		return catalog.Detail{}, err
	}
	p.detail = &detail
	p.detailOp.succeed()
	return detail, nil
}

// States returns the four operation states for rendering.
func (p *Products) States() (all, fresh, popular, detail OpState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allOp, p.freshOp, p.popOp, p.detailOp
}

// Invalidate drops the held data so the next load hits the service again.
func (p *Products) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.all = nil
	p.fresh = nil
	p.popular = nil
	p.detail = nil
	p.detailID = 0
}
