package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"productapi/internal/domain"
	"productapi/internal/repos"
)

type ProductView struct {
	ID     string
	Price  decimal.Decimal
	Active bool
}

func viewOf(p *domain.Product) ProductView {
	return ProductView{ID: p.ID().String(), Price: p.Price().Amount(), Active: p.IsActive()}
}

type ProductService struct {
	Products repos.ProductRepository
}

func NewProductService(products repos.ProductRepository) *ProductService {
	return &ProductService{Products: products}
}

func (s *ProductService) load(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, amount decimal.Decimal) (ProductView, error) {
	price, err := domain.NewPrice(amount)
	if err != nil {
		return ProductView{}, err
	}
	p := domain.NewProduct(price, uuid.Nil)
	if err := s.Products.Add(ctx, p); err != nil {
		return ProductView{}, err
	}
	return viewOf(p), nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (ProductView, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return ProductView{}, err
	}
	return viewOf(p), nil
}

func (s *ProductService) List(ctx context.Context) ([]ProductView, error) {
	all, err := s.Products.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProductView, 0, len(all))
	for _, p := range all {
		out = append(out, viewOf(p))
	}
	return out, nil
}

// Update applies the price against the product's current state first and only
// then the optional active flag, so {price, active:false} changes the price and
// deactivates in one call. A price equal to the stored one is not a price
// change: {price: <current>, active: true} reactivates an inactive product.
// The read, the changes and the write are one atomic step per product.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, amount decimal.Decimal, active *bool) (ProductView, error) {
	p, ok, err := s.Products.Update(ctx, id, func(p *domain.Product) error {
		price, err := domain.NewPrice(amount)
		if err != nil {
			return err
		}
		if !price.Equal(p.Price()) {
			if err := p.ChangePrice(price); err != nil {
				return err
			}
		}
		if active != nil {
			if *active {
				p.Activate()
			} else {
				p.Deactivate()
			}
		}
		return nil
	})
	if err != nil {
		return ProductView{}, err
	}
	if !ok {
		return ProductView{}, domain.ErrProductNotFound
	}
	return viewOf(p), nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.Products.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrProductNotFound
	}
	return s.Products.Delete(ctx, id)
}

func (s *ProductService) ChangePrice(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	_, ok, err := s.Products.Update(ctx, id, func(p *domain.Product) error {
		price, err := domain.NewPrice(amount)
		if err != nil {
			return err
		}
		return p.ChangePrice(price)
	})
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrProductNotFound
	}
	return nil
}
