package domain

import "github.com/google/uuid"

// Product is a sellable item. Its price can only change while it is active.
type Product struct {
	id     uuid.UUID
	price  Price
	active bool
}

// NewProduct creates an active product. A nil id gets a freshly generated one.
func NewProduct(price Price, id uuid.UUID) *Product {
	return RestoreProduct(id, price, true)
}

// RestoreProduct rebuilds a product from storage, keeping its active flag.
func RestoreProduct(id uuid.UUID, price Price, active bool) *Product {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Product{id: id, price: price, active: active}
}

func (p *Product) ID() uuid.UUID  { return p.id }
func (p *Product) Price() Price   { return p.price }
func (p *Product) IsActive() bool { return p.active }

// ChangePrice replaces the price. newPrice is valid by construction, so the only
// rule left to check is the active flag.
func (p *Product) ChangePrice(newPrice Price) error {
	if !p.active {
		return ErrInactiveProduct
	}
	p.price = newPrice
	return nil
}

func (p *Product) Activate()   { p.active = true }
func (p *Product) Deactivate() { p.active = false }

// Clone returns a copy that shares no state with p.
func (p *Product) Clone() *Product {
	c := *p
	return &c
}
