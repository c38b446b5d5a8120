package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productapi/internal/domain"
)

func TestNewProduct_Defaults(t *testing.T) {
	p := domain.NewProduct(domain.MustPrice("100"), uuid.Nil)

	assert.NotEqual(t, uuid.Nil, p.ID())
	assert.True(t, p.Price().Equal(domain.MustPrice("100")))
	assert.True(t, p.IsActive())
}

func TestNewProduct_KeepsProvidedID(t *testing.T) {
	id := uuid.New()
	p := domain.NewProduct(domain.MustPrice("50"), id)
	assert.Equal(t, id, p.ID())
}

func TestProduct_ChangePriceWhileActive(t *testing.T) {
	p := domain.NewProduct(domain.MustPrice("100"), uuid.Nil)

	require.NoError(t, p.ChangePrice(domain.MustPrice("150")))
	assert.Equal(t, "150.00", p.Price().String())
}

func TestProduct_ChangePriceWhileInactive(t *testing.T) {
	for _, raw := range []string{"0.01", "100", "150", "99999"} {
		p := domain.NewProduct(domain.MustPrice("100"), uuid.Nil)
		p.Deactivate()

		err := p.ChangePrice(domain.MustPrice(raw))
		require.ErrorIs(t, err, domain.ErrInactiveProduct)
		assert.Equal(t, "Le produit est inactif.", err.Error())
		assert.Equal(t, "100.00", p.Price().String(), "price must be untouched")
	}
}

func TestProduct_ActivateRestoresPriceChange(t *testing.T) {
	p := domain.NewProduct(domain.MustPrice("100"), uuid.Nil)
	p.Deactivate()
	p.Deactivate()
	assert.False(t, p.IsActive())

	p.Activate()
	p.Activate()
	assert.True(t, p.IsActive())
	require.NoError(t, p.ChangePrice(domain.MustPrice("120")))
}

func TestProduct_CloneIsIndependent(t *testing.T) {
	p := domain.NewProduct(domain.MustPrice("100"), uuid.Nil)
	c := p.Clone()
	c.Deactivate()

	assert.True(t, p.IsActive())
	assert.Equal(t, p.ID(), c.ID())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want domain.Kind
	}{
		{domain.ErrInvalidPrice, domain.KindValidation},
		{domain.ErrInactiveProduct, domain.KindDomainRule},
		{fmt.Errorf("update: %w", domain.ErrProductNotFound), domain.KindNotFound},
		{domain.ErrDuplicateID, domain.KindConflict},
		{domain.ErrInvalidCredentials, domain.KindUnauthorized},
		{errors.Join(domain.ErrInvalidToken, errors.New("token is expired")), domain.KindUnauthorized},
		{errors.Join(domain.ErrStorage, errors.New("disk I/O error")), domain.KindInfrastructure},
		{domain.ErrMisconfiguredSigningKey, domain.KindInfrastructure},
		{errors.New("boom"), domain.KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.KindOf(tt.err))
		})
	}
}

func TestSentinel(t *testing.T) {
	wrapped := fmt.Errorf("get product %s: %w", uuid.New(), domain.ErrProductNotFound)
	assert.Equal(t, domain.ErrProductNotFound, domain.Sentinel(wrapped))

	other := errors.New("boom")
	assert.Equal(t, other, domain.Sentinel(other))
}
