package fulfillment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aririzq/panelstore/internal/catalog"
	"github.com/aririzq/panelstore/internal/gateway"
	"github.com/aririzq/panelstore/internal/orders"
)

type fakeCatalog struct {
	products map[string]*catalog.Product
}

func (c *fakeCatalog) ByIDOrName(ctx context.Context, key string) (*catalog.Product, error) {
	if p, ok := c.products[key]; ok {
		return p, nil
	}
	for _, p := range c.products {
		if p.Name == key {
			return p, nil
		}
	}
	return nil, catalog.ErrNotFound
}

type fakeCharger struct {
	err   error
	calls int
}

func (c *fakeCharger) CreateCharge(ctx context.Context, orderID string, amount int64) (*gateway.Charge, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &gateway.Charge{
		OrderID:   orderID,
		Amount:    amount,
		QRPayload: "00020101021226...",
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}, nil
}

type fakeOrderCreator struct {
	created *orders.Order
	err     error
}

func (s *fakeOrderCreator) Create(ctx context.Context, o *orders.Order) error {
	if s.err != nil {
		return s.err
	}
	s.created = o
	return nil
}

func testProduct() *catalog.Product {
	return &catalog.Product{
		ID:    "p1",
		Type:  catalog.TypePanel,
		Name:  "Panel 2GB",
		Price: 2000,
		Meta:  map[string]string{"ram": "2000", "disk": "4000", "cpu": "80"},
	}
}

func TestCheckoutProductNotFound(t *testing.T) {
	gw := &fakeCharger{}
	store := &fakeOrderCreator{}
	c := &Checkout{Catalog: &fakeCatalog{products: map[string]*catalog.Product{}}, Gateway: gw, Orders: store}

	_, err := c.Create(context.Background(), CheckoutInput{
		OrderID: "TRX-1", Amount: 2000, CustomerID: "6281", ProductKey: "nope",
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 0, gw.calls)
	assert.Nil(t, store.created)
}

func TestCheckoutAmountMismatchCreatesNothing(t *testing.T) {
	gw := &fakeCharger{}
	store := &fakeOrderCreator{}
	c := &Checkout{
		Catalog: &fakeCatalog{products: map[string]*catalog.Product{"p1": testProduct()}},
		Gateway: gw,
		Orders:  store,
	}

	// tanpa toleransi: 1999 != 2000
	_, err := c.Create(context.Background(), CheckoutInput{
		OrderID: "TRX-1", Amount: 1999, CustomerID: "6281", ProductKey: "p1",
	})
	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Equal(t, 0, gw.calls)
	assert.Nil(t, store.created)
}

func TestCheckoutSuccessSnapshotsProduct(t *testing.T) {
	store := &fakeOrderCreator{}
	c := &Checkout{
		Catalog: &fakeCatalog{products: map[string]*catalog.Product{"p1": testProduct()}},
		Gateway: &fakeCharger{},
		Orders:  store,
	}

	res, err := c.Create(context.Background(), CheckoutInput{
		OrderID: "TRX-1", Amount: 2000, CustomerID: "6281", ProductKey: "p1",
	})
	require.NoError(t, err)
	assert.Equal(t, "TRX-1", res.OrderID)
	assert.NotEmpty(t, res.Charge.QRPayload)

	require.NotNil(t, store.created)
	assert.Equal(t, orders.StatusPending, store.created.Status)
	assert.Equal(t, int64(2000), store.created.Snapshot.Price)
	assert.Equal(t, store.created.Amount, store.created.Snapshot.Price)
	assert.Equal(t, catalog.TypePanel, store.created.Snapshot.Type)
	assert.Equal(t, "2000", store.created.Snapshot.Meta["ram"])
}

func TestCheckoutResolvesByLegacyName(t *testing.T) {
	store := &fakeOrderCreator{}
	c := &Checkout{
		Catalog: &fakeCatalog{products: map[string]*catalog.Product{"p1": testProduct()}},
		Gateway: &fakeCharger{},
		Orders:  store,
	}

	_, err := c.Create(context.Background(), CheckoutInput{
		OrderID: "TRX-1", Amount: 2000, CustomerID: "6281", ProductKey: "Panel 2GB",
	})
	require.NoError(t, err)
	require.NotNil(t, store.created)
	require.NotNil(t, store.created.ProductID)
	assert.Equal(t, "p1", *store.created.ProductID)
}

func TestCheckoutGatewayFailureIsFatal(t *testing.T) {
	store := &fakeOrderCreator{}
	c := &Checkout{
		Catalog: &fakeCatalog{products: map[string]*catalog.Product{"p1": testProduct()}},
		Gateway: &fakeCharger{err: errors.New("gateway down")},
		Orders:  store,
	}

	_, err := c.Create(context.Background(), CheckoutInput{
		OrderID: "TRX-1", Amount: 2000, CustomerID: "6281", ProductKey: "p1",
	})
	// tanpa charge tidak ada order
	require.Error(t, err)
	assert.Nil(t, store.created)
}

func TestCheckoutPersistFailureIsSwallowed(t *testing.T) {
	store := &fakeOrderCreator{err: errors.New("db down")}
	c := &Checkout{
		Catalog: &fakeCatalog{products: map[string]*catalog.Product{"p1": testProduct()}},
		Gateway: &fakeCharger{},
		Orders:  store,
	}

	// charge sudah hidup di gateway; kegagalan persist dicatat, bukan fatal
	res, err := c.Create(context.Background(), CheckoutInput{
		OrderID: "TRX-1", Amount: 2000, CustomerID: "6281", ProductKey: "p1",
	})
	require.NoError(t, err)
	assert.Equal(t, "TRX-1", res.OrderID)
}
