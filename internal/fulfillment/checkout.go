package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aririzq/panelstore/internal/catalog"
	"github.com/aririzq/panelstore/internal/gateway"
	"github.com/aririzq/panelstore/internal/orders"
)

type ProductResolver interface {
	ByIDOrName(ctx context.Context, key string) (*catalog.Product, error)
}

type ChargeCreator interface {
	CreateCharge(ctx context.Context, orderID string, amount int64) (*gateway.Charge, error)
}

type OrderCreator interface {
	Create(ctx context.Context, o *orders.Order) error
}

type CheckoutInput struct {
	OrderID    string
	Amount     int64
	CustomerID string
	ProductKey string // id produk, atau nama (jalur legacy)
}

type CheckoutResult struct {
	OrderID string
	Charge  *gateway.Charge
}

// Checkout memvalidasi input terhadap katalog lalu membuat charge + order
// pending dengan snapshot produk.
type Checkout struct {
	Catalog ProductResolver
	Gateway ChargeCreator
	Orders  OrderCreator
	Events  *Events
}

func (c *Checkout) Create(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if in.OrderID == "" || in.CustomerID == "" || in.ProductKey == "" {
		return nil, fmt.Errorf("%w: missing fields", ErrInvalidInput)
	}

	p, err := c.Catalog.ByIDOrName(ctx, in.ProductKey)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, in.ProductKey)
		}
		return nil, err
	}
	// perbandingan integer, tanpa toleransi
	if in.Amount != p.Price {
		return nil, fmt.Errorf("%w: declared %d, price %d", ErrAmountMismatch, in.Amount, p.Price)
	}

	charge, err := c.Gateway.CreateCharge(ctx, in.OrderID, in.Amount)
	if err != nil {
		return nil, err
	}

	o := &orders.Order{
		ID:         in.OrderID,
		ProductID:  &p.ID,
		Snapshot:   p.Snapshot(),
		Amount:     in.Amount,
		Status:     orders.StatusPending,
		CustomerID: in.CustomerID,
	}
	// Charge di gateway sudah jadi sumber kebenaran pergerakan uang; kegagalan
	// persist di sini dicatat utk rekonsiliasi, bukan dijadikan fatal.
	if err := c.Orders.Create(ctx, o); err != nil {
		log.Printf("checkout: persist order %s gagal (charge tetap hidup di gateway): %v", in.OrderID, err)
	}
	c.Events.OrderCreated(o)

	return &CheckoutResult{OrderID: in.OrderID, Charge: charge}, nil
}
