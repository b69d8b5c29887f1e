package fulfillment

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/aririzq/panelstore/internal/catalog"
	"github.com/aririzq/panelstore/internal/orders"
	"github.com/aririzq/panelstore/internal/provision"
)

type OrderStore interface {
	GetWithDelivery(ctx context.Context, orderID string) (*orders.Order, *orders.Delivery, error)
	CompleteWithDelivery(ctx context.Context, orderID string, d *orders.Delivery) (bool, error)
	MarkFulfillFailed(ctx context.Context, orderID, reason string) error
}

type StatusChecker interface {
	Status(ctx context.Context, orderID string, amount int64) (bool, error)
}

// Result: apa yang dilihat pemanggil poll setelah satu invokasi dispatch.
type Result struct {
	OrderID    string
	Status     orders.Status
	Settled    bool
	Delivery   *orders.Delivery
	FailReason string // terisi saat Status == paid_failed
}

// Dispatcher: inti rekonsiliasi order. Dipanggil berulang oleh polling klien;
// menentukan status bayar lewat gateway, lalu provisioning sesuai tipe produk
// di snapshot, dengan short-circuit idempoten utk order yang sudah completed.
type Dispatcher struct {
	Store        OrderStore
	Gateway      StatusChecker
	Provisioners map[catalog.ProductType]provision.Provisioner
	Fallback     provision.Provisioner // utk tipe tak dikenal / snapshot legacy tanpa tipe
	Events       *Events

	sf singleflight.Group
}

// Check menjalankan satu putaran rekonsiliasi utk (orderID, amount).
// Invokasi bersamaan utk order yang sama digabung lewat singleflight; pagar
// keduanya ada di conditional update milik store.
func (d *Dispatcher) Check(ctx context.Context, orderID string, amount int64) (*Result, error) {
	v, err, _ := d.sf.Do(orderID, func() (any, error) {
		return d.check(ctx, orderID, amount)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (d *Dispatcher) check(ctx context.Context, orderID string, amount int64) (*Result, error) {
	o, del, err := d.Store.GetWithDelivery(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Short-circuit idempoten: completed (termasuk "paid" legacy) harus
	// dicek sebelum call gateway apapun, supaya poll ulang / invokasi ganda
	// tidak pernah provisioning dua kali.
	if o.Status.IsCompleted() {
		if del == nil {
			return nil, fmt.Errorf("%w: order %s completed tanpa delivery", ErrInconsistent, orderID)
		}
		return &Result{OrderID: orderID, Status: orders.StatusCompleted, Settled: true, Delivery: del}, nil
	}
	if del != nil {
		// delivery tanpa status completed; jangan ditimpa, jangan diulang
		return nil, fmt.Errorf("%w: order %s punya delivery tapi status %s", ErrInconsistent, orderID, o.Status)
	}
	if o.Status == orders.StatusCancelled {
		return &Result{OrderID: orderID, Status: o.Status}, nil
	}
	// Hanya transisi yang sah di FSM yang boleh masuk jalur provisioning:
	// paid_failed menunggu reset operator (jalur /retry), poll biasa cuma
	// melihat statusnya.
	if !orders.CanTransition(o.Status, orders.StatusCompleted) {
		res := &Result{OrderID: orderID, Status: o.Status}
		if o.Status == orders.StatusPaidFailed {
			res.Settled = true
			res.FailReason = strings.TrimSpace(o.Notes)
		}
		return res, nil
	}

	settled, err := d.Gateway.Status(ctx, orderID, amount)
	if err != nil {
		// gagal transient: jangan ubah order, biar di-poll ulang
		return nil, fmt.Errorf("%w: %v", ErrStatusUnknown, err)
	}
	if !settled {
		return &Result{OrderID: orderID, Status: o.Status}, nil
	}

	res, perr := d.provisionerFor(o.Snapshot.Type).Provision(ctx, o)
	if perr != nil {
		// uang sudah masuk; jangan pernah dilapor sebagai error biasa
		reason := perr.Error()
		if err := d.Store.MarkFulfillFailed(ctx, orderID, reason); err != nil {
			log.Printf("dispatch: mark paid_failed %s gagal: %v", orderID, err)
		}
		d.Events.FulfillmentFailed(orderID, reason)
		return &Result{OrderID: orderID, Status: orders.StatusPaidFailed, Settled: true, FailReason: reason}, nil
	}

	delivery := &orders.Delivery{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Kind:      res.Kind,
		Payload:   res.Payload,
		CreatedAt: time.Now().UTC(),
	}
	won, err := d.Store.CompleteWithDelivery(ctx, orderID, delivery)
	if err != nil {
		// resource eksternal mungkin sudah dibuat tapi pencatatan gagal —
		// jendela inkonsistensi yang diterima, serahkan ke operator via log
		log.Printf("dispatch: order %s ter-provision tapi pencatatan gagal: %v", orderID, err)
		return nil, err
	}
	if !won {
		// invokasi lain menang duluan (atau order keburu cancelled); pakai
		// hasil yang sudah tercatat
		o2, del2, err := d.Store.GetWithDelivery(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if o2.Status.IsCompleted() && del2 != nil {
			return &Result{OrderID: orderID, Status: orders.StatusCompleted, Settled: true, Delivery: del2}, nil
		}
		if o2.Status == orders.StatusCancelled {
			return &Result{OrderID: orderID, Status: o2.Status}, nil
		}
		return nil, fmt.Errorf("%w: order %s kalah race tapi tidak ada delivery", ErrInconsistent, orderID)
	}

	d.Events.OrderCompleted(orderID, delivery)
	return &Result{OrderID: orderID, Status: orders.StatusCompleted, Settled: true, Delivery: delivery}, nil
}

func (d *Dispatcher) provisionerFor(t catalog.ProductType) provision.Provisioner {
	if p, ok := d.Provisioners[t]; ok {
		return p
	}
	// tipe legacy/tak dikenal: best-effort jalur panel
	return d.Fallback
}
