package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, o *Order) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders(id, product_id, snapshot, amount, status, customer_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	`, o.ID, o.ProductID, o.Snapshot, o.Amount, o.Status, o.CustomerID, o.Notes)
	return err
}

// GetWithDelivery: order + delivery-nya (kalau ada) dalam satu round trip.
func (r *Repo) GetWithDelivery(ctx context.Context, orderID string) (*Order, *Delivery, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT o.id, o.product_id, o.snapshot, o.amount, o.status, o.customer_id, o.notes,
		       o.created_at, o.paid_at, o.fulfilled_at,
		       d.id, d.kind, d.payload, d.created_at
		FROM orders o
		LEFT JOIN deliveries d ON d.order_id = o.id
		WHERE o.id = $1
	`, orderID)

	var o Order
	var dID, dKind *string
	var dPayload []byte
	var dCreated *time.Time
	err := row.Scan(&o.ID, &o.ProductID, &o.Snapshot, &o.Amount, &o.Status, &o.CustomerID, &o.Notes,
		&o.CreatedAt, &o.PaidAt, &o.FulfilledAt,
		&dID, &dKind, &dPayload, &dCreated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if dID == nil {
		return &o, nil, nil
	}
	return &o, &Delivery{
		ID:        *dID,
		OrderID:   o.ID,
		Kind:      DeliveryKind(*dKind),
		Payload:   dPayload,
		CreatedAt: *dCreated,
	}, nil
}

// CompleteWithDelivery: transisi ke completed + insert delivery dalam satu
// transaksi. Conditional update (hanya dari pending, sesuai FSM di status.go)
// menjadikan pemenang tunggal saat ada invokasi bersamaan; UNIQUE(order_id)
// di deliveries jadi pagar terakhir. won=false artinya invokasi lain sudah
// menang (atau order keburu cancelled/paid_failed) dan tidak ada yang
// ditulis.
func (r *Repo) CompleteWithDelivery(ctx context.Context, orderID string, d *Delivery) (won bool, err error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE orders SET status='completed', paid_at=now(), fulfilled_at=now()
		WHERE id=$1 AND status='pending'
	`, orderID)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() == 0 {
		return false, nil
	}

	ct, err = tx.Exec(ctx, `
		INSERT INTO deliveries(id, order_id, kind, payload, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (order_id) DO NOTHING
	`, d.ID, orderID, d.Kind, d.Payload)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() == 0 {
		// sudah ada delivery utk order ini; biarkan yang lama yang berlaku
		return false, tx.Commit(ctx)
	}
	return true, tx.Commit(ctx)
}

// MarkFulfillFailed: dibayar tapi provisioning gagal. Alasan ditempel ke
// notes supaya operator tahu harus apa.
func (r *Repo) MarkFulfillFailed(ctx context.Context, orderID, reason string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET status='paid_failed', paid_at=COALESCE(paid_at, now()),
		    notes = trim(both ' ' from notes || ' [fulfill] ' || $2)
		WHERE id=$1 AND status='pending'
	`, orderID, reason)
	return err
}

// CancelIfPending: compare-and-swap di status; no-op kalau sudah bukan pending.
func (r *Repo) CancelIfPending(ctx context.Context, orderID string) (bool, error) {
	ct, err := r.DB.Exec(ctx,
		`UPDATE orders SET status='cancelled' WHERE id=$1 AND status='pending'`, orderID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// ResetFailed: jalur retry operator, paid_failed -> pending, lalu order
// dievaluasi ulang lewat jalur status-check biasa.
func (r *Repo) ResetFailed(ctx context.Context, orderID string) (bool, error) {
	ct, err := r.DB.Exec(ctx,
		`UPDATE orders SET status='pending' WHERE id=$1 AND status='paid_failed'`, orderID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
