package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/aririzq/panelstore/internal/catalog"
	"github.com/aririzq/panelstore/internal/fulfillment"
	"github.com/aririzq/panelstore/internal/orders"
	"github.com/aririzq/panelstore/internal/redisx"
)

type Checkouter interface {
	Create(ctx context.Context, in fulfillment.CheckoutInput) (*fulfillment.CheckoutResult, error)
}

type Dispatch interface {
	Check(ctx context.Context, orderID string, amount int64) (*fulfillment.Result, error)
}

type OrderAdmin interface {
	CancelIfPending(ctx context.Context, orderID string) (bool, error)
	ResetFailed(ctx context.Context, orderID string) (bool, error)
}

type ProductLister interface {
	ListActive(ctx context.Context) ([]catalog.Product, error)
}

type DownloadVerifier interface {
	Verify(token string) (string, error)
}

type StoreHandler struct {
	Checkout   Checkouter
	Dispatcher Dispatch
	Orders     OrderAdmin
	Catalog    ProductLister
	Downloads  DownloadVerifier
	Events     *fulfillment.Events
	Redis      *redis.Client
}

func (h *StoreHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.checkout)
	r.Get("/orders/{id}/status", h.orderStatus)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Post("/orders/{id}/retry", h.retryOrder)
	r.Get("/products", h.listProducts)
	r.Get("/download", h.download)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type CheckoutReq struct {
	OrderID    string `json:"order_id"`
	Amount     int64  `json:"amount"`
	CustomerID string `json:"customer_id"`
	Product    string `json:"product"` // id, atau nama produk (legacy)
}

type CheckoutResp struct {
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	QRPayload string `json:"qr_payload"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

func (h *StoreHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.OrderID == "" || req.CustomerID == "" || req.Product == "" || req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Checkout.Create(ctx, fulfillment.CheckoutInput{
		OrderID:    req.OrderID,
		Amount:     req.Amount,
		CustomerID: req.CustomerID,
		ProductKey: req.Product,
	})
	switch {
	case errors.Is(err, fulfillment.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, fulfillment.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, fulfillment.ErrAmountMismatch):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	resp := CheckoutResp{OrderID: res.OrderID, Amount: res.Charge.Amount, QRPayload: res.Charge.QRPayload}
	if !res.Charge.ExpiresAt.IsZero() {
		resp.ExpiresAt = res.Charge.ExpiresAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusCreated, resp)
}

type StatusResp struct {
	OrderID    string          `json:"order_id"`
	Status     orders.Status   `json:"status"`
	Settled    bool            `json:"settled"`
	Delivery   *DeliveryResp   `json:"delivery,omitempty"`
	FailReason string          `json:"fail_reason,omitempty"`
}

type DeliveryResp struct {
	Kind    orders.DeliveryKind `json:"kind"`
	Payload json.RawMessage     `json:"payload"`
}

// orderStatus: endpoint poll. Klien memanggil berulang sampai melihat status
// terminal; hanya respons completed yang di-cache (read-through, Postgres
// tetap sumber kebenaran).
func (h *StoreHandler) orderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if orderID == "" || err != nil || amount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id/amount"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 25*time.Second)
	defer cancel()

	// 1) cache (hanya terisi utk order completed)
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	res, err := h.Dispatcher.Check(ctx, orderID, amount)
	switch {
	case errors.Is(err, orders.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	case errors.Is(err, fulfillment.ErrStatusUnknown):
		// transient; bukan error fulfillment, klien tinggal poll lagi
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "payment status unknown, retry"})
		return
	case errors.Is(err, fulfillment.ErrInconsistent):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := StatusResp{
		OrderID:    res.OrderID,
		Status:     res.Status,
		Settled:    res.Settled,
		FailReason: res.FailReason,
	}
	if res.Delivery != nil {
		resp.Delivery = &DeliveryResp{Kind: res.Delivery.Kind, Payload: res.Delivery.Payload}
	}

	if h.Redis != nil && res.Status == orders.StatusCompleted {
		if b, err := json.Marshal(resp); err == nil {
			_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// cancelOrder: CAS di status — hanya pending yang bisa batal. Bukan error
// kalau kondisinya tidak kena; respons tidak membedakan "sudah selesai" dari
// "tidak ada".
func (h *StoreHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Orders.CancelIfPending(ctx, orderID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if ok {
		if h.Redis != nil {
			_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
		}
		h.Events.OrderCancelled(orderID)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": ok})
}

// retryOrder: jalur operator — paid_failed kembali ke pending, lalu poll
// berikutnya mengevaluasi ulang lewat jalur status-check biasa.
func (h *StoreHandler) retryOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Orders.ResetFailed(ctx, orderID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if ok && h.Redis != nil {
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reset": ok})
}

func (h *StoreHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.ListActive(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *StoreHandler) download(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing token"})
		return
	}
	path, err := h.Downloads.Verify(token)
	if err != nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid or expired link"})
		return
	}
	http.ServeFile(w, r, path)
}
