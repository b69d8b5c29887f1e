package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client bicara ke gateway QRIS eksternal. Semua call dibatasi timeout
// pendek; gateway yang tidak merespons diperlakukan sebagai gagal, bukan
// ditunggu tanpa batas.
type Client struct {
	BaseURL    string
	MerchantID string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, merchantID, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		MerchantID: merchantID,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 8 * time.Second},
	}
}

// Charge: data instrumen pembayaran yang dikembalikan ke pembeli.
type Charge struct {
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	QRPayload string    `json:"qr_payload"` // string QRIS utk dirender jadi QR
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *Client) CreateCharge(ctx context.Context, orderID string, amount int64) (*Charge, error) {
	body, _ := json.Marshal(map[string]any{
		"merchant_id": c.MerchantID,
		"order_id":    orderID,
		"amount":      amount,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/v1/charge", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway charge: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("gateway charge: status %d", resp.StatusCode)
	}

	var ch Charge
	if err := json.NewDecoder(resp.Body).Decode(&ch); err != nil {
		return nil, fmt.Errorf("gateway charge: decode: %w", err)
	}
	if ch.OrderID == "" {
		ch.OrderID = orderID
	}
	return &ch, nil
}

type statusResp struct {
	Status string `json:"status"` // "settled" | "pending" | "expired"
}

// Status: true hanya kalau gateway menyatakan dana masuk utk pasangan
// (order_id, amount). Error jaringan/5xx dikembalikan apa adanya; pemanggil
// yang memutuskan itu "status unknown".
func (c *Client) Status(ctx context.Context, orderID string, amount int64) (bool, error) {
	q := url.Values{}
	q.Set("merchant_id", c.MerchantID)
	q.Set("order_id", orderID)
	q.Set("amount", fmt.Sprintf("%d", amount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/api/v1/charge/status?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("gateway status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("gateway status: status %d", resp.StatusCode)
	}

	var sr statusResp
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return false, fmt.Errorf("gateway status: decode: %w", err)
	}
	return sr.Status == "settled", nil
}
