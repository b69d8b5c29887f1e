package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aririzq/panelstore/internal/orders"
	"github.com/aririzq/panelstore/internal/settings"
)

// Rental: produk tipe "sewa" tidak punya provisioning otomatis — barangnya
// instruksi aktivasi + link kontak admin yang sudah terisi data order.
type Rental struct {
	Settings *settings.Provider
}

type RentalPayload struct {
	Instructions string `json:"instructions"`
	ContactURL   string `json:"contact_url"`
	GroupLink    string `json:"group_link,omitempty"`
	DurationDays string `json:"duration_days"`
}

func (r *Rental) Provision(ctx context.Context, o *orders.Order) (*Result, error) {
	cfg := r.Settings.GetAll(ctx)

	days := o.Snapshot.Meta["duration_days"]
	if days == "" {
		days = "30"
	}

	msg := fmt.Sprintf("Halo admin, order %s atas nama %s sudah lunas. Mohon aktivasi %s selama %s hari.",
		o.ID, o.CustomerID, o.Snapshot.Name, days)
	contact := "https://wa.me/" + cfg[settings.KeyAdminContact] + "?text=" + url.QueryEscape(msg)

	p := RentalPayload{
		Instructions: fmt.Sprintf(
			"Pembayaran diterima. Kirim pesan ke admin lewat tombol kontak untuk aktivasi %s (%s hari). Sertakan kode order %s.",
			o.Snapshot.Name, days, o.ID),
		ContactURL:   contact,
		GroupLink:    cfg[settings.KeyGroupLink],
		DurationDays: days,
	}
	payload, _ := json.Marshal(p)
	return &Result{Kind: orders.KindInstructions, Payload: payload}, nil
}
