package settings

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/aririzq/panelstore/internal/redisx"
)

// Kunci yang dipakai komponen lain.
const (
	KeyStoreName    = "store_name"
	KeyPanelURL     = "panel_url"
	KeyGroupLink    = "group_link"
	KeyAdminContact = "admin_contact"
	KeyDownloadNote = "download_note"
)

var defaults = map[string]string{
	KeyStoreName:    "Panel Store",
	KeyPanelURL:     "https://panel.example.com",
	KeyGroupLink:    "https://chat.whatsapp.com/invite",
	KeyAdminContact: "6281234567890",
	KeyDownloadNote: "Link berlaku 24 jam. Simpan filenya.",
}

// Fetcher mengambil pengaturan mentah; implementasi redis di bawah.
type Fetcher interface {
	Fetch(ctx context.Context) (map[string]string, error)
}

// Provider: pengaturan toko dengan fallback ke default. Tidak pernah gagal
// fatal — kalau sumbernya mati, toko jalan dengan default.
type Provider struct {
	Source Fetcher
}

func (p *Provider) GetAll(ctx context.Context) map[string]string {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	if p == nil || p.Source == nil {
		return out
	}
	m, err := p.Source.Fetch(ctx)
	if err != nil {
		log.Printf("settings: fetch gagal, pakai default: %v", err)
		return out
	}
	for k, v := range m {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

type RedisFetcher struct {
	Client *redis.Client
}

func (f *RedisFetcher) Fetch(ctx context.Context) (map[string]string, error) {
	return f.Client.HGetAll(ctx, redisx.KeyStoreSettings).Result()
}
