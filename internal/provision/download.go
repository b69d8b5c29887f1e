package provision

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/aririzq/panelstore/internal/orders"
	"github.com/aririzq/panelstore/internal/settings"
)

const downloadTTL = 24 * time.Hour

// URLSigner dipenuhi oleh files.Signer.
type URLSigner interface {
	Sign(path string, ttl time.Duration) (string, error)
}

// Download: provisioner produk tipe "sc" — link download bertenggat utk file
// yang tercantum di snapshot.
type Download struct {
	Signer   URLSigner
	Settings *settings.Provider
}

type DownloadPayload struct {
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name"`
	GroupLink   string `json:"group_link,omitempty"`
	Note        string `json:"note,omitempty"`
}

func (d *Download) Provision(ctx context.Context, o *orders.Order) (*Result, error) {
	cfg := d.Settings.GetAll(ctx)
	p := DownloadPayload{
		GroupLink: cfg[settings.KeyGroupLink],
		Note:      cfg[settings.KeyDownloadNote],
	}

	path := o.Snapshot.Meta["file_path"]
	if path == "" {
		// produk belum di-upload filenya; bukan kegagalan provisioning,
		// pembeli diarahkan ke grup utk ambil manual
		p.DownloadURL = "#"
		p.FileName = "File not found"
	} else {
		u, err := d.Signer.Sign(path, downloadTTL)
		if err != nil {
			return nil, err
		}
		p.DownloadURL = u
		p.FileName = filepath.Base(path)
	}

	payload, _ := json.Marshal(p)
	return &Result{Kind: orders.KindDownloadLink, Payload: payload}, nil
}
