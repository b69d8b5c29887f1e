package provision

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/aririzq/panelstore/internal/orders"
)

var ErrDuplicateUsername = errors.New("username already exists on panel")

// Result: bahan Delivery; dispatcher yang menyimpan.
type Result struct {
	Kind    orders.DeliveryKind
	Payload json.RawMessage
}

// Provisioner menyerahkan barang utk satu tipe produk. Error apapun dari
// sini berarti uang sudah masuk tapi barang belum jadi — dispatcher yang
// menerjemahkan ke paid_failed.
type Provisioner interface {
	Provision(ctx context.Context, o *orders.Order) (*Result, error)
}

// Resources dalam satuan API panel: memory/disk MiB, cpu persen. 0 = unlimited.
type Resources struct {
	MemoryMiB  int
	DiskMiB    int
	CPUPercent int
}

var defaultResources = Resources{MemoryMiB: 1024, DiskMiB: 2048, CPUPercent: 50}

// parseResources: meta katalog menulis ram/disk dalam ribuan-per-GiB
// (ram=2000 artinya 2 GiB) — konversi ke MiB via v*1024/1000, jadi
// 2000 -> 2048. Sentinel "0"/"UNLIMITED" -> 0 (unlimited). Meta kosong atau
// tidak kebaca jatuh ke profil default konservatif.
func parseResources(meta map[string]string) Resources {
	res := defaultResources
	if v, ok := toMiB(meta["ram"]); ok {
		res.MemoryMiB = v
	}
	if v, ok := toMiB(meta["disk"]); ok {
		res.DiskMiB = v
	}
	if v, ok := toPercent(meta["cpu"]); ok {
		res.CPUPercent = v
	}
	return res
}

func toMiB(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if strings.EqualFold(raw, "UNLIMITED") {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	if n == 0 {
		return 0, true
	}
	return n * 1024 / 1000, true
}

func toPercent(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if strings.EqualFold(raw, "UNLIMITED") {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
