package catalog

import "time"

type ProductType string

const (
	TypePanel ProductType = "panel" // akun panel hosting
	TypeSC    ProductType = "sc"    // file/script (link download)
	TypeSewa  ProductType = "sewa"  // sewa bot, aktivasi manual
)

type Product struct {
	ID        string
	Type      ProductType
	Name      string
	Price     int64 // rupiah, tanpa desimal
	Features  []string
	Meta      map[string]string // per tipe: ram/disk/cpu, file_path, duration_days
	Active    bool
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot dibekukan ke order saat checkout; edit katalog
// setelahnya tidak mempengaruhi fulfillment.
type Snapshot struct {
	ProductID string            `json:"product_id"`
	Type      ProductType       `json:"type"`
	Name      string            `json:"name"`
	Price     int64             `json:"price"`
	Features  []string          `json:"features,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}

func (p *Product) Snapshot() Snapshot {
	meta := make(map[string]string, len(p.Meta))
	for k, v := range p.Meta {
		meta[k] = v
	}
	return Snapshot{
		ProductID: p.ID,
		Type:      p.Type,
		Name:      p.Name,
		Price:     p.Price,
		Features:  append([]string(nil), p.Features...),
		Meta:      meta,
	}
}
