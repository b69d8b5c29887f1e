package orders

import (
	"encoding/json"
	"time"

	"github.com/aririzq/panelstore/internal/catalog"
)

type DeliveryKind string

const (
	KindPanelCredentials DeliveryKind = "panel_credentials"
	KindDownloadLink     DeliveryKind = "download_link"
	KindInstructions     DeliveryKind = "instructions"
)

type Order struct {
	ID          string // dipasok pembeli (ref transaksi), sekaligus kunci korelasi
	ProductID   *string
	Snapshot    catalog.Snapshot // beku sejak checkout
	Amount      int64
	Status      Status
	CustomerID  string
	Notes       string
	CreatedAt   time.Time
	PaidAt      *time.Time
	FulfilledAt *time.Time
}

type Delivery struct {
	ID        string
	OrderID   string
	Kind      DeliveryKind
	Payload   json.RawMessage // kredensial / link / instruksi, tergantung kind
	CreatedAt time.Time
}
