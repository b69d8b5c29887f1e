package redisx

import "time"

const (
	// Cache status order (hanya status terminal yang di-cache):
	// order_status:{order_id} -> {"status":"..."}
	KeyOrderStatus = "order_status:%s"

	// Pengaturan toko: hash settings:store (key -> value)
	KeyStoreSettings = "settings:store"
)

var (
	TTLStatusCache = 5 * time.Minute
)
