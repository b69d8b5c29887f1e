package provision

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aririzq/panelstore/internal/catalog"
	"github.com/aririzq/panelstore/internal/orders"
	"github.com/aririzq/panelstore/internal/settings"
)

func TestRentalProvision(t *testing.T) {
	r := &Rental{Settings: &settings.Provider{}}
	o := &orders.Order{
		ID:         "TRX-3",
		CustomerID: "62899000",
		Snapshot: catalog.Snapshot{
			Type: catalog.TypeSewa,
			Name: "Sewa Bot WA",
			Meta: map[string]string{"duration_days": "7"},
		},
	}

	res, err := r.Provision(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, orders.KindInstructions, res.Kind)

	var p RentalPayload
	require.NoError(t, json.Unmarshal(res.Payload, &p))
	assert.Equal(t, "7", p.DurationDays)
	assert.Contains(t, p.Instructions, "TRX-3")
	assert.Contains(t, p.Instructions, "7 hari")
	assert.Contains(t, p.ContactURL, "https://wa.me/")
	assert.Contains(t, p.ContactURL, "TRX-3")
	assert.Contains(t, p.ContactURL, "62899000")
}

func TestRentalProvisionDefaultDuration(t *testing.T) {
	r := &Rental{Settings: &settings.Provider{}}
	o := &orders.Order{
		ID:         "TRX-4",
		CustomerID: "62899000",
		Snapshot:   catalog.Snapshot{Type: catalog.TypeSewa, Name: "Sewa Bot WA"},
	}

	res, err := r.Provision(context.Background(), o)
	require.NoError(t, err)

	var p RentalPayload
	require.NoError(t, json.Unmarshal(res.Payload, &p))
	assert.Equal(t, "30", p.DurationDays)
}
