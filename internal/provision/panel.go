package provision

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aririzq/panelstore/internal/orders"
	"github.com/aririzq/panelstore/internal/settings"
)

// PanelAPI: klien application-API panel hosting (gaya pterodactyl).
type PanelAPI struct {
	BaseURL    string
	APIKey     string
	EggID      int
	LocationID int
	HTTPClient *http.Client
}

func NewPanelAPI(baseURL, apiKey string, eggID, locationID int) *PanelAPI {
	return &PanelAPI{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		EggID:      eggID,
		LocationID: locationID,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *PanelAPI) do(ctx context.Context, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("panel api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("panel api: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("panel api: decode: %w", err)
		}
	}
	return nil
}

type userList struct {
	Data []struct {
		Attributes struct {
			ID       int    `json:"id"`
			Username string `json:"username"`
		} `json:"attributes"`
	} `json:"data"`
}

// Exists: pre-check sebelum create, supaya error "duplicate" dari API
// eksternal tidak nyasar jadi error provisioning yang membingungkan.
func (a *PanelAPI) Exists(ctx context.Context, username string) (bool, error) {
	var list userList
	q := url.Values{}
	q.Set("filter[username]", username)
	if err := a.do(ctx, http.MethodGet, "/api/application/users?"+q.Encode(), nil, &list); err != nil {
		return false, err
	}
	for _, u := range list.Data {
		if strings.EqualFold(u.Attributes.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

type createdUser struct {
	Attributes struct {
		ID int `json:"id"`
	} `json:"attributes"`
}

func (a *PanelAPI) CreateUser(ctx context.Context, username, password string) (int, error) {
	var out createdUser
	err := a.do(ctx, http.MethodPost, "/api/application/users", map[string]any{
		"username":   username,
		"email":      username + "@store.local",
		"first_name": username,
		"last_name":  "store",
		"password":   password,
	}, &out)
	if err != nil {
		return 0, err
	}
	return out.Attributes.ID, nil
}

func (a *PanelAPI) CreateServer(ctx context.Context, userID int, name string, res Resources) error {
	return a.do(ctx, http.MethodPost, "/api/application/servers", map[string]any{
		"name": name,
		"user": userID,
		"egg":  a.EggID,
		"limits": map[string]any{
			"memory": res.MemoryMiB,
			"disk":   res.DiskMiB,
			"cpu":    res.CPUPercent,
			"swap":   0,
			"io":     500,
		},
		"feature_limits": map[string]any{"databases": 1, "backups": 1, "allocations": 1},
		"deploy": map[string]any{
			"locations":    []int{a.LocationID},
			"dedicated_ip": false,
			"port_range":   []string{},
		},
	}, nil)
}

// Panel: provisioner utk produk tipe "panel" — bikin user + server sesuai
// spesifikasi di snapshot, hasilnya kredensial login.
type Panel struct {
	API      *PanelAPI
	Settings *settings.Provider
}

type PanelCredentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	PanelURL   string `json:"panel_url"`
	ServerName string `json:"server_name"`
	MemoryMiB  int    `json:"memory_mib"`
	DiskMiB    int    `json:"disk_mib"`
	CPUPercent int    `json:"cpu_percent"`
}

func (p *Panel) Provision(ctx context.Context, o *orders.Order) (*Result, error) {
	username := Username(o.CustomerID)

	exists, err := p.API.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
	}

	password, err := randomPassword()
	if err != nil {
		return nil, err
	}
	userID, err := p.API.CreateUser(ctx, username, password)
	if err != nil {
		return nil, err
	}

	res := parseResources(o.Snapshot.Meta)
	serverName := o.Snapshot.Name
	if serverName == "" {
		serverName = "srv"
	}
	serverName = serverName + "-" + o.ID
	if err := p.API.CreateServer(ctx, userID, serverName, res); err != nil {
		return nil, err
	}

	cfg := p.Settings.GetAll(ctx)
	payload, _ := json.Marshal(PanelCredentials{
		Username:   username,
		Password:   password,
		PanelURL:   cfg[settings.KeyPanelURL],
		ServerName: serverName,
		MemoryMiB:  res.MemoryMiB,
		DiskMiB:    res.DiskMiB,
		CPUPercent: res.CPUPercent,
	})
	return &Result{Kind: orders.KindPanelCredentials, Payload: payload}, nil
}

// Username: id pelanggan (nomor WA/telegram) dirapikan jadi username panel.
func Username(customerID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(customerID) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	u := b.String()
	if u == "" {
		u = "user"
	}
	if len(u) > 24 {
		u = u[:24]
	}
	return u
}

func randomPassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
