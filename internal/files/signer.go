package files

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotFound     = errors.New("file not found")
	ErrInvalidToken = errors.New("invalid download token")
)

// Signer menerbitkan link download bertenggat: token HMAC berisi path file
// dan expiry, diverifikasi lagi waktu file diambil.
type Signer struct {
	Dir     string // root penyimpanan file produk
	Secret  []byte
	BaseURL string // prefix publik, e.g. https://store.example.com
}

func NewSigner(dir, secret, baseURL string) *Signer {
	return &Signer{Dir: dir, Secret: []byte(secret), BaseURL: baseURL}
}

type downloadClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// Sign: URL download berlaku selama ttl. Gagal ErrNotFound kalau path tidak
// ada di penyimpanan.
func (s *Signer) Sign(path string, ttl time.Duration) (string, error) {
	clean := filepath.Clean("/" + path) // kurung ke dalam Dir
	full := filepath.Join(s.Dir, clean)
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, downloadClaims{
		Path: clean,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", err
	}
	return s.BaseURL + "/download?token=" + url.QueryEscape(signed), nil
}

// Verify: kembalikan path absolut file utk token yang masih berlaku.
func (s *Signer) Verify(tokenStr string) (string, error) {
	var claims downloadClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	return filepath.Join(s.Dir, filepath.Clean("/"+claims.Path)), nil
}
