// Package pdflink signs and verifies short-lived invoice PDF download links.
// The customer contact is carried in the token because it is not stored with
// the invoice.
package pdflink

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidLink is returned for expired, tampered or mismatched links.
var ErrInvalidLink = errors.New("invalid invoice link")

// Claims represents the link token claims.
type Claims struct {
	InvoiceID int64  `json:"invoice_id"`
	Contact   string `json:"contact,omitempty"`
	jwt.RegisteredClaims
}

// Sign creates a token for the given invoice that expires after ttl.
func Sign(secret []byte, invoiceID int64, contact string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		InvoiceID: invoiceID,
		Contact:   contact,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(invoiceID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing link: %w", err)
	}
	return signed, nil
}

// Verify parses a token and checks that it was issued for invoiceID.
func Verify(secret []byte, invoiceID int64, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidLink
	}
	if claims.InvoiceID != invoiceID {
		return nil, fmt.Errorf("%w: issued for invoice %d", ErrInvalidLink, claims.InvoiceID)
	}
	return claims, nil
}

// NewSecret returns a random 32-byte signing key.
func NewSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating secret: %w", err)
	}
	return buf, nil
}

// SecretFromString decodes a hex key, falling back to the raw bytes.
func SecretFromString(s string) []byte {
	if b, err := hex.DecodeString(s); err == nil && len(b) > 0 {
		return b
	}
	return []byte(s)
}
