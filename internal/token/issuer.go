package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultExpiry = 8 * time.Hour

var _ Signer = (*Issuer)(nil)

// Claims is the session payload carried inside issued tokens.
type Claims struct {
	AccountID string `json:"accountId"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and parses HS256 session tokens. The signing key is mandatory
// configuration; there is no fallback default.
type Issuer struct {
	key    []byte
	expiry time.Duration
	now    func() time.Time
}

func NewIssuer(signingKey string, expiry time.Duration) (*Issuer, error) {
	if strings.TrimSpace(signingKey) == "" {
		return nil, fmt.Errorf("signing key is required")
	}
	if expiry <= 0 {
		expiry = defaultExpiry
	}

	return &Issuer{
		key:    []byte(signingKey),
		expiry: expiry,
		now:    time.Now,
	}, nil
}

func (i *Issuer) Expiry() time.Duration {
	return i.expiry
}

// Issue signs a token for the given account and returns it with its expiry time.
func (i *Issuer) Issue(accountID, role string) (string, time.Time, error) {
	if strings.TrimSpace(accountID) == "" {
		return "", time.Time{}, fmt.Errorf("account id is required")
	}

	now := i.now().UTC()
	expiresAt := now.Add(i.expiry)

	claims := &Claims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Parse validates a token and returns its claims. Only HMAC-signed tokens are
// accepted.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.key, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.now() }))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
