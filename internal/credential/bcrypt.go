package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	_ Verifier = (*Bcrypt)(nil)
	_ Hasher   = (*Bcrypt)(nil)
)

// Bcrypt implements Hasher and Verifier on top of golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	cost int
}

func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

func (b *Bcrypt) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
