package token

import "time"

// Signer issues a signed session token for a verified account. Issuance is
// opaque to the verification flow; tests run against a fake.
type Signer interface {
	Issue(accountID, role string) (string, time.Time, error)
	Expiry() time.Duration
}
