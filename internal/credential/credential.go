package credential

// Verifier checks a submitted secret against a stored one-way hash. The
// verification flow depends only on this interface so it can run against a fake
// in tests, independent of the concrete hashing algorithm.
type Verifier interface {
	Verify(secret, hash string) bool
}

// Hasher produces the stored hash for a new secret.
type Hasher interface {
	Hash(secret string) (string, error)
}
