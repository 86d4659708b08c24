package tourbase

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Reset secret configuration.
const (
	// ResetSecretBytes of entropy, 64 hex chars on the wire.
	ResetSecretBytes = 32
	// ResetSecretTTL bounds how long an issued secret stays usable.
	ResetSecretTTL = 10 * time.Minute
)

// GenerateResetSecret creates a high-entropy one-time secret and its hash.
// The plaintext secret goes to the user out-of-band; only the hash is ever
// persisted.
func GenerateResetSecret() (secret, hash string, err error) {
	buf := make([]byte, ResetSecretBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset secret")
	}

	secret = hex.EncodeToString(buf)
	hash = HashResetSecret(secret)

	return secret, hash, nil
}

// HashResetSecret computes the storage hash of a plaintext reset secret.
func HashResetSecret(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}

// VerifyResetSecret checks the plaintext secret against a stored hash using
// a constant-time comparison.
func VerifyResetSecret(secret, hash string) bool {
	if secret == "" || hash == "" {
		return false
	}
	computed := HashResetSecret(secret)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
