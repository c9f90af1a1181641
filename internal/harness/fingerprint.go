package harness

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var canonicalMode = mustCanonicalMode()

func mustCanonicalMode() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("harness: cbor enc mode: %v", err))
	}

	return em
}

// MarshalCanonical encodes v as canonical CBOR. Equal values always produce
// equal bytes.
func MarshalCanonical(v any) ([]byte, error) {
	b, err := canonicalMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cbor marshal: %w", err)
	}

	return b, nil
}

// Fingerprint returns the hex SHA-256 of the invocation's canonical CBOR
// encoding. Two invocations with the same fingerprint pass identical
// arguments to the target.
func (inv Invocation) Fingerprint() (string, error) {
	b, err := MarshalCanonical(inv)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)

	return hex.EncodeToString(sum[:]), nil
}
