package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests. The version suffix leaves room for a
// future algorithm change.
const (
	DomainEvent    = "corebridge/event/v1"
	DomainResponse = "corebridge/response/v1"
	DomainEffects  = "corebridge/effects/v1"
	DomainView     = "corebridge/view/v1"
)

// DigestBytes computes SHA256(domain || 0x00 || data) as lowercase hex.
// The null separator keeps the domain/data boundary unambiguous.
func DigestBytes(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest canonicalizes v and digests it under domain.
func Digest(domain string, v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return DigestBytes(domain, data), nil
}
