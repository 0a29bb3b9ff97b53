package utils

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/oklog/ulid/v2"
)

// FingerprintVersion prefixes every fingerprint so the scheme can change
// without old and new values colliding.
const FingerprintVersion = "R1"

// GenerateBatchID returns a ULID whose time component is at, so batch IDs
// sort in the order batches were received.
func GenerateBatchID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
}

// BatchTime extracts the receipt time encoded in a batch ID.
func BatchTime(id string) (time.Time, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()).UTC(), nil
}

// GenerateFingerprint creates a deterministic, versioned hash of a payload.
// Identical payloads always share a fingerprint; it is used as the ETag of
// calendar responses.
func GenerateFingerprint(version string, payload []byte) string {
	hash := sha256.Sum256(payload)
	encoded := base64.RawURLEncoding.EncodeToString(hash[:])

	return version + "_" + encoded
}
