package content

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/blake2b"

	"gigsafe/internal/domain"
)

// Fingerprint returns a blake2b-256 digest of the post's content fields.
// Timestamps and any previous fingerprint are excluded, so re-importing an
// unchanged record yields the same value.
func Fingerprint(p domain.Post) string {
	p.Fingerprint = ""
	p.CreatedAt = time.Time{}
	p.UpdatedAt = time.Time{}

	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
