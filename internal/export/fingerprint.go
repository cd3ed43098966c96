package export

import "github.com/cespare/xxhash/v2"

// Fingerprint hashes a message's combined text for duplicate suppression.
// It is not a security property.
func Fingerprint(reasoning, text string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(reasoning)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(text)
	return d.Sum64()
}
