package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/zeebo/xxh3"
)

// Fingerprint returns a 16 hex character content hash of a file pair,
// used to key a HeaderCache. Grounded on the xxh3.HashString pattern
// (fast, non-cryptographic, ideal for cache-key dedup rather than
// integrity checking).
func Fingerprint(lhsPath, rhsPath string) (string, error) {
	h := xxh3.New()
	for _, p := range []string{lhsPath, rhsPath} {
		f, err := os.Open(p)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, bufio.NewReaderSize(f, 64*1024))
		f.Close()
		if err != nil {
			return "", err
		}
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum128().Hi), nil
}

// HeaderCache remembers which file-pair fingerprints have already had
// their one-shot diagnostic header printed in this process, so a test
// harness driving many numdiff invocations against overlapping file
// pairs (spec.md §6's TestID use case) does not repeat the same header
// line every run. It is purely an in-memory dedup layer; nothing is
// persisted across process invocations.
type HeaderCache struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewHeaderCache returns an empty cache.
func NewHeaderCache() *HeaderCache {
	return &HeaderCache{seen: make(map[string]bool)}
}

// Seen reports whether fingerprint has been recorded before, and records
// it if not — a single call both checks and marks.
func (c *HeaderCache) Seen(fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[fingerprint] {
		return true
	}
	c.seen[fingerprint] = true
	return false
}
