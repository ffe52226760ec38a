// Package historical implements the five append-only historical sinks:
// positions, risk (joined per-bond PV01 + sector), executions,
// price streams, and inquiries. Each sink keeps a private, monotonically
// increasing string counter as its persistence key, independent of any
// service's own cache keys, and is write-only from the core pipeline's
// perspective — it never fans events of its own.
package historical

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// sink appends CSV lines to path, prefixing each with an incrementing key
// starting at 1. A write failure is returned to the caller to fail the
// process.
type sink struct {
	mu   sync.Mutex
	path string
	next int
}

func newSink(path string) *sink {
	return &sink{path: path, next: 1}
}

// persist appends one CSV line built from key followed by fields, and
// returns the key that was used.
func (s *sink) persist(fields ...string) (string, error) {
	s.mu.Lock()
	key := strconv.Itoa(s.next)
	s.next++
	s.mu.Unlock()

	line := key
	for _, f := range fields {
		line += "," + f
	}
	line += "\n"

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return key, fmt.Errorf("historical: open %s: %w", s.path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return key, fmt.Errorf("historical: write %s: %w", s.path, err)
	}
	return key, nil
}
