// Package csvsub implements the shared behavior of every subscribe-style
// connector in this system: each call to Next re-reads the underlying file
// from the top, skips the lines already consumed by prior calls (tracked by
// a per-connector counter), and returns the next non-blank record split on
// commas. This mirrors the source's per-Subscribe-call ifstream reopen, and
// is what makes subscribe connectors idempotent when the file is unchanged:
// calling Next again after EOF just returns ok=false forever.
package csvsub

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Reader tracks how many non-blank records of path have been consumed.
type Reader struct {
	path    string
	counter int
	log     *slog.Logger
}

// NewReader constructs a Reader over path.
func NewReader(path string, log *slog.Logger) *Reader {
	return &Reader{path: path, log: log}
}

// Next returns the fields of the next unconsumed non-blank line, or
// ok=false once the file is exhausted (or unreadable).
func (r *Reader) Next() (fields []string, ok bool) {
	f, err := os.Open(r.path)
	if err != nil {
		r.log.Error("csvsub: open failed", "path", r.path, "error", err)
		return nil, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	seen := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if seen < r.counter {
			seen++
			continue
		}
		r.counter++
		return strings.Split(line, ","), true
	}
	return nil, false
}

// Field safely returns fields[i], trimmed, or an error if the record is too
// short, so the caller can skip the record, log, and continue.
func Field(fields []string, i int) (string, error) {
	if i >= len(fields) {
		return "", fmt.Errorf("csvsub: record has %d fields, want field %d", len(fields), i)
	}
	return strings.TrimSpace(fields[i]), nil
}
