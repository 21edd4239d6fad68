package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Recorder collects JSON log lines in memory so tests can assert on them.
// It is safe for concurrent writers.
type Recorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewRecorder returns a debug-level JSON logger backed by a fresh Recorder.
func NewRecorder() (*slog.Logger, *Recorder) {
	rec := &Recorder{}
	handler := slog.NewJSONHandler(rec, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), rec
}

func (r *Recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// String returns everything written so far.
func (r *Recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// Entries decodes each recorded line into a map keyed by attribute name.
func (r *Recorder) Entries() ([]map[string]any, error) {
	var entries []map[string]any
	sc := bufio.NewScanner(bytes.NewBufferString(r.String()))
	for line := 1; sc.Scan(); line++ {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		entry := map[string]any{}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("log line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	return entries, sc.Err()
}

// Messages returns the msg field of every recorded entry, in order.
func (r *Recorder) Messages() ([]string, error) {
	entries, err := r.Entries()
	if err != nil {
		return nil, err
	}
	msgs := make([]string, 0, len(entries))
	for _, e := range entries {
		msg, _ := e[slog.MessageKey].(string)
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
