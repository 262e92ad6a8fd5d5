package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/moby/sys/atomicwriter"

	"github.com/shoplist/shoplist-go/internal/metrics"
)

const snapshotPerm = 0o600

// collection is a JSON-array file mirrored in memory.
//
// Writers hold mu for the whole read-modify-write cycle and publish a new
// slice only after the file has been replaced. Readers load the published
// slice without locking; a published slice is never modified again.
type collection[T any] struct {
	name    string
	path    string
	mu      sync.Mutex
	current atomic.Pointer[[]T]
}

func openCollection[T any](name, path string) (*collection[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s directory: %w", name, err)
	}

	records, err := readSnapshot[T](path)
	if err != nil {
		return nil, fmt.Errorf("loading %s from %s: %w", name, path, err)
	}

	c := &collection[T]{name: name, path: path}
	c.current.Store(&records)
	metrics.StoreRecords.WithLabelValues(name).Set(float64(len(records)))

	return c, nil
}

func readSnapshot[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}

	return records, nil
}

// snapshot returns the latest published records. Callers must not modify it.
func (c *collection[T]) snapshot() []T {
	return *c.current.Load()
}

// update runs fn on a private copy of the records and, if fn succeeds,
// persists and publishes the result. Calls are serialized.
func (c *collection[T]) update(op string, fn func(records []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(slices.Clone(c.snapshot()))
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues(c.name, op, "rejected").Inc()
		return err
	}
	if next == nil {
		next = []T{}
	}

	if err := c.write(next); err != nil {
		metrics.StoreOperationsTotal.WithLabelValues(c.name, op, "error").Inc()
		slog.Error("snapshot write failed", "collection", c.name, "path", c.path, "operation", op, "error", err)
		return fmt.Errorf("writing %s: %w", c.name, err)
	}

	c.current.Store(&next)
	metrics.StoreOperationsTotal.WithLabelValues(c.name, op, "ok").Inc()
	metrics.StoreRecords.WithLabelValues(c.name).Set(float64(len(next)))

	return nil
}

func (c *collection[T]) write(records []T) error {
	start := time.Now()
	defer func() {
		metrics.StoreWriteDurationSeconds.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	// atomicwriter writes a temp file in the same directory, syncs it and
	// renames it over path, so readers of the file see old or new, never half.
	return atomicwriter.WriteFile(c.path, data, snapshotPerm)
}
