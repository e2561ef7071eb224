// Package cache is an optional page cache: leaf page ref → decompressed
// page body, populated by the decompression path and read by the
// record path. Records are not cached; a cached body is still split
// and parsed on every pass. It is never invalidated, since a handle treats its
// file as immutable for its lifetime.
package cache

import (
	"io"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/swiss"
)

// Cache maps a leaf page ref to its decompressed body.
type Cache struct {
	entries *swiss.Map[uint32, []byte]
	log     *slog.Logger
}

// New returns a Cache logging fingerprint diagnostics through log.
// A nil log discards them.
func New(log *slog.Logger) *Cache {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{entries: swiss.New[uint32, []byte](64), log: log}
}

// Get returns the cached body for ref, if present.
func (c *Cache) Get(ref uint32) ([]byte, bool) {
	return c.entries.Get(ref)
}

// Put stores body for ref, logging its xxhash fingerprint at debug
// level so a corrupted entry is diagnosable without dumping raw bytes.
func (c *Cache) Put(ref uint32, body []byte) {
	c.entries.Put(ref, body)
	c.log.Debug("page cached", "ref", ref, "bytes", len(body), "fingerprint", xxhash.Sum64(body))
}

// Len reports the number of cached pages.
func (c *Cache) Len() int { return c.entries.Len() }
