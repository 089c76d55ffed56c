// Package kv provides a webhook event dedup store backed by BadgerDB
package kv

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const prefixEvent = "event:"

// Dedup tracks webhook event IDs so redelivered events are processed once.
// Entries expire after the TTL, matching the platform's redelivery window.
type Dedup struct {
	db       *badger.DB
	ttl      time.Duration
	closed   bool
	closedMu sync.RWMutex
}

// Options for the dedup store
type Options struct {
	Dir        string        // Data directory, ignored in memory mode
	MemoryMode bool          // In-memory only (no persistence)
	TTL        time.Duration // How long an event ID stays marked
}

// DefaultOptions returns in-memory dedup with a one hour window
func DefaultOptions() Options {
	return Options{
		MemoryMode: true,
		TTL:        time.Hour,
	}
}

// Open opens a dedup store
func Open(opt Options) (*Dedup, error) {
	opts := badger.DefaultOptions(opt.Dir)
	opts.Logger = nil
	if opt.MemoryMode {
		opts.InMemory = true
		opts.Dir = ""
		opts.ValueDir = ""
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger failed: %w", err)
	}

	ttl := opt.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	log.Printf("[KV] Dedup store opened (memory: %v, ttl: %s)", opt.MemoryMode, ttl)
	return &Dedup{db: db, ttl: ttl}, nil
}

// Close closes the store
func (d *Dedup) Close() error {
	d.closedMu.Lock()
	defer d.closedMu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

// Seen reports whether the event ID was already recorded, and records it
// if not. Empty IDs are never deduplicated. On store errors it returns
// false so a broken store degrades to at-least-once processing.
func (d *Dedup) Seen(eventID string) bool {
	if eventID == "" {
		return false
	}

	d.closedMu.RLock()
	defer d.closedMu.RUnlock()
	if d.closed {
		return false
	}

	key := []byte(prefixEvent + eventID)
	seen := false
	err := d.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			seen = true
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		e := badger.NewEntry(key, []byte("1")).WithTTL(d.ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		log.Printf("[KV] Dedup check failed for %s: %v", eventID, err)
		return false
	}
	return seen
}

// Count returns how many event IDs are currently marked
func (d *Dedup) Count() (int, error) {
	d.closedMu.RLock()
	defer d.closedMu.RUnlock()
	if d.closed {
		return 0, fmt.Errorf("dedup store is closed")
	}

	count := 0
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixEvent)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
