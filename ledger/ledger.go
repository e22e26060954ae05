// Package ledger is the Write Stage's external ledger-writer collaborator:
// an ordered, durable append-only store of opaque entry batches, keyed by
// monotonically increasing entry height.
//
// The on-disk byte layout of an individual entry is out of scope (spec's
// Non-goals name "ledger-file byte layout" explicitly) — this package only
// guarantees ordering and durability of whatever bytes callers hand it,
// storing them LevelDB-backed and snappy-compressed, mirroring how geth's
// freezer/rawdb store compressed blobs.
package ledger

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/golang/snappy"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// Entry is an opaque, already-encoded ledger entry.
type Entry []byte

// Writer persists entry batches to a LevelDB store.
type Writer struct {
	mu     sync.Mutex
	db     *leveldb.DB
	height uint64
}

// Recover opens (or creates) the LevelDB store at path and resumes from one
// past the highest previously written height.
func Recover(path string) (*Writer, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	w := &Writer{db: db}
	if err := w.loadHeight(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

// RecoverMemory opens an in-memory store. Used by tests and by callers that
// don't need durability across process restarts.
func RecoverMemory() (*Writer, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &Writer{db: db}, nil
}

func (w *Writer) loadHeight() error {
	iter := w.db.NewIterator(nil, nil)
	defer iter.Release()
	var max uint64
	found := false
	for iter.Next() {
		h := binary.BigEndian.Uint64(iter.Key())
		if !found || h > max {
			max, found = h, true
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("ledger: scan existing height: %w", err)
	}
	if found {
		w.height = max + 1
	}
	return nil
}

// WriteEntries appends batch starting at the writer's current height,
// advancing the height by len(batch) only if the write succeeds. Returns
// the height batch[0] was written at.
func (w *Writer) WriteEntries(batch []Entry) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := w.height
	wb := new(leveldb.Batch)
	for i, e := range batch {
		wb.Put(heightKey(start+uint64(i)), snappy.Encode(nil, e))
	}
	if err := w.db.Write(wb, nil); err != nil {
		log.Error("ledger: write batch failed", "height", start, "count", len(batch), "err", err)
		return start, fmt.Errorf("ledger: write entries at height %d: %w", start, err)
	}
	w.height += uint64(len(batch))
	return start, nil
}

// Height reports the next height a write will land at — equivalently, the
// count of entries committed so far.
func (w *Writer) Height() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

// ReadEntry returns the entry committed at height, for tests and recovery
// verification.
func (w *Writer) ReadEntry(height uint64) (Entry, error) {
	compressed, err := w.db.Get(heightKey(height), nil)
	if err != nil {
		return nil, err
	}
	return snappy.Decode(nil, compressed)
}

// Close releases the underlying LevelDB handle.
func (w *Writer) Close() error { return w.db.Close() }

func heightKey(h uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h)
	return b[:]
}
