// Package checkpoint persists, in a local embedded database, how far a
// prior scan of a capture file got, so a later run against the same file
// can resume instead of rescanning from zero.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketName = []byte("ScanProgress")

// State is what gets persisted for one capture file: the byte offset the
// detector had consumed, and the block indices already written into the
// image under reassembly.
type State struct {
	Offset      int64    `json:"offset"`
	BlockCount  uint16   `json:"block_count"`
	SeenIndices []uint16 `json:"seen_indices"`
}

// Store is a bbolt-backed table of State keyed by capture-file identity.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the checkpoint database at path.
func Open(path string) (*Store, error) {
	var db, err = bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint: init %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Identity builds the key a capture file is tracked under: its path plus
// the size and modification time it had when last scanned. Any change to
// either invalidates a prior checkpoint, since the file is no longer the
// one the checkpoint was taken against.
func Identity(path string, size int64, modTime time.Time) string {
	return fmt.Sprintf("%s|%d|%d", path, size, modTime.UnixNano())
}

// Load returns the saved State for identity, if any. A missing entry is
// not an error: it reports found=false so the caller falls back to a full
// rescan.
func (s *Store) Load(identity string) (state State, found bool, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		var v = tx.Bucket(bucketName).Get([]byte(identity))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &state)
	})
	return state, found, err
}

// Save persists state under identity, overwriting any prior entry.
func (s *Store) Save(identity string, state State) error {
	var data, err = json.Marshal(state)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal state for %s: %w", identity, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(identity), data)
	})
}
