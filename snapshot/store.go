// Package snapshot provides a BoltDB-backed graph.SnapshotStore,
// generalizing the teacher's internal/gps/source_cache_bolt.go from
// per-source VCS metadata caching to whole-graph caching keyed by
// fingerprint.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
	flock "github.com/theckman/go-flock"

	"github.com/aaswin/cartwheel/graph"
)

var bucketName = []byte("snapshots")

// payload is the JSON encoding stored under each fingerprint key.
type payload struct {
	Requirements []string     `json:"requirements"`
	Nodes        []graph.Node `json:"nodes"`
	Explored     []string     `json:"explored"`
}

// Store persists graphs to a BoltDB file, guarding cross-process writers
// with an advisory file lock (bolt's own file lock only protects a
// single process's *bolt.DB handle; the flock additionally serializes
// separate processes pointed at the same cache directory).
type Store struct {
	db   *bolt.DB
	lock *flock.Flock
}

// Open opens (creating if necessary) a Store backed by a bolt database
// under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create snapshot directory: %s", dir)
	}

	dbPath := filepath.Join(dir, "snapshots.db")
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open snapshot database %q", dbPath)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create snapshot bucket")
	}

	lockPath := filepath.Join(dir, "snapshots.lock")
	return &Store{db: db, lock: flock.NewFlock(lockPath)}, nil
}

// Close releases the store's resources.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "error closing snapshot database")
}

// Load implements graph.SnapshotStore.
func (s *Store) Load(fingerprint string) (requirements []string, nodes []graph.Node, explored []string, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		raw := b.Get([]byte(fingerprint))
		if raw == nil {
			return nil
		}

		var p payload
		if jerr := json.Unmarshal(raw, &p); jerr != nil {
			// A corrupt snapshot is a cache miss, never fatal (spec's
			// SnapshotCorrupt classification): report ok=false, err=nil.
			return nil
		}

		requirements = p.Requirements
		nodes = p.Nodes
		explored = p.Explored
		ok = true
		return nil
	})
	if err != nil {
		return nil, nil, nil, false, errors.Wrap(err, "reading snapshot")
	}
	return requirements, nodes, explored, ok, nil
}

// Save implements graph.SnapshotStore. It takes the cross-process file
// lock for the duration of the write.
func (s *Store) Save(fingerprint string, requirements []string, nodes []graph.Node, explored []string) error {
	if err := s.lock.Lock(); err != nil {
		return errors.Wrap(err, "failed to acquire snapshot file lock")
	}
	defer s.lock.Unlock()

	raw, err := json.Marshal(payload{Requirements: requirements, Nodes: nodes, Explored: explored})
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put([]byte(fingerprint), raw)
	})
	return errors.Wrap(err, "writing snapshot")
}
