package triples

import (
	"encoding/binary"
	"os"

	"github.com/boltdb/bolt"
	"github.com/boutros/hdt/internal/dictionary"
)

var bucketStage = []byte("stage")

// DiskList is a disk-backed staging area for datasets too large to
// hold in memory at once: triples are appended to a BoltDB bucket
// keyed by their storage-order encoding, which keeps them sorted as a
// side effect of Bolt's own B+tree key order, exactly as the teacher's
// DB used one bucket per index permutation for posting lists instead
// of a single in-memory slice.
type DiskList struct {
	db    *bolt.DB
	path  string
	order Order
	n     int
}

// OpenDiskList creates (or truncates) a BoltDB file at path to stage
// triples in the given Order.
func OpenDiskList(path string, order Order) (*DiskList, error) {
	os.Remove(path)
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketStage)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &DiskList{db: db, path: path, order: order}, nil
}

func encodeKey(x, y, z uint64) []byte {
	key := make([]byte, 24)
	binary.BigEndian.PutUint64(key[0:8], x)
	binary.BigEndian.PutUint64(key[8:16], y)
	binary.BigEndian.PutUint64(key[16:24], z)
	return key
}

// Insert stages tid, keyed so that Bolt's cursor order matches l's
// triple Order; duplicate triples collapse naturally since they share
// a key.
func (l *DiskList) Insert(tid dictionary.TripleID) error {
	x, y, z := l.order.components(tid)
	key := encodeKey(x, y, z)
	return l.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketStage)
		if bkt.Get(key) == nil {
			l.n++
		}
		return bkt.Put(key, nil)
	})
}

// Len returns the number of distinct triples staged so far.
func (l *DiskList) Len() int { return l.n }

// Each iterates the staged triples in sorted order, calling fn for
// each one. Iteration stops early if fn returns false.
func (l *DiskList) Each(fn func(dictionary.TripleID) bool) error {
	return l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketStage).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			x := binary.BigEndian.Uint64(k[0:8])
			y := binary.BigEndian.Uint64(k[8:16])
			z := binary.BigEndian.Uint64(k[16:24])
			if !fn(l.order.assemble(x, y, z)) {
				break
			}
		}
		return nil
	})
}

// Close closes the underlying BoltDB file and removes it from disk —
// a DiskList is a staging structure, never the final persisted form.
func (l *DiskList) Close() error {
	err := l.db.Close()
	os.Remove(l.path)
	return err
}
