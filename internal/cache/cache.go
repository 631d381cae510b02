// Package cache persists the most recently decoded SI-unit reading
// per (mode,pid) across process restarts. It is adapted from the
// teacher's pkg/storage/dtc.go DTC-dedup store: same bolt.Open and
// bucket-ensure shape, repurposed from "have we seen this DTC before"
// to "what was the last decoded value for this PID".
package cache

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketKey = "last_readings"

// DB is the underlying bbolt handle this package operates on.
type DB = bolt.DB

// Open opens (or creates) a bbolt database at path and ensures the
// readings bucket exists.
func Open(path string) (*DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketKey))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Put stores the latest decoded SI value for the packed (mode,pid)
// key.
func Put(db *bolt.DB, key uint32, value float64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(value))

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketKey))
		return b.Put(keyBytes(key), buf)
	})
}

// Get retrieves the latest decoded SI value for the packed (mode,pid)
// key. The bool result is false when nothing has been cached yet.
func Get(db *bolt.DB, key uint32) (float64, bool, error) {
	var value float64
	var found bool

	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketKey))
		raw := b.Get(keyBytes(key))
		if raw == nil {
			return nil
		}
		if len(raw) != 8 {
			return fmt.Errorf("cache: corrupt value for key %d", key)
		}
		found = true
		value = math.Float64frombits(binary.BigEndian.Uint64(raw))
		return nil
	})

	return value, found, err
}

func keyBytes(key uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, key)
	return buf
}
