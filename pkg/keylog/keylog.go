// Package keylog records decoded keys in a bbolt database.
//
// Keys are stored in the "keys" bucket, keyed by a big-endian sequence number
// and encoded with keys.Key.MarshalBinary.
package keylog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"src.rawkey.dev/pkg/keys"
	"src.rawkey.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[keylog] ")

const bucketKeys = "keys"

// ErrNoMatchingKey is returned by Key when no key has the given sequence
// number.
var ErrNoMatchingKey = errors.New("no matching key")

// Entry is a recorded key.
type Entry struct {
	Seq int
	Key keys.Key
}

// KeyLog is a persistent log of keys.
type KeyLog struct {
	db *bolt.DB
}

// Open opens the key log at path, creating it if it does not exist. It waits
// at most one second for another process to release the database.
func Open(path string) (*KeyLog, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open key log: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketKeys))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize key log: %w", err)
	}
	logger.Println("opened", path)
	return &KeyLog{db}, nil
}

// Close closes the database.
func (kl *KeyLog) Close() error {
	return kl.db.Close()
}

// NextSeq returns the sequence number the next added key will get.
func (kl *KeyLog) NextSeq() (int, error) {
	var seq uint64
	err := kl.db.View(func(tx *bolt.Tx) error {
		seq = tx.Bucket([]byte(bucketKeys)).Sequence() + 1
		return nil
	})
	return int(seq), err
}

// Add appends a key to the log and returns its sequence number.
func (kl *KeyLog) Add(k keys.Key) (int, error) {
	var seq uint64
	err := kl.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketKeys))
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		v, _ := k.MarshalBinary()
		return b.Put(marshalSeq(seq), v)
	})
	return int(seq), err
}

// Key returns the key with the given sequence number.
func (kl *KeyLog) Key(seq int) (keys.Key, error) {
	var k keys.Key
	err := kl.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketKeys)).Get(marshalSeq(uint64(seq)))
		if v == nil {
			return ErrNoMatchingKey
		}
		return k.UnmarshalBinary(v)
	})
	return k, err
}

// Iterate calls f with every entry whose sequence number is in [from, upto),
// in order. A negative from is the same as 0, and a non-positive upto means no
// upper bound.
func (kl *KeyLog) Iterate(from, upto int, f func(Entry)) error {
	from = max(from, 0)
	return kl.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketKeys)).Cursor()
		for k, v := c.Seek(marshalSeq(uint64(from))); k != nil; k, v = c.Next() {
			seq := unmarshalSeq(k)
			if upto > 0 && seq >= uint64(upto) {
				break
			}
			var key keys.Key
			if err := key.UnmarshalBinary(v); err != nil {
				return fmt.Errorf("entry %d: %w", seq, err)
			}
			f(Entry{int(seq), key})
		}
		return nil
	})
}

// Entries returns all entries whose sequence number is in [from, upto).
func (kl *KeyLog) Entries(from, upto int) ([]Entry, error) {
	var entries []Entry
	err := kl.Iterate(from, upto, func(e Entry) {
		entries = append(entries, e)
	})
	return entries, err
}

// Clear removes all entries. Sequence numbers restart from 1.
func (kl *KeyLog) Clear() error {
	return kl.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketKeys)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketKeys))
		return err
	})
}

// Observer returns a function suitable for term.WithObserver that adds every
// key to kl. Errors are passed to onErr if it is not nil.
func Observer(kl *KeyLog, onErr func(error)) func(keys.Key) {
	return func(k keys.Key) {
		if _, err := kl.Add(k); err != nil {
			logger.Println("add key:", err)
			if onErr != nil {
				onErr(err)
			}
		}
	}
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
