// Package bolt persists the denylist snapshot in a bbolt database so the
// loaded rule set can be inspected between restarts.
package bolt

import (
	"encoding/binary"
	"errors"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/commentguard/internal/moderation/domain"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist"
)

var (
	bucketWords    = []byte("words")
	bucketPatterns = []byte("patterns")
	bucketMeta     = []byte("meta")

	keyVersion = []byte("version")
	keyUpdated = []byte("updated")
)

// boltStore implements denylist.Store using bbolt.
type boltStore struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (denylist.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketWords, bucketPatterns, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func (s *boltStore) Contains(term string) (bool, error) {
	var present bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketWords)
		if b == nil {
			return nil
		}
		present = b.Get([]byte(term)) != nil
		return nil
	})
	return present, err
}

// Rebuild drops and recreates the rule buckets in one transaction.
func (s *boltStore) Rebuild(rules []domain.DenyRule, version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketWords, bucketPatterns} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return err
			}
		}
		words, err := tx.CreateBucket(bucketWords)
		if err != nil {
			return err
		}
		patterns, err := tx.CreateBucket(bucketPatterns)
		if err != nil {
			return err
		}
		for _, r := range rules {
			val := []byte(r.Source)
			switch r.Kind {
			case domain.RuleWord:
				err = words.Put([]byte(r.Term), val)
			case domain.RulePattern:
				err = patterns.Put([]byte(r.Term), val)
			}
			if err != nil {
				return err
			}
		}
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		vbuf := make([]byte, 8)
		ubuf := make([]byte, 8)
		binary.BigEndian.PutUint64(vbuf, version)
		binary.BigEndian.PutUint64(ubuf, uint64(updatedUnix))
		if err := meta.Put(keyVersion, vbuf); err != nil {
			return err
		}
		return meta.Put(keyUpdated, ubuf)
	})
}

func (s *boltStore) Stats() denylist.StoreStats {
	st := denylist.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketWords); b != nil {
			st.WordKeys = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketPatterns); b != nil {
			st.PatternKeys = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get(keyVersion); len(v) == 8 {
				st.Version = binary.BigEndian.Uint64(v)
			}
			if v := b.Get(keyUpdated); len(v) == 8 {
				st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st
}

var _ denylist.Store = (*boltStore)(nil)
