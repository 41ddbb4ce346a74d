// Package bolt implements the answer cache's cache.Store on top of an
// embedded bbolt database, so the resolver keeps a warm cache across
// restarts without depending on a separate network service.
package bolt

import (
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/rrwalk/rrwalk/internal/dns/common/clock"
	"github.com/rrwalk/rrwalk/internal/dns/common/log"
)

var answersBucket = []byte("answers")

// Store is a cache.Store backed by a single, long-lived *bbolt.DB handle
// opened once at construction and held for the process lifetime, rather
// than reopened per call.
type Store struct {
	db     *bbolt.DB
	clock  clock.Clock
	logger log.Logger
}

// Open opens (creating if necessary) the bbolt file at path and ensures the
// answers bucket exists.
func Open(path string, c clock.Clock, logger log.Logger) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache store %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(answersBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache bucket: %w", err)
	}

	return &Store{db: db, clock: c, logger: logger}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// record is the on-disk envelope: an absolute expiry timestamp followed by
// the caller's opaque value bytes.
func encodeRecord(expiresAt time.Time, value []byte) []byte {
	out := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(out, uint64(expiresAt.Unix()))
	copy(out[8:], value)
	return out
}

func decodeRecord(raw []byte) (time.Time, []byte, error) {
	if len(raw) < 8 {
		return time.Time{}, nil, fmt.Errorf("cache record too short: %d bytes", len(raw))
	}
	expiresAt := time.Unix(int64(binary.BigEndian.Uint64(raw[:8])), 0)
	value := make([]byte, len(raw)-8)
	copy(value, raw[8:])
	return expiresAt, value, nil
}

// Get returns the value at key, treating a past-expiry record as a miss and
// deleting it in a follow-up write transaction.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var value []byte
	var found bool
	var expired bool

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(answersBucket)
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		expiresAt, v, err := decodeRecord(raw)
		if err != nil {
			return err
		}
		if !s.clock.Now().Before(expiresAt) {
			expired = true
			return nil
		}
		found = true
		value = v
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("read cache key %s: %w", key, err)
	}

	if expired {
		if delErr := s.delete(key); delErr != nil {
			s.logger.Warn(map[string]any{"key": key, "error": delErr.Error()}, "failed to evict expired cache entry")
		}
		return nil, false, nil
	}
	return value, found, nil
}

func (s *Store) delete(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(answersBucket).Delete([]byte(key))
	})
}

// SetIfAbsent stores value under key unless a live (non-expired) entry
// already occupies it, all inside a single write transaction so the
// check-then-set is atomic against concurrent callers.
func (s *Store) SetIfAbsent(key string, value []byte, ttlSeconds uint32) (bool, error) {
	now := s.clock.Now()
	stored := false

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(answersBucket)
		if raw := b.Get([]byte(key)); raw != nil {
			expiresAt, _, err := decodeRecord(raw)
			if err == nil && now.Before(expiresAt) {
				return nil
			}
		}
		expiresAt := now.Add(time.Duration(ttlSeconds) * time.Second)
		stored = true
		return b.Put([]byte(key), encodeRecord(expiresAt, value))
	})
	if err != nil {
		return false, fmt.Errorf("write cache key %s: %w", key, err)
	}
	return stored, nil
}

// Clear deletes and recreates the answers bucket.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(answersBucket); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(answersBucket)
		return err
	})
}
