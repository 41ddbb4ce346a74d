package domain

import (
	"errors"
	"fmt"
	"time"
)

// ResourceRecord is a single answer/authority/additional entry. expiresAt is
// nil for a record read fresh off the wire from an upstream server; once a
// record is placed in the answer cache it carries an absolute expiry instead
// of a relative TTL, so remaining lifetime is always computed against Clock.
type ResourceRecord struct {
	Name      string
	Type      RRType
	Class     RRClass
	ttl       uint32
	expiresAt *time.Time
	Data      []byte
	Text      string
}

// NewResourceRecord builds a record as received on the wire. Name is kept
// exactly as decoded: case is preserved on the wire and compared
// case-insensitively only for compression and cache keying, never folded
// here.
func NewResourceRecord(name string, t RRType, c RRClass, ttl uint32, data []byte, text string) (ResourceRecord, error) {
	rr := ResourceRecord{
		Name:  name,
		Type:  t,
		Class: c,
		ttl:   ttl,
		Data:  data,
		Text:  text,
	}
	if err := rr.Validate(); err != nil {
		return ResourceRecord{}, err
	}
	return rr, nil
}

// NewCachedResourceRecord builds a record as it will be stored in the answer
// cache: ttl is fixed to the value observed at cache-insertion time, and the
// resulting expiresAt is what IsExpired/TTL check against later.
func NewCachedResourceRecord(name string, t RRType, c RRClass, ttl uint32, data []byte, text string, now time.Time) (ResourceRecord, error) {
	rr, err := NewResourceRecord(name, t, c, ttl, data, text)
	if err != nil {
		return ResourceRecord{}, err
	}
	expires := now.Add(time.Duration(ttl) * time.Second)
	rr.expiresAt = &expires
	return rr, nil
}

// Validate reports whether the record is well formed.
func (rr ResourceRecord) Validate() error {
	if rr.Name == "" {
		return errors.New("record name must not be empty")
	}
	if !rr.Type.IsValid() {
		return fmt.Errorf("unsupported RRType: %d", uint16(rr.Type))
	}
	if !rr.Class.IsValid() {
		return fmt.Errorf("unsupported RRClass: %d", uint16(rr.Class))
	}
	return nil
}

// IsAuthoritative reports whether this record was read fresh off the wire,
// as opposed to being reconstituted from the answer cache.
func (rr ResourceRecord) IsAuthoritative() bool {
	return rr.expiresAt == nil
}

// TTLRemaining returns how much longer a cached record has to live. It
// returns the record's original TTL for a record that hasn't been cached.
func (rr ResourceRecord) TTLRemaining(now time.Time) time.Duration {
	if rr.expiresAt == nil {
		return time.Duration(rr.ttl) * time.Second
	}
	remaining := rr.expiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TTL returns the seconds-remaining value to embed in an outgoing wire
// record: the original TTL for an authoritative record, or the clamped
// remaining lifetime for a cached one.
func (rr ResourceRecord) TTL(now time.Time) uint32 {
	if rr.expiresAt == nil {
		return rr.ttl
	}
	return uint32(rr.TTLRemaining(now).Seconds())
}

// IsExpired reports whether a cached record's absolute expiry has passed.
// An authoritative record is never expired.
func (rr ResourceRecord) IsExpired(now time.Time) bool {
	if rr.expiresAt == nil {
		return false
	}
	return !now.Before(*rr.expiresAt)
}

// CacheKey returns the answer cache key this record would be stored under.
func (rr ResourceRecord) CacheKey() string {
	return GenerateCacheKey(rr.Name, rr.Type, rr.Class)
}
