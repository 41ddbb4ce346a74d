// Package cache implements the answer cache: a TTL-bounded store of
// previously resolved records keyed by (qname, qtype, qclass).
package cache

// Store is the narrow byte-oriented contract the answer cache needs from
// its backing KV store. Any store providing get/set-if-absent/clear
// semantics over raw keys and values can sit behind it.
type Store interface {
	// Get returns the raw bytes stored under key, or ok=false on a miss
	// (including a miss synthesized because the entry had expired).
	Get(key string) (value []byte, ok bool, err error)

	// SetIfAbsent stores value under key only if key is not already
	// present (and not expired). It returns false, without error, when an
	// entry already occupies the key.
	SetIfAbsent(key string, value []byte, ttlSeconds uint32) (stored bool, err error)

	// Clear removes every entry from the store.
	Clear() error
}
