package cache

import (
	"encoding/json"
	"time"

	"github.com/rrwalk/rrwalk/internal/dns/common/clock"
	"github.com/rrwalk/rrwalk/internal/dns/common/log"
	"github.com/rrwalk/rrwalk/internal/dns/domain"
)

// AnswerCache is the C5 answer cache: a Question maps to the answer records
// an earlier lookup produced, valid until the TTL recorded at insertion
// time elapses. It never overwrites a live entry — losing a race to
// populate the same key is not an error, just a no-op.
type AnswerCache struct {
	store  Store
	clock  clock.Clock
	logger log.Logger
}

// New builds an AnswerCache over the given backing store.
func New(store Store, c clock.Clock, logger log.Logger) *AnswerCache {
	return &AnswerCache{store: store, clock: c, logger: logger}
}

type recordEnvelope struct {
	Name  string `json:"name"`
	Type  uint16 `json:"type"`
	Class uint16 `json:"class"`
	Data  []byte `json:"data"`
	Text  string `json:"text"`
}

type entryEnvelope struct {
	Records  []recordEnvelope `json:"records"`
	TTL      uint32           `json:"ttl"`
	StoredAt time.Time        `json:"storedAt"`
}

// Get returns the cached answers for q, with each record's TTL recomputed
// against the current clock. A read against a store error or a corrupt
// envelope degrades to a plain cache miss rather than propagating the
// error to the resolution engine.
func (c *AnswerCache) Get(q domain.Question) ([]domain.ResourceRecord, bool) {
	raw, ok, err := c.store.Get(q.CacheKey())
	if err != nil {
		c.logger.Warn(map[string]any{"key": q.CacheKey(), "error": err.Error()}, "answer cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var env entryEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn(map[string]any{"key": q.CacheKey(), "error": err.Error()}, "answer cache entry corrupt")
		return nil, false
	}

	now := c.clock.Now()
	elapsed := now.Sub(env.StoredAt)
	remaining := time.Duration(env.TTL)*time.Second - elapsed
	if remaining <= 0 {
		return nil, false
	}

	records := make([]domain.ResourceRecord, 0, len(env.Records))
	for _, r := range env.Records {
		rr, err := domain.NewCachedResourceRecord(r.Name, domain.RRType(r.Type), domain.RRClass(r.Class), uint32(remaining.Seconds()), r.Data, r.Text, now)
		if err != nil {
			c.logger.Warn(map[string]any{"key": q.CacheKey(), "error": err.Error()}, "answer cache record corrupt")
			return nil, false
		}
		records = append(records, rr)
	}
	return records, true
}

// Set stores answers under q's key, using the first record's TTL for the
// whole entry. It never overwrites an existing entry and is a no-op for an
// empty answer set. Store errors are logged, not returned, since a failed
// cache write should never fail the resolution it's caching.
func (c *AnswerCache) Set(q domain.Question, answers []domain.ResourceRecord) {
	if len(answers) == 0 {
		return
	}

	now := c.clock.Now()
	env := entryEnvelope{
		TTL:      answers[0].TTL(now),
		StoredAt: now,
		Records:  make([]recordEnvelope, 0, len(answers)),
	}
	for _, rr := range answers {
		env.Records = append(env.Records, recordEnvelope{
			Name:  rr.Name,
			Type:  uint16(rr.Type),
			Class: uint16(rr.Class),
			Data:  rr.Data,
			Text:  rr.Text,
		})
	}

	raw, err := json.Marshal(env)
	if err != nil {
		c.logger.Warn(map[string]any{"key": q.CacheKey(), "error": err.Error()}, "answer cache encode failed")
		return
	}

	if _, err := c.store.SetIfAbsent(q.CacheKey(), raw, env.TTL); err != nil {
		c.logger.Warn(map[string]any{"key": q.CacheKey(), "error": err.Error()}, "answer cache write failed")
	}
}
