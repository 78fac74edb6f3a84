package services

import (
	"hash/fnv"
	"sync"
	"time"

	"petplus-bot/models"
)

const sessionShardCount = 32

// sessionEntry pairs a session with its per-user lock. The evicted flag lets
// a turn that raced the sweeper detect the stale entry and start over.
type sessionEntry struct {
	mu      sync.Mutex
	session *models.Session
	evicted bool
}

type sessionShard struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// SessionStore holds per-user conversational state in a sharded in-memory
// map. A whole dialogue turn runs under the user's entry lock, so concurrent
// messages from the same user serialize while different users proceed
// independently.
type SessionStore struct {
	shards [sessionShardCount]*sessionShard
	now    func() time.Time
}

func NewSessionStore() *SessionStore {
	s := &SessionStore{now: time.Now}
	for i := range s.shards {
		s.shards[i] = &sessionShard{entries: make(map[string]*sessionEntry)}
	}
	return s
}

func (s *SessionStore) shard(userID string) *sessionShard {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return s.shards[h.Sum32()%sessionShardCount]
}

func (s *SessionStore) entry(userID string) *sessionEntry {
	sh := s.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[userID]
	if !ok {
		e = &sessionEntry{session: &models.Session{
			UserID:     userID,
			Stage:      models.StageStart,
			LastSeenAt: s.now(),
		}}
		sh.entries[userID] = e
	}
	return e
}

// WithSession runs fn while holding the user's lock, creating the session on
// first access and refreshing LastSeenAt. If the sweeper evicted the entry
// between lookup and lock acquisition, the lookup is retried on a fresh
// session.
func (s *SessionStore) WithSession(userID string, fn func(*models.Session)) {
	for {
		e := s.entry(userID)
		e.mu.Lock()
		if e.evicted {
			e.mu.Unlock()
			continue
		}
		e.session.LastSeenAt = s.now()
		fn(e.session)
		e.mu.Unlock()
		return
	}
}

// GetOrCreate returns a snapshot of the user's session, creating it with
// default state on first access. The copy is safe to read without the lock.
func (s *SessionStore) GetOrCreate(userID string) models.Session {
	var snap models.Session
	s.WithSession(userID, func(sess *models.Session) {
		snap = *sess
	})
	return snap
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.entries)
		sh.mu.Unlock()
	}
	return total
}

// Sweep evicts every session untouched for longer than maxInactivity and
// returns the number removed. It takes the same per-entry lock as live
// turns, so eviction never interleaves with an in-flight turn on the key.
func (s *SessionStore) Sweep(maxInactivity time.Duration) int {
	cutoff := s.now().Add(-maxInactivity)
	removed := 0

	for _, sh := range s.shards {
		sh.mu.Lock()
		candidates := make(map[string]*sessionEntry, len(sh.entries))
		for id, e := range sh.entries {
			candidates[id] = e
		}
		sh.mu.Unlock()

		for id, e := range candidates {
			e.mu.Lock()
			if !e.evicted && e.session.LastSeenAt.Before(cutoff) {
				e.evicted = true
				sh.mu.Lock()
				if sh.entries[id] == e {
					delete(sh.entries, id)
				}
				sh.mu.Unlock()
				removed++
			}
			e.mu.Unlock()
		}
	}
	return removed
}
