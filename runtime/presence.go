package runtime

import (
	"sync"

	"personal-chat/domain"
)

// PresenceRegistry maps live connections to the identities they
// announced. It is an injected instance with explicit lifecycle, not a
// package singleton, so it can be swapped for a distributed store if
// the system ever spans more than one process.
//
// The snapshot at any instant is exactly the set of connections that
// announced presence and have not since disconnected or logged out.
type PresenceRegistry struct {
	mu      sync.RWMutex
	entries map[domain.ConnectionID]domain.PresenceEntry
	order   []domain.ConnectionID
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		entries: make(map[domain.ConnectionID]domain.PresenceEntry),
	}
}

// Announce upserts the entry for a connection. It reports whether the
// announce was accepted; an anonymous announce (empty identity or
// display name) is silently refused so presence is never tracked for
// unauthenticated connections. Re-announcing keeps the original
// insertion position.
func (p *PresenceRegistry) Announce(connID domain.ConnectionID, identity domain.Identity, displayName string) bool {
	if identity == "" || displayName == "" {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.entries[connID]; !exists {
		p.order = append(p.order, connID)
	}
	p.entries[connID] = domain.PresenceEntry{
		Identity:     identity,
		DisplayName:  displayName,
		ConnectionID: connID,
	}
	return true
}

// Remove drops the entry if present and reports whether it existed.
// It tolerates duplicate removal: an explicit logout followed by the
// transport-level disconnect for the same connection is a no-op the
// second time.
func (p *PresenceRegistry) Remove(connID domain.ConnectionID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.entries[connID]; !exists {
		return false
	}
	delete(p.entries, connID)
	for i, id := range p.order {
		if id == connID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot returns all current entries in insertion order. Safe to call
// concurrently with Announce and Remove.
func (p *PresenceRegistry) Snapshot() []domain.PresenceEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot := make([]domain.PresenceEntry, 0, len(p.order))
	for _, id := range p.order {
		snapshot = append(snapshot, p.entries[id])
	}
	return snapshot
}
