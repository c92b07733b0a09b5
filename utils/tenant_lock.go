package utils

import "sync"

// TenantLocks provides per-guild mutual exclusion. The lock is held across a
// single read-modify-write cycle against that guild's records; operations on
// different guilds never block each other.
type TenantLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTenantLocks creates an empty lock set.
func NewTenantLocks() *TenantLocks {
	return &TenantLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for guildID, creating it on first use.
func (t *TenantLocks) Lock(guildID string) {
	t.guildLock(guildID).Lock()
}

// Unlock releases the lock for guildID.
func (t *TenantLocks) Unlock(guildID string) {
	t.guildLock(guildID).Unlock()
}

func (t *TenantLocks) guildLock(guildID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[guildID] = l
	}
	return l
}
