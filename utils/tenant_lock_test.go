package utils

import (
	"sync"
	"testing"
)

func TestTenantLocksSerializePerGuild(t *testing.T) {
	locks := NewTenantLocks()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("guild-1")
			counter++
			locks.Unlock("guild-1")
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}

func TestTenantLocksIndependentGuilds(t *testing.T) {
	locks := NewTenantLocks()
	locks.Lock("guild-a")
	defer locks.Unlock("guild-a")

	done := make(chan struct{})
	go func() {
		locks.Lock("guild-b")
		locks.Unlock("guild-b")
		close(done)
	}()
	<-done
}
