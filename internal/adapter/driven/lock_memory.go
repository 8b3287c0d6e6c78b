package driven

import (
	"context"
	"slices"
	"sync"
)

// MemoryLocker implements the ScheduleLocker port with in-process keyed
// mutexes. It is sufficient for the memory and BoltDB gateways because a
// BoltDB file can only be opened by one process at a time.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewMemoryLocker creates an empty keyed locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

// Lock acquires every key in sorted order.
func (l *MemoryLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	ordered := sortedKeys(keys)

	held := make([]chan struct{}, 0, len(ordered))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, key := range ordered {
		slot := l.slot(key)
		select {
		case slot <- struct{}{}:
			held = append(held, slot)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	return slot
}

// sortedKeys returns the distinct keys in ascending order.
func sortedKeys(keys []string) []string {
	ordered := slices.Clone(keys)
	slices.Sort(ordered)
	return slices.Compact(ordered)
}
