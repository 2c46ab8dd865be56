package storage

import "sync"

// keyLocks is a table of mutexes, one per (bucket, asset) pair that has been
// written. Writes to different keys never contend.
type keyLocks struct {
	mu sync.Map // map[string]*sync.Mutex
}

// lock acquires the mutex for (bucket, asset) and returns its unlock function.
// Entries are never removed.
func (l *keyLocks) lock(bucket, asset string) (unlock func()) {
	v, _ := l.mu.LoadOrStore(bucket+"\x00"+asset, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
