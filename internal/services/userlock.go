package services

import "sync"

// userLocks hands out one mutex per uid. Entries are dropped once no caller
// holds or waits on them.
type userLocks struct {
	mu sync.Mutex
	m  map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until uid's mutex is held and returns its release func.
func (l *userLocks) lock(uid string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*userLock)
	}
	ul, ok := l.m[uid]
	if !ok {
		ul = &userLock{}
		l.m[uid] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.m, uid)
		}
		l.mu.Unlock()
	}
}
