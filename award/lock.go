package award

import "sync"

// YearLocks serializes work per year. Different years never block each other.
// Entries are reference counted and removed when the last holder unlocks.
type YearLocks struct {
	mu    sync.Mutex
	locks map[int]*yearLock
}

type yearLock struct {
	mu   sync.Mutex
	refs int
}

func NewYearLocks() *YearLocks {
	return &YearLocks{locks: make(map[int]*yearLock)}
}

// Lock blocks until the year is free and returns the matching unlock.
func (l *YearLocks) Lock(year int) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int]*yearLock)
	}
	yl, ok := l.locks[year]
	if !ok {
		yl = &yearLock{}
		l.locks[year] = yl
	}
	yl.refs++
	l.mu.Unlock()

	yl.mu.Lock()
	return func() {
		yl.mu.Unlock()
		l.mu.Lock()
		yl.refs--
		if yl.refs == 0 {
			delete(l.locks, year)
		}
		l.mu.Unlock()
	}
}

// held returns the number of years with an active or waiting holder.
func (l *YearLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
