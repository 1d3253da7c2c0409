package loader

import (
	"sort"
	"sync"
)

// accountLocker serializes balance mutation per account id inside this
// process. Locks are always taken in ascending id order, the same order
// the repository locks rows, so no pair of transfers can deadlock.
type accountLocker struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newAccountLocker() *accountLocker {
	return &accountLocker{locks: make(map[int64]*sync.Mutex)}
}

func (l *accountLocker) lockFor(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// Acquire locks every given account id and returns the release func.
// Duplicate ids are collapsed so locking (a, a) cannot self-deadlock.
func (l *accountLocker) Acquire(ids ...int64) func() {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	held := make([]*sync.Mutex, 0, len(unique))
	for _, id := range unique {
		m := l.lockFor(id)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
