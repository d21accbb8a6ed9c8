// internal/app/system/grouplock/grouplock.go

// Package grouplock serializes membership check-then-write sequences
// per group. The workload-sum check and the last-admin count are read
// before their mutation is written; without serialization two
// concurrent requests on the same group could both observe the stale
// aggregate and both pass. Operations on different groups never
// contend.
//
// The lock is in-process; the unique indexes on (user_id, group_id)
// and (assignment_id, evaluator_id) remain the store-level backstop.
package grouplock

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Keyed hands out one mutex per group id. Mutexes are created on first
// use and retained; group counts are small and bounded by real usage.
type Keyed struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

// New returns an empty keyed lock set.
func New() *Keyed {
	return &Keyed{locks: make(map[primitive.ObjectID]*sync.Mutex)}
}

func (k *Keyed) lockFor(groupID primitive.ObjectID) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[groupID]
	if !ok {
		l = &sync.Mutex{}
		k.locks[groupID] = l
	}
	return l
}

// Lock acquires the group's mutex and returns the unlock function.
//
//	unlock := locks.Lock(groupID)
//	defer unlock()
func (k *Keyed) Lock(groupID primitive.ObjectID) func() {
	l := k.lockFor(groupID)
	l.Lock()
	return l.Unlock
}
