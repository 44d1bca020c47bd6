package game

import (
	"github.com/tomz197/asteroidfield/internal/object"
	"github.com/tomz197/asteroidfield/internal/physics"
)

// liveSet holds every live entity in insertion order. Membership is liveness:
// an entity leaves the set in the same call that disposes it.
type liveSet struct {
	entities []*object.Entity
	position map[*object.Entity]int
	counts   [4]int
}

func newLiveSet() *liveSet {
	return &liveSet{position: make(map[*object.Entity]int)}
}

func (s *liveSet) Add(e *object.Entity) {
	if _, ok := s.position[e]; ok {
		return
	}
	s.position[e] = len(s.entities)
	s.entities = append(s.entities, e)
	s.counts[e.Kind]++
}

// Remove deletes e, keeping the order of the rest.
func (s *liveSet) Remove(e *object.Entity) bool {
	i, ok := s.position[e]
	if !ok {
		return false
	}
	copy(s.entities[i:], s.entities[i+1:])
	s.entities[len(s.entities)-1] = nil
	s.entities = s.entities[:len(s.entities)-1]
	delete(s.position, e)
	for j := i; j < len(s.entities); j++ {
		s.position[s.entities[j]] = j
	}
	s.counts[e.Kind]--
	return true
}

func (s *liveSet) Len() int {
	return len(s.entities)
}

// Count returns how many live entities have kind k.
func (s *liveSet) Count(k object.Kind) int {
	if int(k) >= len(s.counts) {
		return 0
	}
	return s.counts[k]
}

// Snapshot copies the live entities of kind k. Iterating the copy is safe
// while the set itself changes.
func (s *liveSet) Snapshot(k object.Kind) []*object.Entity {
	out := make([]*object.Entity, 0, s.Count(k))
	for _, e := range s.entities {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// All copies every live entity.
func (s *liveSet) All() []*object.Entity {
	out := make([]*object.Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// colliderIndex maps collider handles to their owning entities. It is rebuilt
// from the live-set at the start of every resolve phase, so it never holds an
// entity that was disposed before the phase began.
type colliderIndex map[physics.ColliderHandle]*object.Entity

func (s *liveSet) Index() colliderIndex {
	idx := make(colliderIndex, len(s.entities))
	for _, e := range s.entities {
		if !e.Disposed() {
			idx[e.Collider] = e
		}
	}
	return idx
}

// Lookup resolves h. Entities disposed since the index was built are
// reported as missing.
func (idx colliderIndex) Lookup(h physics.ColliderHandle) (*object.Entity, bool) {
	e, ok := idx[h]
	if !ok || e.Disposed() {
		return nil, false
	}
	return e, true
}
