package simworld

import (
	"sync"

	"emberforge"
)

// Entity is a minimal positioned, non-player object. Grounded on la2go's
// WorldObject: an immutable ID plus a mutex-guarded mutable position.
type Entity struct {
	id uint32

	mu            sync.RWMutex
	x, y, z       int32
	ticksAlive    int64
}

// NewEntity creates an Entity at the given position.
func NewEntity(id uint32, x, y, z int32) *Entity {
	return &Entity{id: id, x: x, y: y, z: z}
}

func (e *Entity) ID() uint32 { return e.id }

func (e *Entity) Position() (x, y, z int32) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.x, e.y, e.z
}

func (e *Entity) SetPosition(x, y, z int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.x, e.y, e.z = x, y, z
}

func (e *Entity) TicksAlive() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ticksAlive
}

func (e *Entity) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ticksAlive++
}

// EntitySet is a registry of every live Entity, keyed by ID. Grounded on
// la2go's World.objects sync.Map, reduced to just the operations the tick
// loop and a Config implementation need: lookup, add, remove, and the
// single Update entry point emberforge calls once per tick.
type EntitySet struct {
	entities sync.Map // uint32 -> *Entity
}

var _ emberforge.Entities = (*EntitySet)(nil)

// NewEntitySet returns an empty EntitySet.
func NewEntitySet() *EntitySet {
	return &EntitySet{}
}

func (s *EntitySet) Add(e *Entity) {
	s.entities.Store(e.id, e)
}

func (s *EntitySet) Remove(id uint32) {
	s.entities.Delete(id)
}

func (s *EntitySet) Get(id uint32) (*Entity, bool) {
	v, ok := s.entities.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Entity), true
}

// Update advances every entity by one tick. The reference implementation
// does nothing but bump each entity's tick counter; an embedding
// application's Entities would apply physics, AI, and the like here.
func (s *EntitySet) Update() {
	s.entities.Range(func(_, v any) bool {
		v.(*Entity).tick()
		return true
	})
}

// Len returns the number of tracked entities, for tests.
func (s *EntitySet) Len() int {
	n := 0
	s.entities.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
