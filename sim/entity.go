package sim

import (
	"math"
	"sort"
)

// EntityID is a stable identity. IDs are allocated monotonically and never
// reused within a match; 0 means "no entity".
type EntityID uint32

// Side is one of the two opposing players.
type Side int8

// Opponent returns the other side.
func (s Side) Opponent() Side {
	return 1 - s
}

// Kind distinguishes the simulated object categories.
type Kind uint8

const (
	KindTroop Kind = iota
	KindBuilding
	KindTower
	KindProjectile
)

// IsStructure reports whether the kind counts as a building for target
// filters and damage penalties.
func (k Kind) IsStructure() bool {
	return k == KindBuilding || k == KindTower
}

// Domain is the movement domain of an entity.
type Domain uint8

const (
	DomainGround Domain = iota
	DomainAir
)

// TargetFilter restricts which opposing entities may be locked as targets.
type TargetFilter uint8

const (
	TargetAll TargetFilter = iota
	TargetGround
	TargetAir
	TargetBuildings
)

// Admits reports whether the filter allows targeting the given entity.
func (f TargetFilter) Admits(e *Entity) bool {
	switch f {
	case TargetGround:
		return e.Domain == DomainGround
	case TargetAir:
		return e.Domain == DomainAir
	case TargetBuildings:
		return e.Kind.IsStructure()
	default:
		return true
	}
}

// Entity is one simulated object: troop, building, tower or projectile.
// Durations and cooldowns are integer ticks.
type Entity struct {
	ID   EntityID
	Side Side
	Kind Kind
	Name string

	X, Y   float64
	Radius float64
	Mass   float64 // 0 = immovable

	HP     float64
	MaxHP  float64
	Shield float64

	Damage       float64
	TowerPenalty float64 // damage multiplier vs structures, 1 = none

	Speed     float64 // tiles per second
	Range     float64
	Sight     float64
	Splash    float64
	Ranged    bool
	ProjSpeed float64

	Cooldown    int
	MaxCooldown int
	RetargetCD  int
	LoadTicks   int // delay before the first attack
	DeployTicks int // post-spawn immobility

	Domain       Domain
	Filter       TargetFilter
	CrossesRiver bool

	// Weak reference to the current target. Resolved through the store on
	// every use; a failed resolution clears it, never errors.
	TargetID     EntityID
	TargetLocked bool

	OnHit   []EffectSpec
	Effects []Effect

	Dead bool
}

// DistanceTo returns the center distance to another entity.
func (e *Entity) DistanceTo(o *Entity) float64 {
	return dist(e.X, e.Y, o.X, o.Y)
}

// EdgeDistanceTo returns the distance between hulls (centers minus radii),
// clamped at zero. Attack range checks are edge-to-edge so large targets
// are not unreachable.
func (e *Entity) EdgeDistanceTo(o *Entity) float64 {
	d := e.DistanceTo(o) - e.Radius - o.Radius
	if d < 0 {
		return 0
	}
	return d
}

// CanAttack reports whether the entity participates in combat at all.
func (e *Entity) CanAttack() bool {
	return e.Damage > 0 && e.Kind != KindProjectile
}

// ClearTarget drops the current target reference.
func (e *Entity) ClearTarget() {
	e.TargetID = 0
	e.TargetLocked = false
}

// TakeDamage subtracts damage, shield first, clamping HP at zero. Marks the
// entity dead when HP reaches zero and reports whether it died just now.
func (e *Entity) TakeDamage(amount float64) bool {
	if e.Dead || amount <= 0 {
		return false
	}
	if e.Shield > 0 {
		if e.Shield >= amount {
			e.Shield -= amount
			return false
		}
		amount -= e.Shield
		e.Shield = 0
	}
	e.HP -= amount
	if e.HP <= 0 {
		e.HP = 0
		e.Dead = true
		return true
	}
	return false
}

// Store owns all live entities, keyed by stable identity.
type Store struct {
	entities map[EntityID]*Entity
	nextID   EntityID
}

// NewStore creates an empty store. IDs start at 1.
func NewStore() *Store {
	return &Store{entities: make(map[EntityID]*Entity), nextID: 1}
}

// Add assigns the next ID and inserts the entity.
func (s *Store) Add(e *Entity) EntityID {
	e.ID = s.nextID
	s.nextID++
	s.entities[e.ID] = e
	return e.ID
}

// Get returns the entity with the given ID, dead or alive, or nil.
func (s *Store) Get(id EntityID) *Entity {
	if id == 0 {
		return nil
	}
	return s.entities[id]
}

// Live resolves a weak reference: nil unless the entity exists and is alive.
func (s *Store) Live(id EntityID) *Entity {
	e := s.Get(id)
	if e == nil || e.Dead {
		return nil
	}
	return e
}

// Len returns the number of stored entities, including dead-this-tick ones.
func (s *Store) Len() int {
	return len(s.entities)
}

// Ordered returns all entities in ascending ID order. Every system iterates
// in this order so results never depend on map iteration.
func (s *Store) Ordered() []*Entity {
	out := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Remove deletes an entity by ID.
func (s *Store) Remove(id EntityID) {
	delete(s.entities, id)
}

func dist(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}
