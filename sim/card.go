package sim

// CardType distinguishes how a card resolves when played.
type CardType uint8

const (
	CardTroop CardType = iota
	CardBuilding
	CardSpell
)

// UnitTemplate is the immutable stat block a unit entity is populated from.
// Templates are supplied at startup and never mutated by the simulation.
type UnitTemplate struct {
	Name         string
	Kind         Kind
	HP           float64
	Damage       float64
	CooldownSec  float64 // seconds between attacks
	Speed        float64 // tiles per second, 0 = stationary
	Range        float64
	Sight        float64
	Radius       float64
	Mass         float64
	Domain       Domain
	Filter       TargetFilter
	Ranged       bool
	ProjSpeed    float64
	Splash       float64
	TowerPenalty float64 // 0 means "no penalty" (treated as 1)
	LoadSec      float64 // delay before the first attack
	CrossesRiver bool

	ShieldAmount float64
	LifetimeSec  float64 // building lifetime, 0 = permanent
	OnHit        []EffectSpec
	Spawner      *EffectSpec
	Split        []string // split-on-death template names
}

// SpellTemplate describes an instant spell resolution.
type SpellTemplate struct {
	Damage       float64
	Radius       float64
	TowerPenalty float64
	Effect       *EffectSpec // applied inside the radius
	Friendly     bool        // effect targets own units instead of enemies
}

// Card is a playable definition: cost, spawn layout and the template(s) it
// instantiates.
type Card struct {
	Name    string
	Cost    float64
	Type    CardType
	Unit    string // unit template name for troop/building cards
	Count   int
	Offsets [][2]float64 // per-instance spawn offsets
	Spell   *SpellTemplate
}

// Catalog is the set of card and unit definitions a match is created with.
type Catalog struct {
	Cards map[string]*Card
	Units map[string]*UnitTemplate
}

// Ticks converts a duration in seconds to whole ticks, minimum 1 for any
// positive duration.
func Ticks(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	t := int(seconds * TicksPerSecond)
	if t < 1 {
		t = 1
	}
	return t
}

// meleeThreshold separates melee from ranged attacks when a template does
// not set the Ranged flag explicitly.
const meleeThreshold = 2.0

// DefaultCatalog returns the built-in card set. Stats follow the reference
// balance sheet; units that only exist as spawn products (Skeleton,
// Golemite) have templates but no card.
func DefaultCatalog() *Catalog {
	units := map[string]*UnitTemplate{
		"Knight": {
			Name: "Knight", Kind: KindTroop, HP: 1452, Damage: 167,
			CooldownSec: 1.2, Speed: 1.0, Range: 1.2, Sight: 5.5,
			Radius: 0.4, Mass: 4, Filter: TargetGround,
		},
		"Archer": {
			Name: "Archer", Kind: KindTroop, HP: 252, Damage: 100,
			CooldownSec: 1.2, Speed: 1.0, Range: 5.0, Sight: 6.0,
			Radius: 0.4, Mass: 2, Filter: TargetAll,
			Ranged: true, ProjSpeed: 6.0,
		},
		"Giant": {
			Name: "Giant", Kind: KindTroop, HP: 3275, Damage: 211,
			CooldownSec: 1.5, Speed: 0.75, Range: 1.2, Sight: 7.0,
			Radius: 0.6, Mass: 8, Filter: TargetBuildings,
		},
		"Minion": {
			Name: "Minion", Kind: KindTroop, HP: 190, Damage: 84,
			CooldownSec: 1.0, Speed: 1.6, Range: 1.6, Sight: 5.5,
			Radius: 0.3, Mass: 1, Domain: DomainAir, Filter: TargetAll,
		},
		"Skeleton": {
			Name: "Skeleton", Kind: KindTroop, HP: 67, Damage: 67,
			CooldownSec: 1.0, Speed: 1.6, Range: 0.8, Sight: 5.5,
			Radius: 0.3, Mass: 1, Filter: TargetGround,
		},
		"Witch": {
			Name: "Witch", Kind: KindTroop, HP: 696, Damage: 130,
			CooldownSec: 1.1, Speed: 1.0, Range: 5.5, Sight: 5.5,
			Radius: 0.4, Mass: 2, Filter: TargetAll,
			Ranged: true, ProjSpeed: 6.0, Splash: 1.0,
			Spawner: &EffectSpec{
				Kind: EffectSpawner, Interval: Ticks(7),
				Templates: []string{"Skeleton", "Skeleton", "Skeleton"},
			},
		},
		"Golem": {
			Name: "Golem", Kind: KindTroop, HP: 3200, Damage: 195,
			CooldownSec: 2.5, Speed: 0.75, Range: 1.2, Sight: 7.0,
			Radius: 0.75, Mass: 10, Filter: TargetBuildings,
			Split: []string{"Golemite", "Golemite"},
		},
		"Golemite": {
			Name: "Golemite", Kind: KindTroop, HP: 640, Damage: 39,
			CooldownSec: 2.5, Speed: 0.75, Range: 1.2, Sight: 7.0,
			Radius: 0.5, Mass: 4, Filter: TargetBuildings,
		},
		"Guard": {
			Name: "Guard", Kind: KindTroop, HP: 108, Damage: 76,
			CooldownSec: 1.1, Speed: 1.0, Range: 1.6, Sight: 5.5,
			Radius: 0.3, Mass: 1, Filter: TargetGround,
			ShieldAmount: 199,
		},
		"Ice Wizard": {
			Name: "Ice Wizard", Kind: KindTroop, HP: 590, Damage: 75,
			CooldownSec: 1.7, Speed: 1.0, Range: 5.5, Sight: 5.5,
			Radius: 0.4, Mass: 2, Filter: TargetAll,
			Ranged: true, ProjSpeed: 6.0, Splash: 1.5,
			OnHit: []EffectSpec{{Kind: EffectSlow, Duration: Ticks(2), Factor: 0.65}},
		},
		"Hog Rider": {
			Name: "Hog Rider", Kind: KindTroop, HP: 1408, Damage: 264,
			CooldownSec: 1.6, Speed: 2.0, Range: 0.8, Sight: 7.0,
			Radius: 0.5, Mass: 6, Filter: TargetBuildings,
			CrossesRiver: true,
		},
		"Cannon": {
			Name: "Cannon", Kind: KindBuilding, HP: 742, Damage: 127,
			CooldownSec: 0.9, Range: 5.5, Sight: 5.5,
			Radius: 0.6, Filter: TargetGround,
			Ranged: true, ProjSpeed: 8.0, LifetimeSec: 30,
		},
		"Princess Tower": {
			Name: "Princess Tower", Kind: KindTower, HP: 1400, Damage: 90,
			CooldownSec: 0.8, Range: 7.5, Sight: 7.5,
			Radius: 1.0, Filter: TargetAll,
			Ranged: true, ProjSpeed: 6.0,
		},
		"King Tower": {
			Name: "King Tower", Kind: KindTower, HP: 2400, Damage: 90,
			CooldownSec: 1.0, Range: 7.0, Sight: 7.0,
			Radius: 1.5, Filter: TargetAll,
			Ranged: true, ProjSpeed: 6.0, LoadSec: 1.0,
		},
	}

	cards := map[string]*Card{
		"Knight":  troopCard("Knight", 3, "Knight", 1),
		"Archers": troopCard("Archers", 3, "Archer", 2),
		"Giant":   troopCard("Giant", 5, "Giant", 1),
		"Minions": troopCard("Minions", 3, "Minion", 3),
		"Skeletons": troopCard("Skeletons", 1, "Skeleton", 3),
		"Witch":     troopCard("Witch", 5, "Witch", 1),
		"Golem":     troopCard("Golem", 8, "Golem", 1),
		"Guards":    troopCard("Guards", 3, "Guard", 3),
		"Ice Wizard": troopCard("Ice Wizard", 3, "Ice Wizard", 1),
		"Hog Rider":  troopCard("Hog Rider", 4, "Hog Rider", 1),
		"Cannon": {
			Name: "Cannon", Cost: 3, Type: CardBuilding, Unit: "Cannon",
			Count: 1, Offsets: [][2]float64{{0, 0}},
		},
		"Fireball": {
			Name: "Fireball", Cost: 4, Type: CardSpell,
			Spell: &SpellTemplate{Damage: 572, Radius: 2.5, TowerPenalty: 0.35},
		},
		"Arrows": {
			Name: "Arrows", Cost: 3, Type: CardSpell,
			Spell: &SpellTemplate{Damage: 144, Radius: 4.0, TowerPenalty: 0.35},
		},
		"Zap": {
			Name: "Zap", Cost: 2, Type: CardSpell,
			Spell: &SpellTemplate{
				Damage: 75, Radius: 2.5, TowerPenalty: 0.35,
				Effect: &EffectSpec{Kind: EffectStun, Duration: Ticks(0.5)},
			},
		},
		"Rage": {
			Name: "Rage", Cost: 2, Type: CardSpell,
			Spell: &SpellTemplate{
				Radius: 3.0, Friendly: true,
				Effect: &EffectSpec{Kind: EffectRage, Duration: Ticks(6), Factor: 1.35},
			},
		},
	}

	return &Catalog{Cards: cards, Units: units}
}

// troopCard builds a troop card with evenly spread spawn offsets.
func troopCard(name string, cost float64, unit string, count int) *Card {
	return &Card{
		Name: name, Cost: cost, Type: CardTroop, Unit: unit,
		Count: count, Offsets: spawnOffsets(count),
	}
}

// spawnOffsets spreads count units around the deploy point. Offsets are
// fixed per count so spawning is deterministic.
func spawnOffsets(count int) [][2]float64 {
	switch count {
	case 1:
		return [][2]float64{{0, 0}}
	case 2:
		return [][2]float64{{0, -0.5}, {0, 0.5}}
	case 3:
		return [][2]float64{{0, -0.7}, {0.6, 0.35}, {-0.6, 0.35}}
	default:
		out := make([][2]float64, count)
		for i := range out {
			out[i] = [2]float64{float64(i%2) - 0.5, float64(i/2) * 0.7}
		}
		return out
	}
}

// DeployTimeSec is the post-spawn immobility window for played cards.
const DeployTimeSec = 1.0

// Instantiate populates a fresh entity from a template at a position.
func (t *UnitTemplate) Instantiate(side Side, x, y float64) *Entity {
	penalty := t.TowerPenalty
	if penalty == 0 {
		penalty = 1
	}
	ranged := t.Ranged || t.Range > meleeThreshold
	e := &Entity{
		Side: side, Kind: t.Kind, Name: t.Name,
		X: x, Y: y, Radius: t.Radius, Mass: t.Mass,
		HP: t.HP, MaxHP: t.HP, Shield: t.ShieldAmount,
		Damage: t.Damage, TowerPenalty: penalty,
		Speed: t.Speed, Range: t.Range, Sight: t.Sight,
		Splash: t.Splash, Ranged: ranged, ProjSpeed: t.ProjSpeed,
		MaxCooldown: Ticks(t.CooldownSec),
		LoadTicks:   Ticks(t.LoadSec),
		Domain:      t.Domain, Filter: t.Filter,
		CrossesRiver: t.CrossesRiver,
		OnHit:        t.OnHit,
	}
	if t.LifetimeSec > 0 {
		ApplyEffect(e, EffectSpec{Kind: EffectLifetime, Duration: Ticks(t.LifetimeSec)})
	}
	if t.Spawner != nil {
		ApplyEffect(e, *t.Spawner)
	}
	if len(t.Split) > 0 {
		ApplyEffect(e, EffectSpec{Kind: EffectSplit, Templates: t.Split})
	}
	return e
}
