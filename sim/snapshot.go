package sim

// EffectSnap is the serialized state of one active status effect.
type EffectSnap struct {
	Kind      uint8   `json:"k" msgpack:"k"`
	Remaining int     `json:"rem" msgpack:"rem"`
	Factor    float64 `json:"f,omitempty" msgpack:"f"`
	Amount    float64 `json:"a,omitempty" msgpack:"a"`
}

// EntitySnap is the serialized view of one live entity. Tags are short for
// the msgpack wire frames; JSON uses the same keys.
type EntitySnap struct {
	ID       uint32       `json:"id" msgpack:"id"`
	Side     int8         `json:"side" msgpack:"sd"`
	Kind     uint8        `json:"kind" msgpack:"k"`
	Name     string       `json:"name" msgpack:"n"`
	X        float64      `json:"x" msgpack:"x"`
	Y        float64      `json:"y" msgpack:"y"`
	Radius   float64      `json:"r" msgpack:"r"`
	Mass     float64      `json:"m" msgpack:"m"`
	HP       float64      `json:"hp" msgpack:"hp"`
	MaxHP    float64      `json:"mhp" msgpack:"mhp"`
	Shield   float64      `json:"sh,omitempty" msgpack:"sh"`
	Damage   float64      `json:"dmg" msgpack:"dmg"`
	Speed    float64      `json:"spd" msgpack:"spd"`
	Range    float64      `json:"rng" msgpack:"rng"`
	Sight    float64      `json:"sgt" msgpack:"sgt"`
	Splash   float64      `json:"spl,omitempty" msgpack:"spl"`
	Cooldown int          `json:"cd" msgpack:"cd"`
	Retarget int          `json:"rcd,omitempty" msgpack:"rcd"`
	Load     int          `json:"ld,omitempty" msgpack:"ld"`
	Domain   uint8        `json:"dom" msgpack:"dom"`
	Filter   uint8        `json:"flt" msgpack:"flt"`
	Target   uint32       `json:"tgt,omitempty" msgpack:"tgt"`
	Deploy   int          `json:"dep,omitempty" msgpack:"dep"`
	Effects  []EffectSnap `json:"fx,omitempty" msgpack:"fx"`
}

// Snapshot is the full serializable state after one tick. Entities are
// sorted by ID so identical states encode byte-identically.
type Snapshot struct {
	Tick     uint64       `json:"tick" msgpack:"t"`
	Elixir   [2]float64   `json:"elixir" msgpack:"e"`
	Entities []EntitySnap `json:"entities" msgpack:"en"`
	Terminal bool         `json:"terminal" msgpack:"fin"`
	Winner   int8         `json:"winner" msgpack:"w"`
	RNGDraws uint64       `json:"rngDraws" msgpack:"rd"`
}

// Snapshot captures the current state. Dead entities awaiting cleanup are
// excluded; HP is never negative by the entity invariants.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:     g.tick,
		Elixir:   [2]float64{g.players[0].Elixir, g.players[1].Elixir},
		Terminal: g.terminal,
		Winner:   g.winner,
		RNGDraws: g.rng.Draws(),
	}
	for _, e := range g.store.Ordered() {
		if e.Dead {
			continue
		}
		es := EntitySnap{
			ID:       uint32(e.ID),
			Side:     int8(e.Side),
			Kind:     uint8(e.Kind),
			Name:     e.Name,
			X:        e.X,
			Y:        e.Y,
			Radius:   e.Radius,
			Mass:     e.Mass,
			HP:       e.HP,
			MaxHP:    e.MaxHP,
			Shield:   e.Shield,
			Damage:   e.Damage,
			Speed:    e.Speed,
			Range:    e.Range,
			Sight:    e.Sight,
			Splash:   e.Splash,
			Cooldown: e.Cooldown,
			Retarget: e.RetargetCD,
			Load:     e.LoadTicks,
			Domain:   uint8(e.Domain),
			Filter:   uint8(e.Filter),
			Target:   uint32(e.TargetID),
			Deploy:   e.DeployTicks,
		}
		for i := range e.Effects {
			ef := &e.Effects[i]
			es.Effects = append(es.Effects, EffectSnap{
				Kind:      uint8(ef.Kind),
				Remaining: ef.Remaining,
				Factor:    ef.Factor,
				Amount:    ef.Amount,
			})
		}
		snap.Entities = append(snap.Entities, es)
	}
	return snap
}
