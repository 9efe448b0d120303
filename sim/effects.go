package sim

// EffectKind identifies a status effect variant.
type EffectKind uint8

const (
	EffectSlow EffectKind = iota
	EffectStun
	EffectSnare
	EffectRage
	EffectSpawner
	EffectLifetime
	EffectShield
	EffectSplit
)

func (k EffectKind) String() string {
	switch k {
	case EffectSlow:
		return "slow"
	case EffectStun:
		return "stun"
	case EffectSnare:
		return "snare"
	case EffectRage:
		return "rage"
	case EffectSpawner:
		return "spawner"
	case EffectLifetime:
		return "lifetime"
	case EffectShield:
		return "shield"
	case EffectSplit:
		return "split"
	}
	return "unknown"
}

// Speed multiplier clamp range. Stacked slows and rages multiply, but the
// combined multiplier never leaves [0, 4].
const (
	minSpeedMult = 0.0
	maxSpeedMult = 4.0
)

// EffectSpec is the immutable description of an effect in a template
// (on-hit effects, spell effects, special behaviors).
type EffectSpec struct {
	Kind      EffectKind
	Duration  int     // ticks; 0 for Split
	Factor    float64 // slow < 1, rage > 1
	Amount    float64 // shield points
	Interval  int     // spawner ticks between spawns
	MaxSpawns int     // spawner budget, 0 = unlimited
	Templates []string
}

// Effect is a live instance attached to an entity.
type Effect struct {
	Kind      EffectKind
	Remaining int
	Factor    float64
	Amount    float64

	// Spawner bookkeeping.
	Interval  int
	Countdown int
	MaxSpawns int
	Spawned   int

	Templates []string
}

// ApplyEffect attaches an effect instance per the stacking rules: timed
// effects of one kind keep the maximum remaining duration instead of adding
// durations, and magnitude effects keep the strongest magnitude. Spawner and
// Split instances always stack as independent instances.
func ApplyEffect(e *Entity, spec EffectSpec) {
	switch spec.Kind {
	case EffectSpawner:
		e.Effects = append(e.Effects, Effect{
			Kind:      EffectSpawner,
			Interval:  spec.Interval,
			Countdown: spec.Interval,
			MaxSpawns: spec.MaxSpawns,
			Templates: spec.Templates,
		})
		return
	case EffectSplit:
		e.Effects = append(e.Effects, Effect{Kind: EffectSplit, Templates: spec.Templates})
		return
	case EffectShield:
		e.Shield += spec.Amount
		if spec.Duration > 0 {
			e.Effects = append(e.Effects, Effect{Kind: EffectShield, Remaining: spec.Duration, Amount: spec.Amount})
		}
		return
	}

	for i := range e.Effects {
		ef := &e.Effects[i]
		if ef.Kind != spec.Kind {
			continue
		}
		if spec.Duration > ef.Remaining {
			ef.Remaining = spec.Duration
		}
		switch spec.Kind {
		case EffectSlow:
			if spec.Factor < ef.Factor {
				ef.Factor = spec.Factor
			}
		case EffectRage:
			if spec.Factor > ef.Factor {
				ef.Factor = spec.Factor
			}
		}
		return
	}

	e.Effects = append(e.Effects, Effect{
		Kind:      spec.Kind,
		Remaining: spec.Duration,
		Factor:    spec.Factor,
		Amount:    spec.Amount,
	})
}

// Immobilized reports whether any active stun or snare blocks movement.
func Immobilized(e *Entity) bool {
	for i := range e.Effects {
		k := e.Effects[i].Kind
		if k == EffectStun || k == EffectSnare {
			return true
		}
	}
	return false
}

// Stunned reports whether a stun blocks attacking. Snares only bind
// movement.
func Stunned(e *Entity) bool {
	for i := range e.Effects {
		if e.Effects[i].Kind == EffectStun {
			return true
		}
	}
	return false
}

// SpeedMultiplier returns the combined slow/rage multiplier, clamped.
func SpeedMultiplier(e *Entity) float64 {
	mult := 1.0
	for i := range e.Effects {
		ef := &e.Effects[i]
		if ef.Kind == EffectSlow || ef.Kind == EffectRage {
			mult *= ef.Factor
		}
	}
	if mult < minSpeedMult {
		mult = minSpeedMult
	}
	if mult > maxSpeedMult {
		mult = maxSpeedMult
	}
	return mult
}

// tickEntityEffects decrements every timed effect on one entity, firing
// expiry behavior and spawner intervals. Spawn requests are returned rather
// than applied so the caller controls entity creation order. Split effects
// are untouched here; they fire on death.
func tickEntityEffects(e *Entity) (spawns []string) {
	kept := e.Effects[:0]
	for i := range e.Effects {
		ef := e.Effects[i]
		switch ef.Kind {
		case EffectSplit:
			kept = append(kept, ef)
			continue
		case EffectSpawner:
			if ef.MaxSpawns > 0 && ef.Spawned >= ef.MaxSpawns {
				continue // exhausted, discard
			}
			ef.Countdown--
			if ef.Countdown <= 0 {
				spawns = append(spawns, ef.Templates...)
				ef.Spawned++
				ef.Countdown = ef.Interval
			}
			kept = append(kept, ef)
			continue
		}

		ef.Remaining--
		if ef.Remaining > 0 {
			kept = append(kept, ef)
			continue
		}

		// On-expire hooks run before the instance is removed.
		switch ef.Kind {
		case EffectLifetime:
			e.HP = 0
			e.Dead = true
		case EffectShield:
			if e.Shield > ef.Amount {
				e.Shield -= ef.Amount
			} else {
				e.Shield = 0
			}
		}
	}
	e.Effects = kept
	return spawns
}

// splitTemplates returns the split-on-death template list, consuming the
// effect so it fires exactly once.
func splitTemplates(e *Entity) []string {
	var out []string
	kept := e.Effects[:0]
	for i := range e.Effects {
		ef := e.Effects[i]
		if ef.Kind == EffectSplit {
			out = append(out, ef.Templates...)
			continue
		}
		kept = append(kept, ef)
	}
	e.Effects = kept
	return out
}
