package sim

import "fmt"

// Deck and hand sizes when a side plays with a deck cycle.
const (
	DeckSize = 8
	HandSize = 4
)

// PlayerState is the per-side economy and deck state.
type PlayerState struct {
	Side   Side
	Elixir float64

	// Optional deck cycle. An empty deck means every catalog card is
	// always playable (scenario and test setups).
	Deck     []string
	Hand     []int // indices into Deck
	NextCard int   // next deck index to cycle into the hand
}

// NewPlayerState creates a side's state with the configured initial elixir.
func NewPlayerState(side Side, initial float64) *PlayerState {
	return &PlayerState{Side: side, Elixir: initial}
}

// SetDeck installs an 8-card deck, shuffles it deterministically with the
// match RNG and deals the first four cards into the hand.
func (p *PlayerState) SetDeck(deck []string, rng *RNG) error {
	if len(deck) != DeckSize {
		return fmt.Errorf("deck must contain exactly %d cards, got %d", DeckSize, len(deck))
	}
	p.Deck = append([]string(nil), deck...)
	for i := len(p.Deck) - 1; i >= 1; i-- {
		j := rng.IntRange(0, i+1)
		p.Deck[i], p.Deck[j] = p.Deck[j], p.Deck[i]
	}
	p.Hand = []int{0, 1, 2, 3}
	p.NextCard = HandSize
	return nil
}

// HandCards returns the card names currently in hand.
func (p *PlayerState) HandCards() []string {
	out := make([]string, 0, len(p.Hand))
	for _, idx := range p.Hand {
		out = append(out, p.Deck[idx])
	}
	return out
}

// handSlot returns the hand slot holding the named card, or -1.
func (p *PlayerState) handSlot(card string) int {
	for slot, idx := range p.Hand {
		if p.Deck[idx] == card {
			return slot
		}
	}
	return -1
}

// cycleCard replaces a played hand slot with the next card in the cycle.
func (p *PlayerState) cycleCard(slot int) {
	p.Hand[slot] = p.NextCard
	p.NextCard = (p.NextCard + 1) % DeckSize
}

// AddElixir accrues elixir, capped at max.
func (p *PlayerState) AddElixir(amount, max float64) {
	p.Elixir += amount
	if p.Elixir > max {
		p.Elixir = max
	}
}

// SpendElixir debits the cost if affordable and reports success.
func (p *PlayerState) SpendElixir(cost float64) bool {
	if p.Elixir < cost {
		return false
	}
	p.Elixir -= cost
	return true
}

// Action is a player-submitted request for one tick: deploy a card at a
// position. Actions are produced by external callers; the simulation only
// validates and applies them.
type Action struct {
	Side Side    `json:"side" msgpack:"s"`
	Card string  `json:"card" msgpack:"c"`
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
}

// IllegalActionError reports a rejected action. The match state is
// unchanged; rejection is never fatal.
type IllegalActionError struct {
	Action Action
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action %s@(%.1f,%.1f): %s", e.Action.Card, e.Action.X, e.Action.Y, e.Reason)
}

// illegal wraps a rejection reason for an action.
func illegal(a Action, format string, args ...interface{}) error {
	return &IllegalActionError{Action: a, Reason: fmt.Sprintf(format, args...)}
}

// applyAction validates and applies one action. On rejection the returned
// error is an *IllegalActionError and no state was mutated.
func (g *Game) applyAction(a Action) error {
	if a.Side != 0 && a.Side != 1 {
		return illegal(a, "invalid side %d", a.Side)
	}
	card, ok := g.catalog.Cards[a.Card]
	if !ok {
		return illegal(a, "unknown card")
	}

	player := g.players[a.Side]
	slot := -1
	if len(player.Deck) > 0 {
		if slot = player.handSlot(a.Card); slot < 0 {
			return illegal(a, "card not in hand")
		}
	}

	if card.Type != CardSpell {
		unit, ok := g.catalog.Units[card.Unit]
		if !ok {
			return illegal(a, "card references missing template %q", card.Unit)
		}
		class := ClassifyAt(a.X, a.Y)
		if !Passable(class, unit.Domain, unit.CrossesRiver) {
			return illegal(a, "target tile %s is not passable", class)
		}
	} else if ClassifyAt(a.X, a.Y) == TileBanned {
		return illegal(a, "target tile is banned")
	}

	if player.Elixir < card.Cost {
		return illegal(a, "not enough elixir: need %.1f, have %.1f", card.Cost, player.Elixir)
	}

	// Legal: debit, cycle, resolve.
	player.SpendElixir(card.Cost)
	if slot >= 0 {
		player.cycleCard(slot)
	}

	if card.Type == CardSpell {
		g.resolveSpell(a.Side, card.Spell, a.X, a.Y)
		return nil
	}

	unit := g.catalog.Units[card.Unit]
	for i := 0; i < card.Count; i++ {
		off := [2]float64{0, 0}
		if i < len(card.Offsets) {
			off = card.Offsets[i]
		}
		e := unit.Instantiate(a.Side, a.X+off[0], a.Y+off[1])
		e.DeployTicks = Ticks(DeployTimeSec)
		g.store.Add(e)
	}
	return nil
}

// resolveSpell applies an instant spell at the cast position: area damage
// to enemies (with the tower penalty) and the spell's effect to enemies, or
// to own units for friendly spells like Rage.
func (g *Game) resolveSpell(side Side, spell *SpellTemplate, x, y float64) {
	for _, e := range g.store.Ordered() {
		if e.Dead || e.Kind == KindProjectile {
			continue
		}
		if dist(x, y, e.X, e.Y) > spell.Radius+e.Radius {
			continue
		}
		if spell.Friendly {
			if e.Side == side && spell.Effect != nil {
				ApplyEffect(e, *spell.Effect)
			}
			continue
		}
		if e.Side == side {
			continue
		}
		if spell.Damage > 0 {
			dmg := spell.Damage
			if e.Kind.IsStructure() && spell.TowerPenalty > 0 {
				dmg *= spell.TowerPenalty
			}
			e.TakeDamage(dmg)
		}
		if spell.Effect != nil && !e.Dead {
			ApplyEffect(e, *spell.Effect)
		}
	}
}

// accrueElixir advances both sides' elixir by one tick of regeneration.
func (g *Game) accrueElixir() {
	for _, p := range g.players {
		p.AddElixir(g.cfg.ElixirPerTick, g.cfg.ElixirMax)
	}
}
