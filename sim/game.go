package sim

import "errors"

// TicksPerSecond is the fixed simulation rate.
const TicksPerSecond = 60

// ErrMatchOver is returned by Step once a terminal state was reached.
var ErrMatchOver = errors.New("match is over")

// Config gathers the tunables of one match. Zero values are filled from
// DefaultConfig.
type Config struct {
	MatchTicks    int     // tick limit before the match ends
	ElixirInitial float64 // starting elixir per side
	ElixirMax     float64
	ElixirPerTick float64
}

// DefaultConfig returns the standard match settings: 3 minutes at 60 ticks
// per second, elixir 5 start / 10 cap / 1 per second.
func DefaultConfig() Config {
	return Config{
		MatchTicks:    180 * TicksPerSecond,
		ElixirInitial: 5,
		ElixirMax:     10,
		ElixirPerTick: 1.0 / TicksPerSecond,
	}
}

// NoWinner marks a draw or a still-running match in snapshots.
const NoWinner = int8(-1)

// Game is one match instance: the entity store, both sides' economies and
// the tick scheduler. It owns all mutable state; external callers submit
// actions between ticks and read snapshots after ticks. A Game is not safe
// for concurrent use.
type Game struct {
	cfg      Config
	tick     uint64
	rng      *RNG
	store    *Store
	catalog  *Catalog
	players  [2]*PlayerState
	towers   [2]int // towers spawned per side at match start
	terminal bool
	winner   int8
}

// NewGame creates a match with the default catalog and config.
func NewGame(seed uint64) *Game {
	return NewGameWith(seed, DefaultConfig(), DefaultCatalog())
}

// NewGameWith creates a match from explicit config and catalog. The six
// towers are spawned immediately with IDs 1..6.
func NewGameWith(seed uint64, cfg Config, catalog *Catalog) *Game {
	def := DefaultConfig()
	if cfg.MatchTicks == 0 {
		cfg.MatchTicks = def.MatchTicks
	}
	if cfg.ElixirInitial == 0 {
		cfg.ElixirInitial = def.ElixirInitial
	}
	if cfg.ElixirMax == 0 {
		cfg.ElixirMax = def.ElixirMax
	}
	if cfg.ElixirPerTick == 0 {
		cfg.ElixirPerTick = def.ElixirPerTick
	}

	g := &Game{
		cfg:     cfg,
		rng:     NewRNG(seed),
		store:   NewStore(),
		catalog: catalog,
		winner:  NoWinner,
	}
	g.players[0] = NewPlayerState(0, cfg.ElixirInitial)
	g.players[1] = NewPlayerState(1, cfg.ElixirInitial)
	g.spawnTowers()
	return g
}

// spawnTowers places the king and both princess towers for each side.
func (g *Game) spawnTowers() {
	king := g.catalog.Units["King Tower"]
	princess := g.catalog.Units["Princess Tower"]
	if king == nil || princess == nil {
		return
	}
	for side := Side(0); side <= 1; side++ {
		kx, ky := KingPosition(side)
		g.store.Add(king.Instantiate(side, kx, ky))
		for _, pos := range PrincessPositions(side) {
			g.store.Add(princess.Instantiate(side, pos[0], pos[1]))
		}
		g.towers[side] = 3
	}
}

// SetDeck installs a side's deck cycle. Must be called before the first
// tick to keep replays aligned.
func (g *Game) SetDeck(side Side, deck []string) error {
	for _, name := range deck {
		if _, ok := g.catalog.Cards[name]; !ok {
			return &IllegalActionError{Action: Action{Side: side, Card: name}, Reason: "unknown card in deck"}
		}
	}
	return g.players[side].SetDeck(deck, g.rng)
}

// Tick returns the current tick counter.
func (g *Game) Tick() uint64 {
	return g.tick
}

// Over reports whether a terminal state was reached.
func (g *Game) Over() bool {
	return g.terminal
}

// Winner returns the winning side, or NoWinner.
func (g *Game) Winner() int8 {
	return g.winner
}

// Elixir returns a side's current elixir.
func (g *Game) Elixir(side Side) float64 {
	return g.players[side].Elixir
}

// Hand returns a side's current hand, nil when no deck is configured.
func (g *Game) Hand(side Side) []string {
	if len(g.players[side].Deck) == 0 {
		return nil
	}
	return g.players[side].HandCards()
}

// Rejection pairs an action with the reason it was refused.
type Rejection struct {
	Action Action
	Err    error
}

// Step advances the simulation by exactly one tick: elixir accrual, action
// resolution, status effects, movement, combat, projectiles, cleanup and
// the terminal check, in that fixed order. Rejected actions are reported
// without mutating state. Once the match is over, Step is a no-op
// returning ErrMatchOver.
func (g *Game) Step(actions []Action) ([]Rejection, error) {
	if g.terminal {
		return nil, ErrMatchOver
	}

	g.accrueElixir()

	var rejected []Rejection
	for _, a := range actions {
		if err := g.applyAction(a); err != nil {
			rejected = append(rejected, Rejection{Action: a, Err: err})
		}
	}

	g.tickTimers()
	g.stepEffects()
	g.stepMovement()
	g.stepCombat()
	g.stepProjectiles()
	g.cleanup()

	g.tick++
	g.checkTerminal()
	return rejected, nil
}

// stepEffects decrements all status effects and spawns any units due from
// spawner intervals at the parent's position.
func (g *Game) stepEffects() {
	for _, e := range g.store.Ordered() {
		if e.Dead {
			continue
		}
		spawns := tickEntityEffects(e)
		for i, name := range spawns {
			tmpl, ok := g.catalog.Units[name]
			if !ok {
				continue
			}
			off := spawnOffsets(len(spawns))[i%len(spawns)]
			g.store.Add(tmpl.Instantiate(e.Side, e.X+off[0], e.Y+off[1]))
		}
	}
}

// cleanup removes entities that died this tick, firing split-on-death
// first and clearing any weak references to the removed IDs. Every system
// already observed the entity as dead during this tick.
func (g *Game) cleanup() {
	var removed []EntityID
	for _, e := range g.store.Ordered() {
		if !e.Dead {
			continue
		}
		if e.Kind != KindProjectile {
			g.handleDeath(e)
		}
		removed = append(removed, e.ID)
	}
	if len(removed) == 0 {
		return
	}
	gone := make(map[EntityID]bool, len(removed))
	for _, id := range removed {
		g.store.Remove(id)
		gone[id] = true
	}
	for _, e := range g.store.Ordered() {
		if gone[e.TargetID] {
			e.ClearTarget()
			e.RetargetCD = Ticks(RetargetDelaySec)
		}
	}
}

// checkTerminal evaluates the win conditions: the match ends when a tower
// falls or the tick limit is reached.
func (g *Game) checkTerminal() {
	var towers [2]int
	var towerHP [2]float64
	fallen := [2]bool{}
	for _, e := range g.store.Ordered() {
		if e.Kind == KindTower && !e.Dead {
			towers[e.Side]++
			towerHP[e.Side] += e.HP
		}
	}
	for side := 0; side < 2; side++ {
		if towers[side] < g.towers[side] {
			fallen[side] = true
		}
	}

	if fallen[0] || fallen[1] {
		g.terminal = true
		switch {
		case fallen[0] && fallen[1]:
			g.winner = tieBreak(towers, towerHP)
		case fallen[0]:
			g.winner = 1
		default:
			g.winner = 0
		}
		return
	}

	if int(g.tick) >= g.cfg.MatchTicks {
		g.terminal = true
		g.winner = tieBreak(towers, towerHP)
	}
}

// tieBreak decides a winner on simultaneous falls or timeout: more towers
// standing wins, then higher total tower HP; a dead heat is a draw.
func tieBreak(towers [2]int, towerHP [2]float64) int8 {
	if towers[0] != towers[1] {
		if towers[0] > towers[1] {
			return 0
		}
		return 1
	}
	if towerHP[0] != towerHP[1] {
		if towerHP[0] > towerHP[1] {
			return 0
		}
		return 1
	}
	return NoWinner
}
