package main

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"arena-battle-server/sim"
)

const (
	TickRate       = sim.TicksPerSecond // simulation ticks per second
	BroadcastRate  = 30                 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const maxQueuedActions = 32

// Broadcaster is the client surface the battle loop needs.
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Battle drives one match: it owns the simulation, queues incoming deploys
// between ticks and broadcasts state frames. All simulation access happens
// under the mutex; the sim itself is single-threaded by design.
type Battle struct {
	mu      sync.Mutex
	sim     *sim.Game
	seed    uint64
	seats   [2]Broadcaster
	names   [2]string
	authIDs [2]int64
	seated  [2]bool

	pending []sim.Action
	replay  Replay

	running   bool
	started   bool
	finished  bool
	stop      chan struct{}
	sessionID string
	startedAt time.Time

	db        *DB
	analytics *Analytics
}

// NewBattle creates a battle with a random seed.
func NewBattle(sessionID string, db *DB, analytics *Analytics) *Battle {
	seed := RandomSeed()
	return &Battle{
		sim:       sim.NewGame(seed),
		seed:      seed,
		stop:      make(chan struct{}),
		sessionID: sessionID,
		db:        db,
		analytics: analytics,
		replay:    Replay{Seed: seed},
	}
}

// AddPlayer seats a player on the first free side. Returns the side taken,
// or -1 when the battle is full.
func (b *Battle) AddPlayer(name string, deck []string, client Broadcaster, authID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	side := -1
	for s := 0; s < 2; s++ {
		if !b.seated[s] {
			side = s
			break
		}
	}
	if side < 0 || b.finished {
		return -1
	}

	if len(deck) > 0 {
		if err := b.sim.SetDeck(sim.Side(side), deck); err != nil {
			return -1
		}
		b.replay.Decks[side] = append([]string(nil), deck...)
	}

	b.seated[side] = true
	b.seats[side] = client
	b.names[side] = name
	b.authIDs[side] = authID

	if b.seated[0] && b.seated[1] && !b.started {
		b.started = true
		b.startedAt = time.Now()
		if b.analytics != nil {
			b.analytics.Track(EvtMatchStart, 0, b.sessionID, "")
		}
		go b.Run()
	}
	return side
}

// RemovePlayer frees a seat. Leaving a started match forfeits it.
func (b *Battle) RemovePlayer(side int) {
	b.mu.Lock()
	if side < 0 || side > 1 || !b.seated[side] {
		b.mu.Unlock()
		return
	}
	b.seated[side] = false
	b.seats[side] = nil
	forfeit := b.started && !b.finished
	b.mu.Unlock()

	if forfeit {
		b.finish(int8(1 - side))
	}
}

// PlayerCount returns the number of occupied seats.
func (b *Battle) PlayerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, s := range b.seated {
		if s {
			n++
		}
	}
	return n
}

// Started reports whether the match loop is running or has run.
func (b *Battle) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

// QueueDeploy enqueues a deploy request for the next tick.
func (b *Battle) QueueDeploy(side int, msg DeployMsg) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if side < 0 || side > 1 || b.finished || len(b.pending) >= maxQueuedActions {
		return
	}
	b.pending = append(b.pending, sim.Action{
		Side: sim.Side(side),
		Card: msg.Card,
		X:    Clamp(msg.X, 0, sim.ArenaWidth),
		Y:    Clamp(msg.Y, 0, sim.ArenaHeight),
	})
}

// SendHand pushes the current hand and elixir to one seat.
func (b *Battle) SendHand(side int) {
	b.mu.Lock()
	client := b.seats[side]
	msg := HandMsg{Cards: b.sim.Hand(sim.Side(side)), Elixir: b.sim.Elixir(sim.Side(side))}
	b.mu.Unlock()
	if client != nil {
		client.SendJSON(Envelope{T: MsgHand, Data: msg})
	}
}

// Run is the fixed-rate match loop. It exits when the match reaches a
// terminal state or the battle is stopped.
func (b *Battle) Run() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if over := b.step(); over {
				b.finish(b.sim.Winner())
				return
			}
		case <-b.stop:
			return
		}
	}
}

// step advances the simulation one tick and broadcasts state.
func (b *Battle) step() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	actions := b.pending
	b.pending = nil
	tick := b.sim.Tick()

	rejected, err := b.sim.Step(actions)
	if err != nil {
		return true
	}

	// Everything that was not rejected goes into the replay record.
	if len(actions) > 0 {
		bad := make(map[int]bool, len(rejected))
		for _, r := range rejected {
			for i, a := range actions {
				if a == r.Action && !bad[i] {
					bad[i] = true
					break
				}
			}
		}
		var accepted []sim.Action
		for i, a := range actions {
			if !bad[i] {
				accepted = append(accepted, a)
			}
		}
		b.replay.Record(tick, accepted)

		for _, r := range rejected {
			if c := b.seats[r.Action.Side]; c != nil {
				c.SendJSON(Envelope{T: MsgRejected, Data: RejectedMsg{
					Card:   r.Action.Card,
					Reason: r.Err.Error(),
				}})
			}
		}
		for s := 0; s < 2; s++ {
			if c := b.seats[s]; c != nil {
				c.SendJSON(Envelope{T: MsgHand, Data: HandMsg{
					Cards:  b.sim.Hand(sim.Side(s)),
					Elixir: b.sim.Elixir(sim.Side(s)),
				}})
			}
		}
	}

	if b.sim.Tick()%BroadcastEvery == 0 || b.sim.Over() {
		b.broadcastState()
	}
	return b.sim.Over()
}

// broadcastState sends the msgpack snapshot to both seats. Called with the
// mutex held.
func (b *Battle) broadcastState() {
	frame, err := msgpack.Marshal(b.sim.Snapshot())
	if err != nil {
		log.Printf("snapshot marshal error: %v", err)
		return
	}
	for _, c := range b.seats {
		if c != nil {
			c.SendBinary(frame)
		}
	}
}

// finish persists the result exactly once and notifies both seats.
func (b *Battle) finish(winner int8) {
	b.mu.Lock()
	if b.finished {
		b.mu.Unlock()
		return
	}
	b.finished = true
	snap := b.sim.Snapshot()
	duration := time.Since(b.startedAt).Seconds()
	crowns := crownsFromSnapshot(snap)
	seats := b.seats
	b.mu.Unlock()

	for s := 0; s < 2; s++ {
		if c := seats[s]; c != nil {
			c.SendJSON(Envelope{T: MsgEnded, Data: EndedMsg{
				Winner: int(winner),
				Tick:   int64(snap.Tick),
				Crowns: crowns,
			}})
		}
	}

	if b.db != nil {
		matchID, err := b.db.RecordMatch(b.seed, int(winner), duration, int64(snap.Tick), crowns)
		if err != nil {
			log.Printf("record match error: %v", err)
			return
		}
		for s := 0; s < 2; s++ {
			if b.authIDs[s] == 0 {
				continue
			}
			won := int(winner) == s
			draw := winner == sim.NoWinner
			if err := b.db.RecordMatchPlayer(matchID, b.authIDs[s], s, crowns[s], won); err != nil {
				log.Printf("record match player error: %v", err)
			}
			if _, _, err := b.db.UpdateStatsAfterMatch(b.authIDs[s], won, draw, crowns[s], duration); err != nil {
				log.Printf("update stats error: %v", err)
			}
		}
		if data, err := b.replay.Encode(); err == nil {
			if err := b.db.SaveReplay(matchID, data); err != nil {
				log.Printf("save replay error: %v", err)
			}
		}
		if b.analytics != nil {
			b.analytics.Track(EvtMatchEnd, 0, b.sessionID,
				fmt.Sprintf(`{"winner":%d,"duration":%.1f,"ticks":%d}`, winner, duration, snap.Tick))
		}
	}
}

// Stop terminates the match loop without recording a result.
func (b *Battle) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		b.running = false
		close(b.stop)
	}
}

// crownsFromSnapshot counts destroyed enemy towers per side.
func crownsFromSnapshot(snap sim.Snapshot) [2]int {
	alive := [2]int{}
	for _, e := range snap.Entities {
		if sim.Kind(e.Kind) == sim.KindTower {
			alive[e.Side]++
		}
	}
	return [2]int{3 - alive[1], 3 - alive[0]}
}
