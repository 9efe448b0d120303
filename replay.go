package main

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"arena-battle-server/sim"
)

// TimedAction is one accepted action and the tick it was applied on.
type TimedAction struct {
	Tick   uint64     `msgpack:"t"`
	Action sim.Action `msgpack:"a"`
}

// Replay is the full deterministic record of one match: the seed, both
// decks and every accepted action. Re-running it reproduces the match
// tick for tick.
type Replay struct {
	Seed    uint64        `msgpack:"seed"`
	Decks   [2][]string   `msgpack:"decks"`
	Actions []TimedAction `msgpack:"actions"`
}

// Record appends the actions accepted on a tick.
func (r *Replay) Record(tick uint64, actions []sim.Action) {
	for _, a := range actions {
		r.Actions = append(r.Actions, TimedAction{Tick: tick, Action: a})
	}
}

// Encode serializes the replay for storage.
func (r *Replay) Encode() ([]byte, error) {
	return msgpack.Marshal(r)
}

// DecodeReplay parses a stored replay blob.
func DecodeReplay(data []byte) (*Replay, error) {
	var r Replay
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	return &r, nil
}

// Run re-simulates the match and returns the final snapshot. The replayed
// game must accept every recorded action; a rejection means the record is
// corrupt or was produced by a different build.
func (r *Replay) Run() (sim.Snapshot, error) {
	g := sim.NewGame(r.Seed)
	for side := 0; side < 2; side++ {
		if len(r.Decks[side]) == 0 {
			continue
		}
		if err := g.SetDeck(sim.Side(side), r.Decks[side]); err != nil {
			return sim.Snapshot{}, fmt.Errorf("replay deck: %w", err)
		}
	}

	next := 0
	for !g.Over() {
		var actions []sim.Action
		for next < len(r.Actions) && r.Actions[next].Tick == g.Tick() {
			actions = append(actions, r.Actions[next].Action)
			next++
		}
		rejected, err := g.Step(actions)
		if err != nil {
			return sim.Snapshot{}, err
		}
		if len(rejected) > 0 {
			return sim.Snapshot{}, fmt.Errorf("replay diverged at tick %d: %v", g.Tick(), rejected[0].Err)
		}
	}
	return g.Snapshot(), nil
}
