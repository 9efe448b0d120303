package sim

import (
	"errors"
	"math"
	"testing"
)

func TestElixirAccrualAndCap(t *testing.T) {
	g := newBareGame(1)
	if g.Elixir(0) != 5 {
		t.Fatalf("initial elixir = %f, want 5", g.Elixir(0))
	}

	stepN(t, g, 60)
	if math.Abs(g.Elixir(0)-6) > 1e-9 {
		t.Errorf("elixir after 1s = %f, want 6", g.Elixir(0))
	}

	stepN(t, g, 600)
	if g.Elixir(0) != 10 || g.Elixir(1) != 10 {
		t.Errorf("elixir should cap at 10, got %f / %f", g.Elixir(0), g.Elixir(1))
	}
}

func TestDeployDebitsElixirAndSpawns(t *testing.T) {
	g := newBareGame(1)
	rej, err := g.Step([]Action{{Side: 0, Card: "Knight", X: 8, Y: 8.5}})
	if err != nil {
		t.Fatal(err)
	}
	if len(rej) != 0 {
		t.Fatalf("legal deploy rejected: %v", rej[0].Err)
	}

	want := 5 + 1.0/TicksPerSecond - 3
	if math.Abs(g.Elixir(0)-want) > 1e-9 {
		t.Errorf("elixir = %f, want %f", g.Elixir(0), want)
	}
	if g.store.Len() != 1 {
		t.Errorf("store has %d entities, want 1 knight", g.store.Len())
	}
	knight := g.store.Get(1)
	if knight.DeployTicks <= 0 {
		t.Error("deployed unit should start with a deploy delay")
	}
}

func TestDeployRejectedWithoutElixir(t *testing.T) {
	g := newBareGame(1)
	rej, err := g.Step([]Action{{Side: 0, Card: "Golem", X: 8, Y: 8.5}})
	if err != nil {
		t.Fatal(err)
	}
	if len(rej) != 1 {
		t.Fatal("8-cost card with 5 elixir must be rejected")
	}
	var illegalErr *IllegalActionError
	if !errors.As(rej[0].Err, &illegalErr) {
		t.Fatalf("rejection error type %T", rej[0].Err)
	}
	if g.store.Len() != 0 {
		t.Error("rejected deploy must not spawn")
	}
	if math.Abs(g.Elixir(0)-(5+1.0/TicksPerSecond)) > 1e-9 {
		t.Error("rejected deploy must not spend elixir")
	}
}

func TestDeployRejectedOnBadTiles(t *testing.T) {
	cases := []struct {
		name   string
		action Action
		ok     bool
	}{
		{"out of bounds", Action{Side: 0, Card: "Knight", X: -1, Y: 5}, false},
		{"ground on river", Action{Side: 0, Card: "Knight", X: 15.5, Y: 8.5}, false},
		{"river crosser on river", Action{Side: 0, Card: "Hog Rider", X: 15.5, Y: 8.5}, true},
		{"ground on bridge", Action{Side: 0, Card: "Knight", X: 15.5, Y: 4.5}, true},
		{"spell over river", Action{Side: 0, Card: "Zap", X: 15.5, Y: 8.5}, true},
		{"spell out of bounds", Action{Side: 0, Card: "Zap", X: -1, Y: 5}, false},
		{"unknown card", Action{Side: 0, Card: "Pekka", X: 8, Y: 8.5}, false},
		{"invalid side", Action{Side: 2, Card: "Knight", X: 8, Y: 8.5}, false},
	}
	for _, c := range cases {
		g := newBareGame(1)
		rej, err := g.Step([]Action{c.action})
		if err != nil {
			t.Fatal(err)
		}
		if got := len(rej) == 0; got != c.ok {
			t.Errorf("%s: accepted=%v, want %v", c.name, got, c.ok)
		}
	}
}

func TestDeckCycle(t *testing.T) {
	g := newBareGame(7)
	deck := []string{"Knight", "Archers", "Giant", "Minions", "Witch", "Hog Rider", "Fireball", "Zap"}
	if err := g.SetDeck(0, deck); err != nil {
		t.Fatal(err)
	}

	hand := g.Hand(0)
	if len(hand) != HandSize {
		t.Fatalf("hand size = %d, want %d", len(hand), HandSize)
	}

	// Play an affordable card from the hand; it must leave the hand and a
	// new card must cycle in.
	var played string
	for _, name := range hand {
		if g.catalog.Cards[name].Cost <= 5 {
			played = name
			break
		}
	}
	if played == "" {
		t.Fatal("no affordable card in opening hand")
	}
	rej, err := g.Step([]Action{{Side: 0, Card: played, X: 8, Y: 8.5}})
	if err != nil || len(rej) != 0 {
		t.Fatalf("deploy failed: %v %v", err, rej)
	}

	after := g.Hand(0)
	if len(after) != HandSize {
		t.Fatalf("hand size after play = %d", len(after))
	}
	for _, name := range after {
		if name == played {
			t.Errorf("played card %q still in hand", played)
		}
	}
}

func TestCardNotInHandRejected(t *testing.T) {
	g := newBareGame(7)
	deck := []string{"Knight", "Archers", "Giant", "Minions", "Witch", "Hog Rider", "Fireball", "Zap"}
	if err := g.SetDeck(0, deck); err != nil {
		t.Fatal(err)
	}

	hand := map[string]bool{}
	for _, name := range g.Hand(0) {
		hand[name] = true
	}
	var outside string
	for _, name := range deck {
		if !hand[name] {
			outside = name
			break
		}
	}
	rej, err := g.Step([]Action{{Side: 0, Card: outside, X: 8, Y: 8.5}})
	if err != nil {
		t.Fatal(err)
	}
	if len(rej) != 1 {
		t.Errorf("card %q outside the hand should be rejected", outside)
	}
}

func TestSetDeckValidation(t *testing.T) {
	g := newBareGame(7)
	if err := g.SetDeck(0, []string{"Knight"}); err == nil {
		t.Error("short deck should be rejected")
	}
	if err := g.SetDeck(0, []string{"Knight", "Archers", "Giant", "Minions", "Witch", "Hog Rider", "Fireball", "Nonexistent"}); err == nil {
		t.Error("deck with an unknown card should be rejected")
	}
}

func TestDeckShuffleDeterministic(t *testing.T) {
	deck := []string{"Knight", "Archers", "Giant", "Minions", "Witch", "Hog Rider", "Fireball", "Zap"}
	g1 := newBareGame(42)
	g2 := newBareGame(42)
	if err := g1.SetDeck(0, deck); err != nil {
		t.Fatal(err)
	}
	if err := g2.SetDeck(0, deck); err != nil {
		t.Fatal(err)
	}
	h1, h2 := g1.Hand(0), g2.Hand(0)
	for i := range h1 {
		if h1[i] != h2[i] {
			t.Fatalf("same seed produced different hands: %v vs %v", h1, h2)
		}
	}
}

func TestFireballDamageAndTowerPenalty(t *testing.T) {
	g := newBareGame(1)
	troop := dummyTarget(g, 1, 20, 8.5)
	troop.HP, troop.MaxHP = 1000, 1000
	tower := &Entity{
		Side: 1, Kind: KindTower, Name: "tower",
		X: 21.5, Y: 8.5, Radius: 1, HP: 1400, MaxHP: 1400, TowerPenalty: 1,
	}
	g.store.Add(tower)
	friendly := dummyTarget(g, 0, 20.5, 8.5)
	friendly.HP, friendly.MaxHP = 1000, 1000

	rej, err := g.Step([]Action{{Side: 0, Card: "Fireball", X: 20, Y: 8.5}})
	if err != nil || len(rej) != 0 {
		t.Fatalf("fireball failed: %v %v", err, rej)
	}

	if troop.HP != 1000-572 {
		t.Errorf("troop hp = %f, want %f", troop.HP, 1000-572.0)
	}
	if want := 1400 - 572*0.35; math.Abs(tower.HP-want) > 1e-9 {
		t.Errorf("tower hp = %f, want %f (penalty applied)", tower.HP, want)
	}
	if friendly.HP != 1000 {
		t.Errorf("friendly hp = %f, spells never hit own units", friendly.HP)
	}
}

func TestRageBoostsOwnUnits(t *testing.T) {
	g := newBareGame(1)
	own := dummyTarget(g, 0, 10, 8.5)
	enemy := dummyTarget(g, 1, 11, 8.5)

	rej, err := g.Step([]Action{{Side: 0, Card: "Rage", X: 10, Y: 8.5}})
	if err != nil || len(rej) != 0 {
		t.Fatalf("rage failed: %v %v", err, rej)
	}
	if got := SpeedMultiplier(own); got != 1.35 {
		t.Errorf("own unit multiplier = %f, want 1.35", got)
	}
	if got := SpeedMultiplier(enemy); got != 1.0 {
		t.Errorf("enemy multiplier = %f, friendly spell must not affect enemies", got)
	}
}
