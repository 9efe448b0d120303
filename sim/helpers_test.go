package sim

import "testing"

// newBareGame builds a match without towers so scenario tests control
// every entity on the board.
func newBareGame(seed uint64) *Game {
	catalog := DefaultCatalog()
	delete(catalog.Units, "King Tower")
	delete(catalog.Units, "Princess Tower")
	return NewGameWith(seed, DefaultConfig(), catalog)
}

// addUnit instantiates a catalog template and drops it into the store with
// no deploy delay.
func addUnit(t *testing.T, g *Game, name string, side Side, x, y float64) *Entity {
	t.Helper()
	tmpl, ok := g.catalog.Units[name]
	if !ok {
		t.Fatalf("no template %q", name)
	}
	e := tmpl.Instantiate(side, x, y)
	g.store.Add(e)
	return e
}

// stepN advances n ticks with no actions.
func stepN(t *testing.T, g *Game, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := g.Step(nil); err != nil {
			t.Fatalf("Step failed at tick %d: %v", i, err)
		}
	}
}
