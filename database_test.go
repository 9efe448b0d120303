package main

import (
	"bytes"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPlayerLifecycle(t *testing.T) {
	db := newTestDB(t)

	id, err := db.CreatePlayer("alice", "hash123")
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	if id == 0 {
		t.Fatal("player ID should be non-zero")
	}

	exists, err := db.UsernameExists("alice")
	if err != nil || !exists {
		t.Errorf("UsernameExists = %v, %v", exists, err)
	}
	exists, _ = db.UsernameExists("nobody")
	if exists {
		t.Error("nonexistent username reported as taken")
	}

	p, err := db.GetPlayerByUsername("alice")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.ID != id || p.PassHash != "hash123" {
		t.Errorf("unexpected player row: %+v", p)
	}

	p, err = db.GetPlayerByUsername("nobody")
	if err != nil || p != nil {
		t.Errorf("missing player should be (nil, nil), got (%v, %v)", p, err)
	}

	// Duplicate usernames are rejected by the unique constraint
	if _, err := db.CreatePlayer("alice", "other"); err == nil {
		t.Error("duplicate username should fail")
	}
}

func TestStatsAccumulate(t *testing.T) {
	db := newTestDB(t)
	id, err := db.CreatePlayer("bob", "h")
	if err != nil {
		t.Fatal(err)
	}

	// CreatePlayer seeds an empty stats row
	s, err := db.GetStats(id)
	if err != nil || s == nil {
		t.Fatalf("GetStats: %v, %v", s, err)
	}
	if s.Wins != 0 || s.Crowns != 0 {
		t.Errorf("fresh stats not zero: %+v", s)
	}

	if _, _, err := db.UpdateStatsAfterMatch(id, true, false, 3, 120.5); err != nil {
		t.Fatal(err)
	}
	if _, _, err := db.UpdateStatsAfterMatch(id, false, false, 1, 90); err != nil {
		t.Fatal(err)
	}
	wins, crowns, err := db.UpdateStatsAfterMatch(id, false, true, 0, 180)
	if err != nil {
		t.Fatal(err)
	}
	if wins != 1 || crowns != 4 {
		t.Errorf("totals = %d wins %d crowns, want 1/4", wins, crowns)
	}

	s, _ = db.GetStats(id)
	if s.Wins != 1 || s.Losses != 1 || s.Draws != 1 {
		t.Errorf("record = %d/%d/%d, want 1/1/1", s.Wins, s.Losses, s.Draws)
	}
	if s.Playtime != 120.5+90+180 {
		t.Errorf("playtime = %v", s.Playtime)
	}
}

func TestDeckPersistence(t *testing.T) {
	db := newTestDB(t)
	id, err := db.CreatePlayer("dana", "h")
	if err != nil {
		t.Fatal(err)
	}

	deck, err := db.GetDeck(id)
	if err != nil || deck != nil {
		t.Fatalf("fresh player deck = %v, %v, want nil", deck, err)
	}

	want := []string{"Knight", "Archers", "Fireball", "Giant"}
	if err := db.SaveDeck(id, want); err != nil {
		t.Fatalf("SaveDeck: %v", err)
	}
	deck, err = db.GetDeck(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(deck) != len(want) {
		t.Fatalf("deck length = %d, want %d", len(deck), len(want))
	}
	for i := range want {
		if deck[i] != want[i] {
			t.Errorf("deck[%d] = %q, want %q", i, deck[i], want[i])
		}
	}

	// Saving again overwrites the previous deck.
	if err := db.SaveDeck(id, []string{"Minions"}); err != nil {
		t.Fatal(err)
	}
	deck, _ = db.GetDeck(id)
	if len(deck) != 1 || deck[0] != "Minions" {
		t.Errorf("deck after overwrite = %v", deck)
	}

	// Missing rows surface as a nil deck, not an error.
	deck, err = db.GetDeck(id + 99)
	if err != nil || deck != nil {
		t.Errorf("missing player deck = %v, %v, want nil", deck, err)
	}
}

func TestMatchAndReplayPersistence(t *testing.T) {
	db := newTestDB(t)
	pid, _ := db.CreatePlayer("carol", "h")

	matchID, err := db.RecordMatch(42, 0, 95.2, 5712, [2]int{2, 1})
	if err != nil {
		t.Fatalf("RecordMatch: %v", err)
	}
	if err := db.RecordMatchPlayer(matchID, pid, 0, 2, true); err != nil {
		t.Fatalf("RecordMatchPlayer: %v", err)
	}

	m, err := db.GetMatch(matchID)
	if err != nil || m == nil {
		t.Fatalf("GetMatch: %v, %v", m, err)
	}
	if m.Seed != 42 || m.Winner != 0 || m.Ticks != 5712 || m.Crowns0 != 2 || m.Crowns1 != 1 {
		t.Errorf("unexpected match row: %+v", m)
	}

	blob := []byte{0x82, 0xa4, 's', 'e', 'e', 'd', 0x2a}
	if err := db.SaveReplay(matchID, blob); err != nil {
		t.Fatalf("SaveReplay: %v", err)
	}
	got, err := db.GetReplay(matchID)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, blob) {
		t.Error("replay blob did not round-trip")
	}

	got, err = db.GetReplay(matchID + 99)
	if err != nil || got != nil {
		t.Errorf("missing replay should be (nil, nil), got (%v, %v)", got, err)
	}
}

func TestSettings(t *testing.T) {
	db := newTestDB(t)

	if v := db.GetSetting("jwt_secret"); v != "" {
		t.Errorf("missing setting = %q, want empty", v)
	}
	if err := db.SetSetting("jwt_secret", "aabb"); err != nil {
		t.Fatal(err)
	}
	if v := db.GetSetting("jwt_secret"); v != "aabb" {
		t.Errorf("setting = %q, want aabb", v)
	}
	// Upsert overwrites
	if err := db.SetSetting("jwt_secret", "ccdd"); err != nil {
		t.Fatal(err)
	}
	if v := db.GetSetting("jwt_secret"); v != "ccdd" {
		t.Errorf("setting after upsert = %q, want ccdd", v)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	db := newTestDB(t)

	players := []struct {
		name string
		wins int
	}{{"low", 1}, {"high", 9}, {"mid", 5}}
	for _, p := range players {
		id, err := db.CreatePlayer(p.name, "h")
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < p.wins; i++ {
			if _, _, err := db.UpdateStatsAfterMatch(id, true, false, 1, 60); err != nil {
				t.Fatal(err)
			}
		}
	}

	entries, err := db.GetLeaderboard("wins", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	want := []string{"high", "mid", "low"}
	for i, e := range entries {
		if e.Username != want[i] {
			t.Errorf("rank %d = %s, want %s", i+1, e.Username, want[i])
		}
		if e.Rank != i+1 {
			t.Errorf("rank field = %d, want %d", e.Rank, i+1)
		}
	}

	// Unknown sort column falls back to wins instead of erroring
	entries, err = db.GetLeaderboard("'; DROP TABLE stats; --", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[0].Username != "high" {
		t.Error("invalid order column should fall back to wins")
	}
}
