package main

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"arena-battle-server/sim"
)

func startTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	hub := NewHub(nil, nil)
	go hub.Run()
	srv := httptest.NewServer(SetupRoutes(hub, t.TempDir()))
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return srv, wsURL
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitFor reads until a text envelope of the wanted type arrives, skipping
// binary state frames and other messages.
func waitFor(t *testing.T, conn *websocket.Conn, want string) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		mt, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		var env InEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		if env.T == MsgError {
			t.Fatalf("waiting for %q, got error: %s", want, env.D)
		}
		if env.T == want {
			return env.D
		}
	}
}

// waitForFrame reads until a binary state frame arrives and decodes it.
func waitForFrame(t *testing.T, conn *websocket.Conn) sim.Snapshot {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		mt, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for state frame: %v", err)
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		var snap sim.Snapshot
		if err := msgpack.Unmarshal(raw, &snap); err != nil {
			t.Fatalf("bad state frame: %v", err)
		}
		return snap
	}
}

func sendMsg(t *testing.T, conn *websocket.Conn, typ string, data interface{}) {
	t.Helper()
	if err := conn.WriteJSON(map[string]interface{}{"t": typ, "d": data}); err != nil {
		t.Fatalf("send %s: %v", typ, err)
	}
}

func TestFullMatchOverWebSocket(t *testing.T) {
	_, wsURL := startTestServer(t)

	// Player 1 creates the session and takes side 0
	c1 := dial(t, wsURL)
	sendMsg(t, c1, MsgCreate, CreateMsg{Name: "alice", SessionName: "duel", Deck: replayDeck})

	var created struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(waitFor(t, c1, MsgCreated), &created); err != nil {
		t.Fatal(err)
	}
	if created.SID == "" {
		t.Fatal("created message carried no session ID")
	}

	var joined JoinedMsg
	if err := json.Unmarshal(waitFor(t, c1, MsgJoined), &joined); err != nil {
		t.Fatal(err)
	}
	if joined.Side != 0 {
		t.Errorf("creator got side %d, want 0", joined.Side)
	}

	var hand HandMsg
	if err := json.Unmarshal(waitFor(t, c1, MsgHand), &hand); err != nil {
		t.Fatal(err)
	}
	if len(hand.Cards) != sim.HandSize {
		t.Errorf("opening hand has %d cards, want %d", len(hand.Cards), sim.HandSize)
	}
	if hand.Elixir != 5 {
		t.Errorf("opening elixir = %v, want 5", hand.Elixir)
	}

	// Player 2 joins and the match starts
	c2 := dial(t, wsURL)
	sendMsg(t, c2, MsgJoin, JoinMsg{Name: "bob", SessionID: created.SID, Deck: replayDeck})
	if err := json.Unmarshal(waitFor(t, c2, MsgJoined), &joined); err != nil {
		t.Fatal(err)
	}
	if joined.Side != 1 {
		t.Errorf("joiner got side %d, want 1", joined.Side)
	}

	// Both seats see state frames with the six towers
	snap := waitForFrame(t, c1)
	if len(snap.Entities) != 6 {
		t.Errorf("frame has %d entities, want 6 towers", len(snap.Entities))
	}
	waitForFrame(t, c2)

	// A deploy grows the entity count and refreshes the hand
	card := ""
	for _, name := range hand.Cards {
		if cardCost(name) <= 5 {
			card = name
			break
		}
	}
	if card == "" {
		t.Fatal("no affordable card in opening hand")
	}
	sendMsg(t, c1, MsgDeploy, DeployMsg{Card: card, X: 9, Y: 4.5})
	if err := json.Unmarshal(waitFor(t, c1, MsgHand), &hand); err != nil {
		t.Fatal(err)
	}
	for _, name := range hand.Cards {
		if name == card {
			t.Errorf("played card %q still in hand", card)
		}
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		snap = waitForFrame(t, c1)
		if len(snap.Entities) > 6 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("deployed unit never appeared in a state frame")
		}
	}

	// Leaving a live match forfeits it
	c2.Close()
	var ended EndedMsg
	if err := json.Unmarshal(waitFor(t, c1, MsgEnded), &ended); err != nil {
		t.Fatal(err)
	}
	if ended.Winner != 0 {
		t.Errorf("winner = %d, want 0 after opponent left", ended.Winner)
	}
}

func TestSessionListOverWebSocket(t *testing.T) {
	_, wsURL := startTestServer(t)

	c1 := dial(t, wsURL)
	sendMsg(t, c1, MsgCreate, CreateMsg{Name: "alice", SessionName: "open duel", Deck: replayDeck})
	waitFor(t, c1, MsgJoined)

	c2 := dial(t, wsURL)
	sendMsg(t, c2, MsgList, nil)
	var sessions []SessionInfo
	if err := json.Unmarshal(waitFor(t, c2, MsgSessions), &sessions); err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("listed %d sessions, want 1", len(sessions))
	}
	if sessions[0].Name != "open duel" || sessions[0].Players != 1 || sessions[0].Started {
		t.Errorf("unexpected session info: %+v", sessions[0])
	}

	sendMsg(t, c2, MsgCheck, CheckMsg{SID: sessions[0].ID})
	var checked CheckedMsg
	if err := json.Unmarshal(waitFor(t, c2, MsgChecked), &checked); err != nil {
		t.Fatal(err)
	}
	if !checked.Exists || checked.Name != "open duel" {
		t.Errorf("unexpected check response: %+v", checked)
	}

	sendMsg(t, c2, MsgCheck, CheckMsg{SID: "not-a-session"})
	if err := json.Unmarshal(waitFor(t, c2, MsgChecked), &checked); err != nil {
		t.Fatal(err)
	}
	if checked.Exists {
		t.Error("nonexistent session reported as existing")
	}
}
