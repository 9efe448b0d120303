package main

import "encoding/json"

// Client -> Server message types
const (
	MsgList     = "list"     // list open sessions
	MsgCreate   = "create"   // create a session
	MsgJoin     = "join"     // take a seat in a session
	MsgDeploy   = "deploy"   // play a card at a position
	MsgLeave    = "leave"
	MsgCheck    = "check"    // check if a session exists
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth"    // token re-auth
	MsgProfile  = "profile" // request own stats
	MsgReplay   = "replay"  // request a stored replay
)

// Server -> Client message types
const (
	MsgSessions    = "sessions"
	MsgCreated     = "created" // session created, client should navigate
	MsgJoined      = "joined"
	MsgHand        = "hand"  // current hand and elixir
	MsgEnded       = "ended" // match over
	MsgRejected    = "rejected"
	MsgError       = "error"
	MsgChecked     = "checked"
	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgReplayData  = "replay_data"
)

// Envelope wraps all outgoing JSON messages with a type field. Battle state
// frames bypass it and go out as binary msgpack.
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids
// double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// CreateMsg is sent when a player wants to create a session
type CreateMsg struct {
	Name        string   `json:"name"`
	SessionName string   `json:"sname"`
	Deck        []string `json:"deck,omitempty"`
}

// JoinMsg is sent when a player wants to take a seat
type JoinMsg struct {
	Name      string   `json:"name"`
	SessionID string   `json:"sid"`
	Deck      []string `json:"deck,omitempty"`
}

// DeployMsg asks to play a card at a tile position
type DeployMsg struct {
	Card string  `json:"card"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// JoinedMsg confirms a seat and tells the client which side it plays
type JoinedMsg struct {
	SessionID string `json:"sid"`
	Side      int    `json:"side"`
}

// HandMsg carries the playable hand after a deploy or cycle
type HandMsg struct {
	Cards  []string `json:"cards"`
	Elixir float64  `json:"elixir"`
}

// EndedMsg is broadcast when the match reaches a terminal state
type EndedMsg struct {
	Winner int   `json:"winner"` // -1 on a draw
	Tick   int64 `json:"tick"`
	Crowns [2]int `json:"crowns"`
}

// RejectedMsg reports an illegal deploy back to its sender
type RejectedMsg struct {
	Card   string `json:"card"`
	Reason string `json:"reason"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
	Started bool   `json:"started"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// CheckMsg is sent by the client to check if a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID     string `json:"sid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates by password
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg re-authenticates by token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// ProfileDataMsg carries a player's persistent stats
type ProfileDataMsg struct {
	Username string  `json:"username"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Draws    int     `json:"draws"`
	Crowns   int     `json:"crowns"`
	Playtime float64 `json:"playtime"`
}

// ReplayMsg requests a stored replay by match ID
type ReplayMsg struct {
	MatchID int64 `json:"match_id"`
}

// ReplayDataMsg returns the encoded replay
type ReplayDataMsg struct {
	MatchID int64  `json:"match_id"`
	Data    []byte `json:"data"` // msgpack-encoded Replay
}
