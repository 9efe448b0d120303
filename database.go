package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// PlayerRow represents a player record in the database
type PlayerRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// StatsRow represents player stats
type StatsRow struct {
	PlayerID int64
	Wins     int
	Losses   int
	Draws    int
	Crowns   int
	Playtime float64 // seconds
}

// MatchRow represents a completed match
type MatchRow struct {
	ID        int64
	Seed      int64
	Winner    int // -1 draw, 0 or 1
	Duration  float64
	Ticks     int64
	Crowns0   int
	Crowns1   int
	CreatedAt time.Time
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		is_guest INTEGER NOT NULL DEFAULT 0,
		deck TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		player_id INTEGER PRIMARY KEY REFERENCES players(id),
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		draws INTEGER NOT NULL DEFAULT 0,
		crowns INTEGER NOT NULL DEFAULT 0,
		playtime REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed INTEGER NOT NULL,
		winner INTEGER NOT NULL DEFAULT -1,
		duration REAL NOT NULL DEFAULT 0,
		ticks INTEGER NOT NULL DEFAULT 0,
		crowns0 INTEGER NOT NULL DEFAULT 0,
		crowns1 INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS match_players (
		match_id INTEGER NOT NULL REFERENCES matches(id),
		player_id INTEGER NOT NULL REFERENCES players(id),
		side INTEGER NOT NULL,
		crowns INTEGER NOT NULL DEFAULT 0,
		won INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (match_id, player_id)
	);

	CREATE TABLE IF NOT EXISTS replays (
		match_id INTEGER PRIMARY KEY REFERENCES matches(id),
		data BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		player_id INTEGER,
		session_id TEXT,
		data TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_match_players_player ON match_players(player_id);
	CREATE INDEX IF NOT EXISTS idx_players_username ON players(username);
	CREATE INDEX IF NOT EXISTS idx_analytics_type ON analytics_events(event_type, created_at);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// GetSetting returns a settings value, empty string when missing
func (db *DB) GetSetting(key string) string {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return ""
	}
	return value
}

// SetSetting upserts a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// CreatePlayer creates a new player account (returns player ID)
func (db *DB) CreatePlayer(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO players (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	// Create stats row
	_, err = db.conn.Exec("INSERT INTO stats (player_id) VALUES (?)", id)
	return id, err
}

// CreateGuest creates a guest player row so match records can reference an
// unregistered player. Guests have no password and are excluded from the
// leaderboard.
func (db *DB) CreateGuest(name string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO players (username, is_guest) VALUES (?, 1)",
		name,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = db.conn.Exec("INSERT INTO stats (player_id) VALUES (?)", id)
	return id, err
}

// SaveDeck stores a player's last used deck.
func (db *DB) SaveDeck(playerID int64, deck []string) error {
	data, err := json.Marshal(deck)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec("UPDATE players SET deck = ? WHERE id = ?", string(data), playerID)
	return err
}

// GetDeck returns a player's saved deck, nil when none was stored.
func (db *DB) GetDeck(playerID int64) ([]string, error) {
	var raw string
	err := db.conn.QueryRow("SELECT deck FROM players WHERE id = ?", playerID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil || raw == "" {
		return nil, err
	}
	var deck []string
	if err := json.Unmarshal([]byte(raw), &deck); err != nil {
		return nil, err
	}
	return deck, nil
}

// GetPlayerByUsername returns a player by username, nil when absent
func (db *DB) GetPlayerByUsername(username string) (*PlayerRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM players WHERE username = ?",
		username,
	)
	p := &PlayerRow{}
	err := row.Scan(&p.ID, &p.Username, &p.PassHash, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// GetStats returns player stats
func (db *DB) GetStats(playerID int64) (*StatsRow, error) {
	row := db.conn.QueryRow(
		"SELECT player_id, wins, losses, draws, crowns, playtime FROM stats WHERE player_id = ?",
		playerID,
	)
	s := &StatsRow{}
	err := row.Scan(&s.PlayerID, &s.Wins, &s.Losses, &s.Draws, &s.Crowns, &s.Playtime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// UpdateStatsAfterMatch accumulates a match result into a player's stats.
// Returns the new win and crown totals.
func (db *DB) UpdateStatsAfterMatch(playerID int64, won, draw bool, crowns int, duration float64) (int, int, error) {
	winInc, lossInc, drawInc := 0, 0, 0
	switch {
	case draw:
		drawInc = 1
	case won:
		winInc = 1
	default:
		lossInc = 1
	}

	_, err := db.conn.Exec(`
		UPDATE stats SET
			wins = wins + ?,
			losses = losses + ?,
			draws = draws + ?,
			crowns = crowns + ?,
			playtime = playtime + ?
		WHERE player_id = ?`,
		winInc, lossInc, drawInc, crowns, duration, playerID,
	)
	if err != nil {
		return 0, 0, err
	}

	var wins, total int
	err = db.conn.QueryRow("SELECT wins, crowns FROM stats WHERE player_id = ?", playerID).Scan(&wins, &total)
	return wins, total, err
}

// RecordMatch records a completed match and returns its ID
func (db *DB) RecordMatch(seed uint64, winner int, duration float64, ticks int64, crowns [2]int) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO matches (seed, winner, duration, ticks, crowns0, crowns1) VALUES (?, ?, ?, ?, ?, ?)",
		int64(seed), winner, duration, ticks, crowns[0], crowns[1],
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordMatchPlayer records a player's participation in a match
func (db *DB) RecordMatchPlayer(matchID, playerID int64, side, crowns int, won bool) error {
	w := 0
	if won {
		w = 1
	}
	_, err := db.conn.Exec(
		"INSERT INTO match_players (match_id, player_id, side, crowns, won) VALUES (?, ?, ?, ?, ?)",
		matchID, playerID, side, crowns, w,
	)
	return err
}

// GetMatch returns a recorded match by ID, nil when absent
func (db *DB) GetMatch(id int64) (*MatchRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, seed, winner, duration, ticks, crowns0, crowns1, created_at FROM matches WHERE id = ?",
		id,
	)
	m := &MatchRow{}
	err := row.Scan(&m.ID, &m.Seed, &m.Winner, &m.Duration, &m.Ticks, &m.Crowns0, &m.Crowns1, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// SaveReplay stores the encoded replay blob for a match
func (db *DB) SaveReplay(matchID int64, data []byte) error {
	_, err := db.conn.Exec(
		"INSERT INTO replays (match_id, data) VALUES (?, ?)",
		matchID, data,
	)
	return err
}

// GetReplay returns the encoded replay for a match, nil when absent
func (db *DB) GetReplay(matchID int64) ([]byte, error) {
	var data []byte
	err := db.conn.QueryRow("SELECT data FROM replays WHERE match_id = ?", matchID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return data, err
}

// GetLeaderboard returns top players sorted by the given field
func (db *DB) GetLeaderboard(orderBy string, limit int) ([]LeaderboardEntry, error) {
	// Whitelist valid order columns
	validCols := map[string]string{
		"wins":   "s.wins",
		"crowns": "s.crowns",
		"winrate": `CASE WHEN s.wins + s.losses > 0
			THEN CAST(s.wins AS REAL) / (s.wins + s.losses) ELSE 0 END`,
	}
	col, ok := validCols[orderBy]
	if !ok {
		col = "s.wins"
	}

	query := `SELECT p.username, s.wins, s.losses, s.draws, s.crowns
		FROM stats s JOIN players p ON p.id = s.player_id
		WHERE p.is_guest = 0
		ORDER BY ` + col + ` DESC LIMIT ?`

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Wins, &e.Losses, &e.Draws, &e.Crowns); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		result = append(result, e)
	}
	return result, rows.Err()
}

// LeaderboardEntry represents one row in the leaderboard
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
	Crowns   int    `json:"crowns"`
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM players WHERE username = ?", username).Scan(&count)
	return count > 0, err
}
