package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenLifetime  = 7 * 24 * time.Hour
	bcryptCost     = 12
	minPasswordLen = 6
	minUsernameLen = 2
	maxUsernameLen = 16
)

const (
	loginWindowLen   = time.Minute
	loginWindowLimit = 10
)

// loginLimiter throttles password attempts per source address over a fixed
// window. Guest seating and token validation are never throttled.
type loginLimiter struct {
	mu      sync.Mutex
	windows map[string]*loginWindow
}

type loginWindow struct {
	count   int
	resetAt time.Time
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{windows: make(map[string]*loginWindow)}
}

func (l *loginLimiter) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[addr]
	if !ok || now.After(w.resetAt) {
		l.windows[addr] = &loginWindow{count: 1, resetAt: now.Add(loginWindowLen)}
		return true
	}
	w.count++
	return w.count <= loginWindowLimit
}

// Auth manages player identity: registered accounts with bcrypt password
// hashes and signed session tokens, plus persistent guest identities so
// match history and stats can reference unregistered players.
type Auth struct {
	db      *DB
	secret  []byte
	limiter *loginLimiter
}

// NewAuth builds an Auth over the given database. The token signing secret
// is loaded from the settings table so sessions survive restarts; a nil db
// gets an ephemeral secret and disables accounts.
func NewAuth(db *DB) *Auth {
	return &Auth{
		db:      db,
		secret:  signingSecret(db),
		limiter: newLoginLimiter(),
	}
}

func signingSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate signing secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("warning: could not persist signing secret: %v", err)
		}
	}
	return secret
}

// checkCredentials validates username and password shape before any
// database work.
func checkCredentials(username, password string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if strings.HasPrefix(username, guestNamePrefix) {
		return fmt.Errorf("that name is reserved for guests")
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

// Register creates a new account and returns its ID and a session token.
func (a *Auth) Register(username, password string) (int64, string, error) {
	if a.db == nil {
		return 0, "", fmt.Errorf("accounts unavailable")
	}
	username = strings.TrimSpace(username)
	if err := checkCredentials(username, password); err != nil {
		return 0, "", err
	}

	exists, err := a.db.UsernameExists(username)
	if err != nil {
		return 0, "", fmt.Errorf("database error")
	}
	if exists {
		return 0, "", fmt.Errorf("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return 0, "", fmt.Errorf("internal error")
	}
	id, err := a.db.CreatePlayer(username, string(hash))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create account")
	}

	token, err := a.issueToken(id, username)
	if err != nil {
		return 0, "", fmt.Errorf("internal error")
	}
	return id, token, nil
}

// Login verifies a password and returns the player ID and a fresh session
// token. Attempts count against the per-address window whether or not the
// password matches.
func (a *Auth) Login(username, password, addr string) (int64, string, error) {
	if a.db == nil {
		return 0, "", fmt.Errorf("accounts unavailable")
	}
	if !a.limiter.allow(addr) {
		return 0, "", fmt.Errorf("too many login attempts, try again later")
	}

	player, err := a.db.GetPlayerByUsername(username)
	if err != nil {
		return 0, "", fmt.Errorf("database error")
	}
	// Guest rows have an empty hash and can never be logged into.
	if player == nil || player.PassHash == "" {
		return 0, "", fmt.Errorf("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(player.PassHash), []byte(password)); err != nil {
		return 0, "", fmt.Errorf("invalid username or password")
	}

	token, err := a.issueToken(player.ID, player.Username)
	if err != nil {
		return 0, "", fmt.Errorf("internal error")
	}
	return player.ID, token, nil
}

// EnsureGuest creates a persistent guest row for the given display name so
// the match record can reference it, returning the player ID. Guests stay
// off the leaderboard but accumulate stats like any other player. Returns 0
// when no database is attached.
func (a *Auth) EnsureGuest(name string) int64 {
	if a.db == nil {
		return 0
	}
	if existing, err := a.db.GetPlayerByUsername(name); err == nil && existing != nil {
		if existing.PassHash == "" {
			return existing.ID
		}
		// The name belongs to a registered account; an unauthenticated
		// player cannot claim it, so the match goes unattributed.
		return 0
	}
	id, err := a.db.CreateGuest(name)
	if err != nil {
		log.Printf("could not create guest record for %q: %v", name, err)
		return 0
	}
	return id
}

// ValidateToken checks a session token and returns the player ID and
// username it was issued for.
func (a *Auth) ValidateToken(tokenStr string) (int64, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return 0, "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", fmt.Errorf("invalid token")
	}

	pid, ok := claims["pid"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}
	username, ok := claims["usr"].(string)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}
	return int64(pid), username, nil
}

func (a *Auth) issueToken(playerID int64, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"pid": playerID,
		"usr": username,
		"exp": now.Add(tokenLifetime).Unix(),
		"iat": now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

const guestNamePrefix = "Challenger_"

// GenerateGuestName picks a display name for an unauthenticated player,
// like "Challenger_a3f2". The prefix is reserved at registration so a
// guest name never collides with an account.
func GenerateGuestName() string {
	b := make([]byte, 2)
	rand.Read(b)
	return guestNamePrefix + hex.EncodeToString(b)
}
