package main

import "sync"

const maxSessions = 100

// Session is one joinable match room
type Session struct {
	ID     string
	Name   string
	Battle *Battle
}

// SessionManager handles creation and lookup of sessions
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a new SessionManager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// CreateSession creates a new match room. Returns nil if the limit is
// reached. The battle loop only starts once both seats are taken.
func (sm *SessionManager) CreateSession(name string, db *DB, analytics *Analytics) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}

	id := GenerateUUID()
	sess := &Session{
		ID:     id,
		Name:   name,
		Battle: NewBattle(id, db, analytics),
	}
	sm.sessions[id] = sess
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// RemovePlayer frees a seat and tears the session down once empty
func (sm *SessionManager) RemovePlayer(sessionID string, side int) {
	sm.mu.RLock()
	sess, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok {
		return
	}
	sess.Battle.RemovePlayer(side)

	if sess.Battle.PlayerCount() == 0 {
		sess.Battle.Stop()
		sm.mu.Lock()
		delete(sm.sessions, sessionID)
		sm.mu.Unlock()
	}
}

// SessionCount returns the number of active sessions
func (sm *SessionManager) SessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ListSessions returns info about all active sessions
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	list := make([]SessionInfo, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		list = append(list, SessionInfo{
			ID:      sess.ID,
			Name:    sess.Name,
			Players: sess.Battle.PlayerCount(),
			Started: sess.Battle.Started(),
		})
	}
	return list
}
