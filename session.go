package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || len(sessionID) < 10 {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", app.IsProduction, true)
		logInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

// getStudySession retrieves or creates the StudySession for a session ID.
// New sessions start positioned at the first entry of the word list.
func (app *App) getStudySession(sessionID string) *StudySession {
	app.SessionMutex.RLock()
	session, exists := app.Sessions[sessionID]
	app.SessionMutex.RUnlock()
	if exists {
		app.SessionMutex.Lock()
		session.LastAccessTime = time.Now()
		app.SessionMutex.Unlock()
		return session
	}

	logInfo("Creating new study session: %s", sessionID)
	return app.createStudySession(sessionID)
}

// createStudySession initializes a fresh StudySession and stores it.
func (app *App) createStudySession(sessionID string) *StudySession {
	session := &StudySession{
		Cursor:         StudyCursor{CurrentIndex: 0, BrowsePage: 0},
		LastAccessTime: time.Now(),
	}
	app.SessionMutex.Lock()
	app.Sessions[sessionID] = session
	app.SessionMutex.Unlock()
	return session
}

// resetStudySession drops any existing state for the session and starts over.
func (app *App) resetStudySession(sessionID string) *StudySession {
	app.SessionMutex.Lock()
	delete(app.Sessions, sessionID)
	app.SessionMutex.Unlock()
	logInfo("Reset study session: %s", sessionID)
	return app.createStudySession(sessionID)
}

// startSessionCleanup sweeps expired sessions in the background so the
// in-memory map does not grow without bound.
func (app *App) startSessionCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			removed := app.cleanupExpiredSessions(time.Now())
			if removed > 0 {
				logInfo("Session cleanup removed %d expired sessions", removed)
			}
		}
	}()
}

// cleanupExpiredSessions removes sessions idle past the session timeout
// and returns how many were dropped.
func (app *App) cleanupExpiredSessions(now time.Time) int {
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	removed := 0
	for sessionID, session := range app.Sessions {
		expired := session.LastAccessTime.IsZero() || now.Sub(session.LastAccessTime) > app.SessionTimeout
		if expired {
			delete(app.Sessions, sessionID)
			removed++
		}
	}
	return removed
}
