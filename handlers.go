package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// homeHandler renders the flashcard page for the current session.
func (app *App) homeHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	session := app.getStudySession(sessionID)
	c.HTML(http.StatusOK, "index.html", app.buildView(session))
}

// searchHandler jumps the cursor to the searched word. A miss leaves the
// cursor in place and surfaces a notice instead of an error.
func (app *App) searchHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	session := app.getStudySession(sessionID)

	query := c.PostForm("q")
	app.SessionMutex.Lock()
	err := session.Cursor.Search(app.Store, query)
	switch {
	case err == nil:
		session.Generated = nil
	case errors.Is(err, ErrNotFound):
		logInfo("Session %s searched for unknown word: %q", sessionID, query)
		session.Notice = NoticeWordNotFound
	}
	app.SessionMutex.Unlock()

	app.respond(c, session)
}

// nextHandler advances to the next word, wrapping past the end.
func (app *App) nextHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	session := app.getStudySession(sessionID)

	app.SessionMutex.Lock()
	session.Cursor.Next(app.Store)
	session.Generated = nil
	app.SessionMutex.Unlock()

	app.respond(c, session)
}

// backHandler moves to the previous word, wrapping before the start.
func (app *App) backHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	session := app.getStudySession(sessionID)

	app.SessionMutex.Lock()
	session.Cursor.Back(app.Store)
	session.Generated = nil
	app.SessionMutex.Unlock()

	app.respond(c, session)
}

// selectHandler loads a word picked from the browse list. The word came
// from a rendered page of the store, so a miss is a consistency bug, not
// user error; it is logged and absorbed.
func (app *App) selectHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	session := app.getStudySession(sessionID)

	word := c.PostForm("word")
	app.SessionMutex.Lock()
	if err := session.Cursor.SelectFromBrowseList(app.Store, word); err != nil {
		logWarn("Session %s selected a word missing from the store: %v", sessionID, err)
		session.Notice = NoticeWordNotFound
	} else {
		session.Generated = nil
	}
	app.SessionMutex.Unlock()

	app.respond(c, session)
}

// browseHandler moves the study list to the requested page, clamping
// out-of-range page numbers to the last valid page.
func (app *App) browseHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	session := app.getStudySession(sessionID)

	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 0
	}
	page = min(max(page, 0), app.Store.PageCount()-1)

	app.SessionMutex.Lock()
	session.Cursor.BrowsePage = page
	app.SessionMutex.Unlock()

	app.respond(c, session)
}

// generateHandler produces a sentence for the current word at the
// requested difficulty and replaces the session's previous one.
func (app *App) generateHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	session := app.getStudySession(sessionID)

	level := c.PostForm("level")
	if !isValidLevel(level) {
		app.SessionMutex.Lock()
		session.Notice = NoticeUnknownLevel
		app.SessionMutex.Unlock()
		app.respond(c, session)
		return
	}
	app.runGeneration(c, sessionID, session, level)
}

// generateAgainHandler repeats the last generation at the same level.
// Before any generation has happened the action is a no-op with a notice,
// mirroring a disabled control.
func (app *App) generateAgainHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	session := app.getStudySession(sessionID)

	app.SessionMutex.RLock()
	level := session.LastLevel
	app.SessionMutex.RUnlock()

	if level == "" {
		logInfo("Session %s used generate-again with no prior generation", sessionID)
		app.SessionMutex.Lock()
		session.Notice = NoticeNoActiveLevel
		app.SessionMutex.Unlock()
		app.respond(c, session)
		return
	}
	app.runGeneration(c, sessionID, session, level)
}

// runGeneration performs one generate action end to end. At most one
// generation may be in flight per session; a concurrent request is
// rejected with a notice rather than queued.
func (app *App) runGeneration(c *gin.Context, sessionID string, session *StudySession, level string) {
	app.SessionMutex.Lock()
	if session.Generating {
		session.Notice = NoticeGenerationBusy
		app.SessionMutex.Unlock()
		app.respond(c, session)
		return
	}
	session.Generating = true
	entry, err := app.Store.Get(session.Cursor.CurrentIndex)
	app.SessionMutex.Unlock()

	defer func() {
		app.SessionMutex.Lock()
		session.Generating = false
		app.SessionMutex.Unlock()
	}()

	if err != nil {
		// Cursor invariants make this unreachable; recover anyway.
		logWarn("Session %s cursor out of range: %v", sessionID, err)
		app.respond(c, session)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), app.GenerationTimeout)
	defer cancel()
	sentence := app.generateSentence(ctx, entry, level)
	logInfo("Session %s generated %s sentence for %q via %s", sessionID, level, entry.Word, sentence.Source)

	app.SessionMutex.Lock()
	session.Generated = &sentence
	session.LastLevel = level
	app.SessionMutex.Unlock()

	app.respond(c, session)
}

// generateSentence returns the best available sentence: one model
// attempt when a provider is configured, then the demo fallback. It
// never fails.
func (app *App) generateSentence(ctx context.Context, entry VocabEntry, level string) GeneratedSentence {
	if app.Model != nil {
		sentence, err := app.Model.Generate(ctx, entry, level)
		if err == nil {
			return sentence
		}
		logWarn("Model generation failed, falling back to demo: %v", err)
	}
	sentence, _ := app.Demo.Generate(ctx, entry, level)
	return sentence
}

// resetHandler starts the session over from the first word.
func (app *App) resetHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	session := app.resetStudySession(sessionID)
	app.respond(c, session)
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	provider := SourceDemo
	if app.Model != nil {
		provider = SourceModel
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"env":          map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"words_loaded": app.Store.Len(),
		"provider":     provider,
		"uptime":       formatUptime(uptime),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// respond renders the card fragment for HTMX requests and redirects
// everyone else back to the flashcard page.
func (app *App) respond(c *gin.Context, session *StudySession) {
	if c.GetHeader("HX-Request") == "true" {
		c.HTML(http.StatusOK, "card-content", app.buildView(session))
		return
	}
	c.Redirect(http.StatusSeeOther, RouteHome)
}

// buildView assembles the template data for a session and consumes any
// pending notice.
func (app *App) buildView(session *StudySession) gin.H {
	app.SessionMutex.Lock()
	cursor := session.Cursor
	generated := session.Generated
	lastLevel := session.LastLevel
	notice := session.Notice
	session.Notice = ""
	app.SessionMutex.Unlock()

	entry, err := app.Store.Get(cursor.CurrentIndex)
	if err != nil {
		logWarn("View build with out-of-range cursor: %v", err)
		entry, _ = app.Store.Get(0)
	}

	pageStart := cursor.BrowsePage * WordsPerPage
	return gin.H{
		"title":       "Vortkarto - Vocabulary Flashcards",
		"message":     "Giving up is not an option. Memorizing vocab is fun if you understand it well enough!",
		"entry":       entry,
		"position":    cursor.CurrentIndex + 1,
		"total":       app.Store.Len(),
		"generated":   generated,
		"lastLevel":   lastLevel,
		"notice":      notice,
		"levels":      []string{LevelEasy, LevelModerate, LevelHard},
		"pageEntries": app.Store.Page(cursor.BrowsePage),
		"page":        cursor.BrowsePage + 1,
		"pageStart":   pageStart,
		"totalPages":  app.Store.PageCount(),
		"prevPage":    cursor.BrowsePage - 1,
		"nextPage":    cursor.BrowsePage + 1,
	}
}
