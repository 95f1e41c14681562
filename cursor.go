package main

import "fmt"

// StudyCursor is the session-scoped position over the word list. All
// navigation keeps the cursor validly positioned; Search and
// SelectFromBrowseList may fail without moving it.
type StudyCursor struct {
	CurrentIndex int
	SearchQuery  string
	BrowsePage   int // Zero-based page of the browse list
}

// Next advances the cursor, wrapping to the first entry after the last.
func (c *StudyCursor) Next(store *WordStore) {
	c.CurrentIndex = (c.CurrentIndex + 1) % store.Len()
	c.followCurrent()
}

// Back moves the cursor backwards, wrapping to the last entry from the first.
func (c *StudyCursor) Back(store *WordStore) {
	c.CurrentIndex = (c.CurrentIndex + store.Len() - 1) % store.Len()
	c.followCurrent()
}

// Search jumps to the first case-insensitive match for query. On a miss
// the cursor stays put and ErrNotFound is returned; the query is
// remembered either way.
func (c *StudyCursor) Search(store *WordStore, query string) error {
	c.SearchQuery = query
	i, ok := store.FindByWord(query)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	c.CurrentIndex = i
	c.followCurrent()
	return nil
}

// SelectFromBrowseList jumps to a word picked from a rendered browse
// page. The word came from the store, so a miss signals a consistency
// bug rather than user error.
func (c *StudyCursor) SelectFromBrowseList(store *WordStore, word string) error {
	i, ok := store.FindByWord(word)
	if !ok {
		return fmt.Errorf("%w: %q not in store", ErrInvariantViolation, word)
	}
	c.CurrentIndex = i
	c.followCurrent()
	return nil
}

// followCurrent keeps the browse page aligned with the current entry, so
// the study list always shows the page the flashcard lives on.
func (c *StudyCursor) followCurrent() {
	c.BrowsePage = c.CurrentIndex / WordsPerPage
}
