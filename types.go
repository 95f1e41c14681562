package main

import (
	"errors"
	"time"
)

type contextKey string

// Connotation is the polarity marker attached to a definition.
type Connotation int

const (
	ConnotationNeutral Connotation = iota
	ConnotationPositive
	ConnotationNegative
)

// Marker returns the marker form used in the source data: (+), (-), (N).
func (c Connotation) Marker() string {
	switch c {
	case ConnotationPositive:
		return "(+)"
	case ConnotationNegative:
		return "(-)"
	default:
		return "(N)"
	}
}

func (c Connotation) String() string {
	switch c {
	case ConnotationPositive:
		return "Positive"
	case ConnotationNegative:
		return "Negative"
	default:
		return "Neutral"
	}
}

// VocabEntry is one word's full study record. Entries are immutable
// once loaded.
type VocabEntry struct {
	Word        string
	Definition  string
	Connotation Connotation
	Synonyms    []string
	Antonyms    []string
	Example     string // Static example bundled with the source data
}

// GeneratedSentence is the transient result of a generate action. Only
// the most recent one per session is retained.
type GeneratedSentence struct {
	Word   string `json:"word"`
	Level  string `json:"level"`
	Text   string `json:"text"`
	Source string `json:"source"` // "demo" or "model"
}

// StudySession holds one browser session's study state. It is never
// shared between sessions and is dropped when the session expires.
type StudySession struct {
	Cursor         StudyCursor
	Generated      *GeneratedSentence
	LastLevel      string // Empty until the first generate in the session
	Notice         string // Pending user feedback, cleared on render
	Generating     bool   // True while a model call is in flight
	LastAccessTime time.Time
}

// Domain errors. Startup failures are fatal; everything else is absorbed
// at the handler boundary and turned into view state.
var (
	ErrDataFormat         = errors.New("word list has invalid format")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrNotFound           = errors.New("word not found")
	ErrInvariantViolation = errors.New("word list consistency violation")
	ErrGenerationFailed   = errors.New("sentence generation failed")
	ErrNoActiveLevel      = errors.New("no difficulty level selected yet")
)
