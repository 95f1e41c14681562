package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
)

// WordStore is the immutable, ordered vocabulary table built once at
// startup. It is safe to share across sessions without locking because
// it is never mutated after load.
type WordStore struct {
	entries []VocabEntry
	index   map[string]int // lowercased word -> position of first occurrence
}

// Required columns of the source CSV. The file is UTF-8 and
// comma-delimited, the first row is the header; columns are matched by
// trimmed name in any order.
var requiredColumns = []string{"Words", "Definition", "Connotation", "Synonym", "Antonym", "Sentence"}

// loadWordStore reads the word list CSV at path and builds a WordStore.
// A missing file is reported as-is (startup-fatal for the caller);
// structural problems wrap ErrDataFormat. Duplicate words keep the
// first occurrence and log a warning.
func loadWordStore(path string) (*WordStore, error) {
	logInfo("Loading word list from %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("word list unavailable: %w", err)
	}
	defer f.Close()

	store, err := parseWordStore(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logInfo("Loaded %d words from word list", store.Len())
	return store, nil
}

func parseWordStore(r io.Reader) (*WordStore, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", ErrDataFormat)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrDataFormat, name)
		}
	}

	var entries []VocabEntry
	index := make(map[string]int)
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrDataFormat, row, err)
		}
		row++

		word := strings.TrimSpace(field(record, columns["Words"]))
		if word == "" {
			return nil, fmt.Errorf("%w: row %d has an empty word", ErrDataFormat, row)
		}

		key := strings.ToLower(word)
		if _, seen := index[key]; seen {
			logWarn("Duplicate word %q at row %d, keeping first occurrence", word, row)
			continue
		}

		entries = append(entries, VocabEntry{
			Word:        word,
			Definition:  strings.TrimSpace(field(record, columns["Definition"])),
			Connotation: parseConnotation(field(record, columns["Connotation"]), word),
			Synonyms:    splitList(field(record, columns["Synonym"])),
			Antonyms:    splitList(field(record, columns["Antonym"])),
			Example:     strings.TrimSpace(field(record, columns["Sentence"])),
		})
		index[key] = len(entries) - 1
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrDataFormat)
	}
	return &WordStore{entries: entries, index: index}, nil
}

// field guards against short rows so a ragged CSV line cannot panic.
func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// parseConnotation maps the leading marker to a Connotation. Unknown
// markers degrade to Neutral with a warning rather than failing the load.
func parseConnotation(raw, word string) Connotation {
	switch marker := strings.TrimSpace(raw); {
	case strings.HasPrefix(marker, "(+)"):
		return ConnotationPositive
	case strings.HasPrefix(marker, "(-)"):
		return ConnotationNegative
	case strings.HasPrefix(marker, "(N)"):
		return ConnotationNeutral
	default:
		if marker != "" {
			logWarn("Unknown connotation marker %q for word %q, treating as neutral", marker, word)
		}
		return ConnotationNeutral
	}
}

// splitList breaks a "red, scarlet; crimson" style cell into its parts.
func splitList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	cleaned := lo.FilterMap(parts, func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return p, p != ""
	})
	return cleaned
}

// Len returns the number of loaded entries.
func (s *WordStore) Len() int {
	return len(s.entries)
}

// Get returns the entry at position i.
func (s *WordStore) Get(i int) (VocabEntry, error) {
	if i < 0 || i >= len(s.entries) {
		return VocabEntry{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.entries))
	}
	return s.entries[i], nil
}

// FindByWord returns the position of the first case-insensitive exact
// match for word.
func (s *WordStore) FindByWord(word string) (int, bool) {
	i, ok := s.index[strings.ToLower(strings.TrimSpace(word))]
	return i, ok
}

// Page returns the entries of the given zero-based browse page. Pages
// past the end are empty, not an error.
func (s *WordStore) Page(page int) []VocabEntry {
	if page < 0 {
		return nil
	}
	start := page * WordsPerPage
	if start >= len(s.entries) {
		return nil
	}
	end := min(start+WordsPerPage, len(s.entries))
	return s.entries[start:end]
}

// PageCount returns the number of browse pages.
func (s *WordStore) PageCount() int {
	return (len(s.entries) + WordsPerPage - 1) / WordsPerPage
}
