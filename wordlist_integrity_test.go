package main

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"
)

// TestWordsCSV_Loads checks the bundled list loads through the real path
func TestWordsCSV_Loads(t *testing.T) {
	store, err := loadWordStore("data/words.csv")
	if err != nil {
		t.Fatalf("loadWordStore(data/words.csv) failed: %v", err)
	}
	if store.Len() < 20 {
		t.Errorf("bundled word list has %d entries, want at least 20", store.Len())
	}
	for i := 0; i < store.Len(); i++ {
		entry, err := store.Get(i)
		if err != nil {
			t.Fatalf("Get(%d) error: %v", i, err)
		}
		if entry.Word == "" {
			t.Errorf("entry %d has an empty word", i)
		}
		if entry.Definition == "" {
			t.Errorf("word %q has no definition", entry.Word)
		}
		if entry.Example == "" {
			t.Errorf("word %q has no example sentence", entry.Word)
		}
	}
}

// TestWordsCSV_NoDuplicatesAndValidMarkers checks the raw file quality
func TestWordsCSV_NoDuplicatesAndValidMarkers(t *testing.T) {
	f, err := os.Open("data/words.csv")
	if err != nil {
		t.Fatalf("Failed to open words.csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse words.csv: %v", err)
	}
	if len(rows) < 2 {
		t.Fatal("words.csv has no data rows")
	}

	header := rows[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	seen := make(map[string]struct{})
	for i, row := range rows[1:] {
		word := strings.ToLower(strings.TrimSpace(row[col["Words"]]))
		if _, dup := seen[word]; dup {
			t.Errorf("words.csv: duplicate word %q at row %d", word, i+2)
		}
		seen[word] = struct{}{}

		marker := strings.TrimSpace(row[col["Connotation"]])
		if marker != "(+)" && marker != "(-)" && marker != "(N)" {
			t.Errorf("words.csv: word %q has invalid connotation marker %q", word, marker)
		}
	}
}
