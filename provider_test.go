package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testEntry = VocabEntry{
	Word:       "abate",
	Definition: "to become less intense or widespread",
}

// TestDemoProvider_Deterministic checks identical input gives identical output
func TestDemoProvider_Deterministic(t *testing.T) {
	demo := DemoProvider{}
	first, err := demo.Generate(context.Background(), testEntry, LevelEasy)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	second, _ := demo.Generate(context.Background(), testEntry, LevelEasy)

	if first.Text == "" {
		t.Error("demo sentence is empty")
	}
	if first.Text != second.Text {
		t.Errorf("demo output not deterministic: %q vs %q", first.Text, second.Text)
	}
	if first.Source != SourceDemo {
		t.Errorf("Source = %q, want %q", first.Source, SourceDemo)
	}
	if !strings.Contains(first.Text, "abate") {
		t.Errorf("demo sentence %q does not mention the word", first.Text)
	}
}

// TestDemoProvider_LevelsDiffer checks the level shows up in the output
func TestDemoProvider_LevelsDiffer(t *testing.T) {
	demo := DemoProvider{}
	easy, _ := demo.Generate(context.Background(), testEntry, LevelEasy)
	hard, _ := demo.Generate(context.Background(), testEntry, LevelHard)
	if easy.Text == hard.Text {
		t.Errorf("easy and hard demo sentences are identical: %q", easy.Text)
	}
}

// TestBuildSentencePrompt checks the prompt carries word, definition and band
func TestBuildSentencePrompt(t *testing.T) {
	for level, band := range levelBands {
		prompt := buildSentencePrompt(testEntry, level)
		for _, want := range []string{testEntry.Word, testEntry.Definition, band.Guidance, level, "exactly once"} {
			if !strings.Contains(prompt, want) {
				t.Errorf("%s prompt missing %q: %s", level, want, prompt)
			}
		}
	}
}

// TestIsValidLevel checks level validation
func TestIsValidLevel(t *testing.T) {
	for _, level := range []string{LevelEasy, LevelModerate, LevelHard} {
		if !isValidLevel(level) {
			t.Errorf("isValidLevel(%q) = false, want true", level)
		}
	}
	for _, bad := range []string{"", "easy", "Extreme"} {
		if isValidLevel(bad) {
			t.Errorf("isValidLevel(%q) = true, want false", bad)
		}
	}
}

// TestAppearsExactlyOnce checks whole-word counting
func TestAppearsExactlyOnce(t *testing.T) {
	tests := []struct {
		word string
		s    string
		want bool
	}{
		{"abate", "The storm will abate soon.", true},
		{"abate", "Abate now; it will abate later.", false},
		{"abate", "The abatement was swift.", false},
		{"abate", "Nothing relevant here.", false},
	}
	for _, tt := range tests {
		if got := appearsExactlyOnce(tt.word, tt.s); got != tt.want {
			t.Errorf("appearsExactlyOnce(%q, %q) = %v, want %v", tt.word, tt.s, got, tt.want)
		}
	}
}

func fakeCompletionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
			t.Errorf("missing bearer token, got %q", auth)
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]string{"content": content}},
				},
			})
		}
	}))
}

func testModelProvider(url string) *ModelProvider {
	return &ModelProvider{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: url,
		Client:  &http.Client{Timeout: time.Second},
	}
}

// TestModelProvider_Success checks a good response round-trips
func TestModelProvider_Success(t *testing.T) {
	srv := fakeCompletionServer(t, http.StatusOK, "  The noise will abate once the crowd moves on.\n")
	defer srv.Close()

	sentence, err := testModelProvider(srv.URL).Generate(context.Background(), testEntry, LevelModerate)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if sentence.Text != "The noise will abate once the crowd moves on." {
		t.Errorf("Text = %q, want trimmed sentence", sentence.Text)
	}
	if sentence.Source != SourceModel {
		t.Errorf("Source = %q, want %q", sentence.Source, SourceModel)
	}
	if sentence.Level != LevelModerate {
		t.Errorf("Level = %q, want %q", sentence.Level, LevelModerate)
	}
}

// TestModelProvider_Failures checks all failure shapes map to ErrGenerationFailed
func TestModelProvider_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusUnauthorized)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}},
		{"empty sentence", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[{"message":{"content":"  "}}]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := testModelProvider(srv.URL).Generate(context.Background(), testEntry, LevelEasy)
			if !errors.Is(err, ErrGenerationFailed) {
				t.Errorf("Generate() error = %v, want ErrGenerationFailed", err)
			}
		})
	}
}

// TestModelProvider_Unreachable checks transport failures map the same way
func TestModelProvider_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Deliberately closed before the call.

	_, err := testModelProvider(srv.URL).Generate(context.Background(), testEntry, LevelEasy)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("Generate() error = %v, want ErrGenerationFailed", err)
	}
}

// TestGenerateSentence_Fallback checks the model -> demo fallback policy
func TestGenerateSentence_Fallback(t *testing.T) {
	srv := fakeCompletionServer(t, http.StatusInternalServerError, "")
	defer srv.Close()

	app := newApp()
	app.Model = testModelProvider(srv.URL)

	sentence := app.generateSentence(context.Background(), testEntry, LevelEasy)
	if sentence.Source != SourceDemo {
		t.Errorf("fallback Source = %q, want %q", sentence.Source, SourceDemo)
	}
	if sentence.Text == "" {
		t.Error("fallback sentence is empty")
	}
}

// TestGenerateSentence_NoModel checks demo is used when no key is configured
func TestGenerateSentence_NoModel(t *testing.T) {
	app := newApp()
	sentence := app.generateSentence(context.Background(), testEntry, LevelHard)
	if sentence.Source != SourceDemo {
		t.Errorf("Source = %q, want %q", sentence.Source, SourceDemo)
	}
}

// TestGenerateSentence_ModelPreferred checks the model result wins when healthy
func TestGenerateSentence_ModelPreferred(t *testing.T) {
	srv := fakeCompletionServer(t, http.StatusOK, "Storms abate when the front passes.")
	defer srv.Close()

	app := newApp()
	app.Model = testModelProvider(srv.URL)

	sentence := app.generateSentence(context.Background(), testEntry, LevelEasy)
	if sentence.Source != SourceModel {
		t.Errorf("Source = %q, want %q", sentence.Source, SourceModel)
	}
}
