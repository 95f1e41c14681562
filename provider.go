package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// levelBand tunes the prompt for one difficulty level. The numeric
// bounds are cosmetic configuration, not part of the provider contract.
type levelBand struct {
	MinWords int
	MaxWords int
	Guidance string
}

var levelBands = map[string]levelBand{
	LevelEasy:     {8, 14, "CEFR A2-B1, everyday topics, common vocabulary"},
	LevelModerate: {12, 18, "IELTS 6.0-7.0, natural collocations and clauses"},
	LevelHard:     {15, 25, "GRE/academic tone, analytical or abstract context"},
}

// isValidLevel reports whether level is one of the known difficulties.
func isValidLevel(level string) bool {
	_, ok := levelBands[level]
	return ok
}

// SentenceProvider produces one example sentence for a word at a
// difficulty level.
type SentenceProvider interface {
	Generate(ctx context.Context, entry VocabEntry, level string) (GeneratedSentence, error)
}

// DemoProvider is the offline provider: a pure function of (word, level),
// so output is reproducible and the app works with no credentials at all.
type DemoProvider struct{}

func (DemoProvider) Generate(_ context.Context, entry VocabEntry, level string) (GeneratedSentence, error) {
	return GeneratedSentence{
		Word:   entry.Word,
		Level:  level,
		Text:   fmt.Sprintf("(demo) Use %s naturally in a %s sentence.", entry.Word, strings.ToLower(level)),
		Source: SourceDemo,
	}, nil
}

// ModelProvider calls an OpenAI-style chat completions endpoint. Any
// transport, authentication, or malformed-response failure comes back
// wrapped in ErrGenerationFailed; the caller is expected to fall back to
// the demo provider rather than surface the error.
type ModelProvider struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *ModelProvider) Generate(ctx context.Context, entry VocabEntry, level string) (GeneratedSentence, error) {
	prompt := buildSentencePrompt(entry, level)

	payload, err := json.Marshal(chatRequest{
		Model:       p.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
	})
	if err != nil {
		return GeneratedSentence{}, fmt.Errorf("%w: marshal request: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return GeneratedSentence{}, fmt.Errorf("%w: build request: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return GeneratedSentence{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return GeneratedSentence{}, fmt.Errorf("%w: service returned %d: %s", ErrGenerationFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return GeneratedSentence{}, fmt.Errorf("%w: decode response: %v", ErrGenerationFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return GeneratedSentence{}, fmt.Errorf("%w: response has no choices", ErrGenerationFailed)
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return GeneratedSentence{}, fmt.Errorf("%w: empty sentence in response", ErrGenerationFailed)
	}

	// Soft checks only: the original keeps an off-band sentence rather
	// than burning another request on it.
	if !appearsExactlyOnce(entry.Word, text) {
		logWarn("Generated sentence does not use %q exactly once: %s", entry.Word, text)
	}
	if band := levelBands[level]; !withinBand(text, band) {
		logWarn("Generated %s sentence outside %d-%d word band: %s", level, band.MinWords, band.MaxWords, text)
	}

	return GeneratedSentence{
		Word:   entry.Word,
		Level:  level,
		Text:   text,
		Source: SourceModel,
	}, nil
}

// buildSentencePrompt constructs the single-sentence instruction with the
// level's word-count band and style guidance.
func buildSentencePrompt(entry VocabEntry, level string) string {
	band := levelBands[level]
	return fmt.Sprintf(
		"Generate 1 %s sentence using the word '%s'. Definition: %s. "+
			"Constraints: %s, %d-%d words. Use the target word exactly once. "+
			"Output just the sentence.",
		level, entry.Word, entry.Definition, band.Guidance, band.MinWords, band.MaxWords)
}

// appearsExactlyOnce reports whether word occurs exactly once in s as a
// whole word, ignoring case.
func appearsExactlyOnce(word, s string) bool {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return false
	}
	return len(re.FindAllStringIndex(s, -1)) == 1
}

func withinBand(s string, band levelBand) bool {
	n := len(strings.Fields(s))
	return n >= band.MinWords && n <= band.MaxWords
}
