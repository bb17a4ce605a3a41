package ingest

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer handles report text tokenization and normalization
type Tokenizer struct {
	stopwords map[string]struct{}
	stem      bool
	// stemmed stopwords, filled while stemming is on
	stemStops map[string]struct{}
}

// NewTokenizer creates a new tokenizer with the given stopword list
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops}
}

// SetStemming enables snowball stemming of every emitted token.
// "fractures" and "fractured" both become "fractur". While stemming is on
// a token is also dropped when its stem is a stopword or the stem of one,
// so a stoplist of stems ("find") removes "findings" and "finding".
func (t *Tokenizer) SetStemming(on bool) {
	t.stem = on
	t.stemStops = nil
	if on {
		t.stemStops = make(map[string]struct{}, len(t.stopwords))
		for w := range t.stopwords {
			t.stemStops[Stem(w)] = struct{}{}
		}
	}
}

// Tokenize splits text into normalized tokens, removing stopwords,
// punctuation and number-like tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range norm.NFC.String(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			if current.Len() > 0 {
				word := t.processToken(current.String())
				if word != "" {
					tokens = append(tokens, word)
				}
				current.Reset()
			}
		}
	}

	// Don't forget the last token
	if current.Len() > 0 {
		word := t.processToken(current.String())
		if word != "" {
			tokens = append(tokens, word)
		}
	}

	return tokens
}

// processToken applies cleaning, stopword filtering and stemming.
func (t *Tokenizer) processToken(token string) string {
	word := cleanToken(token)
	if word == "" || len(word) <= 1 {
		return ""
	}

	// "12", "2019-12-20" and friends carry no pathology signal
	if isNumericOnly(word) {
		return ""
	}

	if t.isStopword(word) {
		return ""
	}

	if t.stem {
		word = Stem(word)
		if t.isStopword(word) {
			return ""
		}
		if _, ok := t.stemStops[word]; ok {
			return ""
		}
	}
	return word
}

// Stem reduces an English word to its snowball stem. Words the stemmer
// rejects are returned unchanged.
func Stem(word string) string {
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}

// cleanToken strips leading/trailing hyphens and normalizes consecutive hyphens
func cleanToken(token string) string {
	token = strings.Trim(token, "-")
	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}
	return token
}

// isNumericOnly returns true if the token contains only digits and hyphens.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

func (t *Tokenizer) isStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// AddStopword adds a word to the stopword list
func (t *Tokenizer) AddStopword(word string) {
	t.stopwords[strings.ToLower(word)] = struct{}{}
	t.SetStemming(t.stem)
}

// RemoveStopword removes a word from the stopword list
func (t *Tokenizer) RemoveStopword(word string) {
	delete(t.stopwords, strings.ToLower(word))
	t.SetStemming(t.stem)
}
