// Package stoplist suggests report boilerplate tokens as stopwords.
//
// Dictation templates repeat the same words in nearly every impression
// ("findings", "consistent", "seen"). Tokens with a high document frequency
// and no overlap with a pathology label are proposed for the stoplist used
// by fuzzy token matching.
package stoplist

import (
	"math"
	"sort"
	"strings"
)

// Manager holds the current stoplist and any protected tokens.
type Manager struct {
	stops     map[string]Reason
	protected map[string]struct{}
}

// Reason records why a token was added.
type Reason struct {
	HighDF    bool
	DFPercent float64
	IDF       float64
}

// NewManager creates a manager seeded with an existing stoplist.
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]Reason, len(initialStops))
	for _, s := range initialStops {
		stops[strings.ToLower(s)] = Reason{}
	}
	return &Manager{stops: stops, protected: map[string]struct{}{}}
}

// Protect marks tokens that must never be suggested, typically the tokens
// of the pathology labels.
func (m *Manager) Protect(tokens ...string) {
	for _, t := range tokens {
		m.protected[strings.ToLower(t)] = struct{}{}
	}
}

func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[strings.ToLower(token)]
	return ok
}

func (m *Manager) Add(token string, reason Reason) {
	m.stops[strings.ToLower(token)] = reason
}

func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// All returns the stoplist sorted alphabetically.
func (m *Manager) All() []string {
	out := make([]string, 0, len(m.stops))
	for s := range m.stops {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Stats is the document frequency of one token over a corpus.
type Stats struct {
	Token     string
	DF        int
	DFPercent float64
	IDF       float64
}

// Candidate is a suggested stopword.
type Candidate struct {
	Token  string
	Reason Reason
	Score  float64
}

// Thresholds bound which tokens are suggested. MinDocs keeps tiny corpora
// from proposing every token.
type Thresholds struct {
	DFPercent float64
	MinDocs   int
}

// DefaultThresholds suggests tokens present in more than 60% of at least
// ten documents.
func DefaultThresholds() Thresholds {
	return Thresholds{DFPercent: 60, MinDocs: 10}
}

// Collect counts document frequency over tokenized documents. Stats are
// ordered by descending DF, then token.
func Collect(docs [][]string) []Stats {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	n := float64(len(docs))
	stats := make([]Stats, 0, len(df))
	for tok, c := range df {
		stats = append(stats, Stats{
			Token:     tok,
			DF:        c,
			DFPercent: 100 * float64(c) / n,
			IDF:       math.Log(n / float64(c)),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].DF != stats[j].DF {
			return stats[i].DF > stats[j].DF
		}
		return stats[i].Token < stats[j].Token
	})
	return stats
}

// SuggestCandidates returns tokens above the DF threshold that are neither
// already stopwords nor protected, best first.
func (m *Manager) SuggestCandidates(stats []Stats, docs int, th Thresholds) []Candidate {
	if docs < th.MinDocs {
		return nil
	}
	var out []Candidate
	for _, s := range stats {
		if m.IsStop(s.Token) {
			continue
		}
		if _, ok := m.protected[s.Token]; ok {
			continue
		}
		if s.DFPercent <= th.DFPercent {
			continue
		}
		out = append(out, Candidate{
			Token:  s.Token,
			Reason: Reason{HighDF: true, DFPercent: s.DFPercent, IDF: s.IDF},
			Score:  s.DFPercent / 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Accept adds every candidate to the stoplist.
func (m *Manager) Accept(cands []Candidate) {
	for _, c := range cands {
		m.Add(c.Token, c.Reason)
	}
}
