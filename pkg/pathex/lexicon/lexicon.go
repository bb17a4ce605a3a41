package lexicon

import (
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon maps pathology labels to the other names radiologists use for
// them (RadLex synonyms, abbreviations, spelling variants).
//
// Every variant points back to exactly one canonical label, so a match on
// "ABC" or "aneurysmal bone cyst" predicts the same label.
type Lexicon struct {
	// canonical -> all variants (canonical first)
	synonyms map[string][]string

	// variant -> canonical
	reverseIndex map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		synonyms:     make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// LoadFromYAML loads synonym groups from a YAML file.
//
// Expected format:
//
//	synonyms:
//	  - canonical: aneurysmal bone cyst
//	    variants: [abc]
//	  - canonical: osteoarthritis
//	    variants: [degenerative joint disease, djd]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Synonyms []struct {
			Canonical string   `yaml:"canonical"`
			Variants  []string `yaml:"variants"`
		} `yaml:"synonyms"`
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	lex := New()
	for _, entry := range config.Synonyms {
		lex.AddSynonymGroup(entry.Canonical, entry.Variants)
	}
	return lex, nil
}

// FromMap builds a lexicon from label -> synonyms, e.g. a RadLex export.
func FromMap(groups map[string][]string) *Lexicon {
	lex := New()
	canonicals := make([]string, 0, len(groups))
	for c := range groups {
		canonicals = append(canonicals, c)
	}
	// deterministic ownership when two labels share a synonym
	sort.Strings(canonicals)
	for _, c := range canonicals {
		lex.AddSynonymGroup(c, groups[c])
	}
	return lex
}

// AddSynonymGroup adds a synonym group with a canonical form and its variants.
// The canonical form is always included as the first entry in the variants list.
// If the group already exists, old reverse index entries are cleaned up first.
// A variant already owned by another canonical keeps its first owner.
func (l *Lexicon) AddSynonymGroup(canonical string, variants []string) {
	canonical = normalize(canonical)
	if canonical == "" {
		return
	}

	if oldVariants, exists := l.synonyms[canonical]; exists {
		for _, oldV := range oldVariants {
			if l.reverseIndex[oldV] == canonical {
				delete(l.reverseIndex, oldV)
			}
		}
	}

	normalized := make([]string, 0, len(variants)+1)
	seen := make(map[string]bool)

	normalized = append(normalized, canonical)
	seen[canonical] = true

	for _, v := range variants {
		v = normalize(v)
		if v == "" || seen[v] {
			continue
		}
		if owner, ok := l.reverseIndex[v]; ok && owner != canonical {
			continue
		}
		normalized = append(normalized, v)
		seen[v] = true
	}

	l.synonyms[canonical] = normalized
	for _, v := range normalized {
		l.reverseIndex[v] = canonical
	}
}

// Normalize returns the canonical label of a term.
// If the term is not in the lexicon, returns the term itself.
func (l *Lexicon) Normalize(term string) string {
	term = normalize(term)
	if canonical, ok := l.reverseIndex[term]; ok {
		return canonical
	}
	return term
}

// Variants returns all known variants of a term (including the canonical form).
// If the term is not in the lexicon, returns a slice containing only the term itself.
func (l *Lexicon) Variants(term string) []string {
	term = normalize(term)

	if variants, ok := l.synonyms[term]; ok {
		return variants
	}
	if canonical, ok := l.reverseIndex[term]; ok {
		if variants, ok := l.synonyms[canonical]; ok {
			return variants
		}
	}
	return []string{term}
}

// HasSynonyms returns true if the term is known to the lexicon.
func (l *Lexicon) HasSynonyms(term string) bool {
	_, exists := l.reverseIndex[normalize(term)]
	return exists
}

// Restrict returns a lexicon holding only the groups of the given labels.
// RadLex covers tens of thousands of terms; matching only needs the
// pathology label list.
func (l *Lexicon) Restrict(labels []string) *Lexicon {
	out := New()
	for _, label := range labels {
		if variants, ok := l.synonyms[normalize(label)]; ok {
			out.AddSynonymGroup(variants[0], variants[1:])
		}
	}
	return out
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	total := 0
	for _, variants := range l.synonyms {
		total += len(variants)
	}
	return Stats{SynonymGroups: len(l.synonyms), TotalVariants: total}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	SynonymGroups int
	TotalVariants int
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
