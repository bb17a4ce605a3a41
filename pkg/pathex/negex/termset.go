package negex

import "strings"

// Termset holds the trigger phrases of the NegEx rules.
type Termset struct {
	PrecedingNegations []string `yaml:"preceding_negations"`
	FollowingNegations []string `yaml:"following_negations"`
	PseudoNegations    []string `yaml:"pseudo_negations"`
	Terminations       []string `yaml:"termination"`
}

// ClinicalTermset returns the clinical trigger list, including the
// "no obvious" hedge common in musculoskeletal impressions.
func ClinicalTermset() Termset {
	return Termset{
		PseudoNegations: []string{
			"gram negative", "no further", "not able to be", "not certain if",
			"not certain whether", "not necessarily", "without any further",
			"without difficulty", "without further", "might not", "not only",
			"no increase", "no significant change", "no change", "no definite change",
			"not extend", "not cause", "no interval change", "not rule out",
		},
		PrecedingNegations: []string{
			"absence of", "declined", "denied", "denies", "denying", "no sign of",
			"no signs of", "not", "not demonstrate", "symptoms atypical", "doubt",
			"negative for", "no", "versus", "without", "doesn't", "doesnt", "don't",
			"dont", "didn't", "didnt", "wasn't", "wasnt", "weren't", "werent",
			"isn't", "isnt", "aren't", "arent", "cannot", "can't", "cant",
			"couldn't", "couldnt", "never", "no evidence of", "no evidence for",
			"without evidence of", "without indication of", "no findings of",
			"no suspicious", "no new", "no abnormal", "free of", "rules out",
			"ruled out", "rule out", "r/o", "no obvious", "no definite", "no radiographic evidence of",
		},
		FollowingNegations: []string{
			"declined", "unlikely", "was not", "were not", "wasn't", "weren't",
			"was ruled out", "were ruled out", "is ruled out", "are ruled out",
			"have been ruled out", "has been ruled out", "being ruled out",
			"should be ruled out", "free", "is not seen", "are not seen",
			"is not identified", "are not identified", "not seen", "absent",
			"is excluded", "was excluded",
		},
		Terminations: []string{
			"although", "apart from", "as there are", "aside from", "but",
			"except", "however", "involving", "nevertheless", "still", "though",
			"which", "yet", "cause for", "cause of", "causes for", "causes of",
			"etiology for", "etiology of", "origin for", "origin of", "origins for",
			"origins of", "other possibilities of", "reason for", "reason of",
			"reasons for", "reasons of", "secondary to", "source for", "source of",
			"sources for", "sources of", "trigger event for",
		},
	}
}

// AddPatterns appends the given phrases to the matching categories.
func (t *Termset) AddPatterns(p Termset) {
	t.PrecedingNegations = appendUnique(t.PrecedingNegations, p.PrecedingNegations)
	t.FollowingNegations = appendUnique(t.FollowingNegations, p.FollowingNegations)
	t.PseudoNegations = appendUnique(t.PseudoNegations, p.PseudoNegations)
	t.Terminations = appendUnique(t.Terminations, p.Terminations)
}

// RemovePatterns drops the given phrases from the matching categories.
func (t *Termset) RemovePatterns(p Termset) {
	t.PrecedingNegations = without(t.PrecedingNegations, p.PrecedingNegations)
	t.FollowingNegations = without(t.FollowingNegations, p.FollowingNegations)
	t.PseudoNegations = without(t.PseudoNegations, p.PseudoNegations)
	t.Terminations = without(t.Terminations, p.Terminations)
}

func appendUnique(dst, add []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, s := range dst {
		seen[strings.ToLower(s)] = struct{}{}
	}
	for _, s := range add {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dst = append(dst, key)
	}
	return dst
}

func without(src, drop []string) []string {
	gone := make(map[string]struct{}, len(drop))
	for _, s := range drop {
		gone[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	out := src[:0:0]
	for _, s := range src {
		if _, ok := gone[strings.ToLower(s)]; !ok {
			out = append(out, s)
		}
	}
	return out
}
