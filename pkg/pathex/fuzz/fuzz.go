// Package fuzz scores string similarity on a 0-100 scale.
//
// The scorers follow the widely used fuzzy-matching family: Ratio is the
// normalized Indel (insert/delete) similarity, PartialRatio aligns the
// shorter string against substrings of the longer one, and the token
// scorers compare word sets independent of order. Scores are computed on
// runes. An empty input scores 0 against anything. No scorer preprocesses
// its inputs; callers that want punctuation-insensitive scores apply
// Process to both sides first.
package fuzz

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Scorer compares two strings and returns a similarity in [0,100].
type Scorer func(a, b string) float64

// ScorerByName resolves a scorer from its configuration name.
func ScorerByName(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ratio":
		return Ratio, nil
	case "", "partial", "partial_ratio":
		return PartialRatio, nil
	case "token_sort", "token_sort_ratio":
		return TokenSortRatio, nil
	case "token_set", "token_set_ratio":
		return TokenSetRatio, nil
	case "wratio", "weighted":
		return WRatio, nil
	}
	return nil, fmt.Errorf("unknown scorer %q", name)
}

// Ratio returns 100 * (1 - indel / (len(a)+len(b))).
func Ratio(a, b string) float64 {
	return ratioRunes([]rune(a), []rune(b))
}

func ratioRunes(a, b []rune) float64 {
	total := len(a) + len(b)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return 100 * float64(2*lcs(a, b)) / float64(total)
}

// lcs returns the length of the longest common subsequence.
func lcs(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// PartialRatio returns the best Ratio between the shorter string and any
// window of the longer one. Windows include the partial prefixes and
// suffixes that hang over either end of the longer string.
func PartialRatio(a, b string) float64 {
	s, l := []rune(a), []rune(b)
	if len(s) > len(l) {
		s, l = l, s
	}
	if len(s) == 0 {
		return 0
	}

	m, n := len(s), len(l)
	best := 0.0
	try := func(window []rune) bool {
		if r := ratioRunes(s, window); r > best {
			best = r
		}
		return best == 100
	}

	for i := 0; i+m <= n; i++ {
		if try(l[i : i+m]) {
			return 100
		}
	}
	for i := 1; i < m && i <= n; i++ {
		if try(l[:i]) {
			return 100
		}
	}
	for i := n - m + 1; i < n; i++ {
		if i < 0 {
			continue
		}
		if try(l[i:]) {
			return 100
		}
	}
	return best
}

// TokenSortRatio compares the strings after sorting their words.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared words against each side's leftovers.
// A side whose words are all contained in the other scores 100.
func TokenSetRatio(a, b string) float64 {
	inter, diffAB, diffBA := tokenSets(a, b)
	if inter == "" {
		return Ratio(diffAB, diffBA)
	}
	if diffAB == "" || diffBA == "" {
		return 100
	}

	t1 := inter + " " + diffAB
	t2 := inter + " " + diffBA
	return max(Ratio(inter, t1), Ratio(inter, t2), Ratio(t1, t2))
}

func partialTokenSortRatio(a, b string) float64 {
	return PartialRatio(sortedTokens(a), sortedTokens(b))
}

func partialTokenSetRatio(a, b string) float64 {
	inter, diffAB, diffBA := tokenSets(a, b)
	if inter != "" {
		return 100
	}
	return PartialRatio(diffAB, diffBA)
}

// WRatio weighs the other scorers by how different the lengths are.
func WRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	la, lb := float64(len([]rune(a))), float64(len([]rune(b)))
	lenRatio := max(la, lb) / min(la, lb)

	base := Ratio(a, b)
	if lenRatio < 1.5 {
		return max(base, TokenSortRatio(a, b)*0.95, TokenSetRatio(a, b)*0.95)
	}

	scale := 0.9
	if lenRatio >= 8 {
		scale = 0.6
	}
	return max(base,
		PartialRatio(a, b)*scale,
		partialTokenSortRatio(a, b)*0.95*scale,
		partialTokenSetRatio(a, b)*0.95*scale,
	)
}

// Process lowercases, replaces every non letter/digit with a space and
// collapses whitespace.
func Process(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

func sortedTokens(s string) string {
	toks := strings.Fields(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

func tokenSets(a, b string) (inter, diffAB, diffBA string) {
	setA := toSet(a)
	setB := toSet(b)

	var i, ab, ba []string
	for t := range setA {
		if _, ok := setB[t]; ok {
			i = append(i, t)
		} else {
			ab = append(ab, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			ba = append(ba, t)
		}
	}
	sort.Strings(i)
	sort.Strings(ab)
	sort.Strings(ba)
	return strings.Join(i, " "), strings.Join(ab, " "), strings.Join(ba, " ")
}

func toSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}
