// Package negex decides whether a term mentioned in clinical prose is
// negated, following the NegEx trigger rules.
//
// Within a sentence a preceding trigger ("no", "without", "negative for")
// negates the terms after it, and a following trigger ("is ruled out",
// "unlikely") negates the terms before it. A termination phrase ("but",
// "however", "secondary to") closes a trigger's scope. Pseudo triggers
// ("no change", "not only") look like negations but never are.
package negex

import (
	"regexp"
	"sort"
	"strings"

	"github.com/cognicore/pathex/pkg/pathex/ingest"
)

// Mention is one occurrence of a term in annotated text.
type Mention struct {
	Term     string
	Start    int
	End      int
	Sentence int
	Negated  bool
	Trigger  string
}

type span struct {
	start, end int
	text       string
}

// Detector applies a termset to text.
type Detector struct {
	preceding   *regexp.Regexp
	following   *regexp.Regexp
	pseudo      *regexp.Regexp
	termination *regexp.Regexp
}

// New compiles a detector from a termset.
func New(ts Termset) *Detector {
	return &Detector{
		preceding:   compile(ts.PrecedingNegations),
		following:   compile(ts.FollowingNegations),
		pseudo:      compile(ts.PseudoNegations),
		termination: compile(ts.Terminations),
	}
}

// compile builds a case-insensitive, word-bounded alternation that tries
// longer phrases first.
func compile(phrases []string) *regexp.Regexp {
	var alts []string
	for _, p := range phrases {
		p = strings.ToLower(strings.Join(strings.Fields(p), " "))
		if p != "" {
			alts = append(alts, p)
		}
	}
	if len(alts) == 0 {
		return nil
	}
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	for i, a := range alts {
		pat := strings.ReplaceAll(regexp.QuoteMeta(a), " ", `\s+`)
		if isWordByte(a[0]) {
			pat = `\b` + pat
		}
		if isWordByte(a[len(a)-1]) {
			pat += `\b`
		}
		alts[i] = pat
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(alts, "|") + `)`)
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func find(re *regexp.Regexp, s string) []span {
	if re == nil {
		return nil
	}
	var out []span
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		out = append(out, span{start: m[2], end: m[3], text: strings.ToLower(s[m[2]:m[3]])})
	}
	return out
}

// Negated reports whether the span [start,end) of sentence is negated.
func (d *Detector) Negated(sentence string, start, end int) bool {
	neg, _ := d.negated(sentence, start, end)
	return neg
}

func (d *Detector) negated(sentence string, start, end int) (bool, string) {
	pseudo := find(d.pseudo, sentence)
	terms := find(d.termination, sentence)

	usable := func(s span) bool {
		if overlaps(s, span{start: start, end: end}) {
			return false
		}
		for _, p := range pseudo {
			if overlaps(s, p) {
				return false
			}
		}
		return true
	}

	for _, p := range find(d.preceding, sentence) {
		if !usable(p) || p.end > start {
			continue
		}
		if !terminated(terms, p.end, start) {
			return true, p.text
		}
	}
	for _, f := range find(d.following, sentence) {
		if !usable(f) || f.start < end {
			continue
		}
		if !terminated(terms, end, f.start) {
			return true, f.text
		}
	}
	return false, ""
}

// terminated reports whether a termination phrase lies within [from,to).
func terminated(terms []span, from, to int) bool {
	for _, t := range terms {
		if t.start >= from && t.end <= to {
			return true
		}
	}
	return false
}

func overlaps(a, b span) bool {
	return a.start < b.end && b.start < a.end
}

// Annotate finds every mention of terms in text and marks the negated
// ones. Overlapping mentions keep the longest term; results are in text
// order.
func (d *Detector) Annotate(text string, terms []string) []Mention {
	mentions := findMentions(text, terms)
	if len(mentions) == 0 {
		return nil
	}

	sents := ingest.Sentences(text)
	for i := range mentions {
		m := &mentions[i]
		idx, sent := sentenceFor(sents, text, m.Start)
		m.Sentence = idx
		local := m.Start - sent.Start
		localEnd := min(m.End-sent.Start, len(sent.Text))
		m.Negated, m.Trigger = d.negated(sent.Text, local, localEnd)
	}
	return mentions
}

func sentenceFor(sents []ingest.Sentence, text string, pos int) (int, ingest.Sentence) {
	for i, s := range sents {
		if pos >= s.Start && pos < s.Start+len(s.Text) {
			return i, s
		}
	}
	// mention fell between segmenter boundaries; treat the text as one sentence
	return -1, ingest.Sentence{Text: text}
}

func findMentions(text string, terms []string) []Mention {
	var all []Mention
	for _, term := range terms {
		key := strings.ToLower(strings.Join(strings.Fields(term), " "))
		if key == "" {
			continue
		}
		re := compile([]string{key})
		for _, s := range find(re, text) {
			all = append(all, Mention{Term: key, Start: s.start, End: s.end})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].End-all[i].Start > all[j].End-all[j].Start
	})

	var kept []Mention
	for _, m := range all {
		if n := len(kept); n > 0 && m.Start < kept[n-1].End {
			if m.End-m.Start > kept[n-1].End-kept[n-1].Start {
				kept[n-1] = m
			}
			continue
		}
		kept = append(kept, m)
	}
	return kept
}
