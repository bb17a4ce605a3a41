package ingest

import (
	"regexp"
	"strings"

	"github.com/tsawler/prose/v3"
)

var sentenceSplit = regexp.MustCompile(`[.!?;]+\s+`)

// segmentOnly skips tagging and entity extraction; only boundaries are used.
var segmentOnly = []prose.DocOpt{
	prose.WithTagging(false),
	prose.WithExtraction(false),
	prose.WithTokenization(false),
}

// Sentence is a sentence with its byte offset into the source text.
type Sentence struct {
	Text  string
	Start int
}

// Sentences segments text into sentences using the prose segmenter and
// falls back to punctuation splitting when the segmenter yields nothing.
// Offsets always refer to text.
func Sentences(text string) []Sentence {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []Sentence
	if doc, err := prose.NewDocument(text, segmentOnly...); err == nil {
		pos := 0
		for _, s := range doc.Sentences() {
			idx := strings.Index(text[pos:], s.Text)
			if idx < 0 {
				out = nil
				break
			}
			out = append(out, Sentence{Text: s.Text, Start: pos + idx})
			pos += idx + len(s.Text)
		}
	}
	if len(out) > 0 {
		return out
	}
	return splitSentences(text)
}

func splitSentences(text string) []Sentence {
	var out []Sentence
	start := 0
	for _, loc := range sentenceSplit.FindAllStringIndex(text, -1) {
		if seg := text[start:loc[0]]; strings.TrimSpace(seg) != "" {
			out = append(out, trimmed(seg, start))
		}
		start = loc[1]
	}
	if seg := text[start:]; strings.TrimSpace(seg) != "" {
		out = append(out, trimmed(seg, start))
	}
	return out
}

func trimmed(seg string, start int) Sentence {
	lead := len(seg) - len(strings.TrimLeft(seg, " \t\n\r"))
	return Sentence{Text: strings.TrimSpace(seg), Start: start + lead}
}
