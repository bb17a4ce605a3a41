package report

import "strings"

// LookIn selects the part of a report a matcher searches.
type LookIn string

const (
	LookInImpression LookIn = "impression"
	LookInReport     LookIn = "report"
)

// ParseLookIn validates a look-in mode name.
func ParseLookIn(s string) (LookIn, error) {
	switch LookIn(strings.ToLower(strings.TrimSpace(s))) {
	case LookInImpression:
		return LookInImpression, nil
	case LookInReport:
		return LookInReport, nil
	}
	return "", ErrInvalidLookIn
}

// LookIn returns the text selected by mode.
func (r *Report) LookIn(mode LookIn) (string, error) {
	switch mode {
	case LookInImpression:
		return r.Impression(), nil
	case LookInReport:
		return r.Text, nil
	}
	return "", ErrInvalidLookIn
}
