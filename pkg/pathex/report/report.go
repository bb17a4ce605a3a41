package report

import (
	"errors"
	"regexp"
	"strings"
)

const (
	// ImpressionToken marks the start of the impression section.
	ImpressionToken = "impression:"
	// SignatureToken marks the start of the electronic signature section.
	SignatureToken = "electronic signature"
)

// Headers are the section keywords that end the impression section.
var Headers = []string{
	"examination",
	"clinical indication",
	"history",
	"technique",
	"comparison",
	"electronic signature",
}

var (
	ErrNoImpression  = errors.New("report has no impression section")
	ErrNoSignature   = errors.New("report has no electronic signature section")
	ErrNoAuthors     = errors.New("report signature names no authors")
	ErrNoGroundTruth = errors.New("ground truth pathology has not been assigned")
	ErrNoPrediction  = errors.New("predicted pathology has not been assigned")
	ErrInvalidLookIn = errors.New("look-in must be 'impression' or 'report'")
	ErrEmptyText     = errors.New("report text is required")
)

var (
	sameAuthorPattern = regexp.MustCompile(`signed by(.*?)\d`)
	dictatorPattern   = regexp.MustCompile(`dictated by(.*?)and signed by`)
)

// Report is a single radiology report together with the spreadsheet
// metadata it was exported with. Text and GroundTruth are lowercased.
type Report struct {
	Text        string
	GroundTruth string
	Predicted   string

	File            string
	Week            string
	Day             string
	Modality        string
	ExamDescription string
	Reason          string
	OrigAccession   string
	AnonAccession   string
	AnonAccession1  string
	AnonAccession2  string

	authors *authors
}

type authors struct {
	dictator string
	signer   string
	err      error
}

// New creates a report from raw text and an optional expert label.
func New(text, groundTruth string) *Report {
	return &Report{
		Text:        strings.ToLower(text),
		GroundTruth: strings.ToLower(groundTruth),
	}
}

// Validate checks that the report carries text.
func (r *Report) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// IsPredictionRight compares the predicted pathology with the ground truth.
func (r *Report) IsPredictionRight() (bool, error) {
	if r.GroundTruth == "" {
		return false, ErrNoGroundTruth
	}
	if r.Predicted == "" {
		return false, ErrNoPrediction
	}
	return strings.EqualFold(r.Predicted, r.GroundTruth), nil
}

// HasImpression reports whether the text contains an impression marker.
func (r *Report) HasImpression() bool {
	return strings.Contains(r.Text, ImpressionToken)
}

// HasElectronicSignature reports whether the text contains a signature marker.
func (r *Report) HasElectronicSignature() bool {
	return strings.Contains(r.Text, SignatureToken)
}

// Impression returns the impression section, or "" when there is none.
//
// The scan is token based: collection starts after the token holding
// "impression:" and stops at the first token that contains a header
// keyword. Multi-word headers can never be contained in a single token.
func (r *Report) Impression() string {
	imp, _ := r.ImpressionE()
	return imp
}

// ImpressionE is Impression with ErrNoImpression for reports without one.
func (r *Report) ImpressionE() (string, error) {
	if !r.HasImpression() {
		return "", ErrNoImpression
	}

	var words []string
	inside := false
	for _, tok := range strings.Fields(r.Text) {
		if containsHeader(tok) {
			break
		}
		if inside {
			words = append(words, tok)
		}
		if strings.Contains(tok, ImpressionToken) {
			inside = true
		}
	}
	return strings.Join(words, " "), nil
}

func containsHeader(token string) bool {
	for _, h := range Headers {
		if strings.Contains(token, h) {
			return true
		}
	}
	return false
}

// ElectronicSignature returns everything after the signature marker, or ""
// when the report is unsigned. The signature is assumed to be the last
// section of the report.
func (r *Report) ElectronicSignature() string {
	sig, _ := r.ElectronicSignatureE()
	return sig
}

// ElectronicSignatureE is ElectronicSignature with ErrNoSignature.
func (r *Report) ElectronicSignatureE() (string, error) {
	if !r.HasElectronicSignature() {
		return "", ErrNoSignature
	}

	var words []string
	inside := false
	for _, bigram := range Bigrams(r.Text) {
		if inside {
			// second word only, the first was emitted by the previous bigram
			words = append(words, bigram[strings.IndexByte(bigram, ' ')+1:])
		}
		if strings.Contains(bigram, SignatureToken) {
			inside = true
		}
	}
	return strings.Join(words, " "), nil
}

// Authors returns the doctors that dictated and signed the report. They
// can be the same person. The result is computed once per report.
func (r *Report) Authors() (dictator, signer string, err error) {
	if r.authors == nil {
		r.authors = r.parseAuthors()
	}
	return r.authors.dictator, r.authors.signer, r.authors.err
}

func (r *Report) parseAuthors() *authors {
	sig, err := r.ElectronicSignatureE()
	if err != nil {
		return &authors{err: err}
	}

	signed := sameAuthorPattern.FindStringSubmatch(sig)
	if signed == nil {
		return &authors{err: ErrNoAuthors}
	}
	signer := strings.TrimSpace(signed[1])

	if strings.Contains(sig, "dictated by and signed by") {
		return &authors{dictator: signer, signer: signer}
	}

	dictated := dictatorPattern.FindStringSubmatch(sig)
	if dictated == nil {
		return &authors{err: ErrNoAuthors}
	}
	return &authors{dictator: strings.TrimSpace(dictated[1]), signer: signer}
}

// Dictator returns the doctor that dictated the report.
func (r *Report) Dictator() (string, error) {
	d, _, err := r.Authors()
	return d, err
}

// Signer returns the doctor that signed the report.
func (r *Report) Signer() (string, error) {
	_, s, err := r.Authors()
	return s, err
}

// Bigrams returns every pair of consecutive whitespace-separated words.
func Bigrams(s string) []string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return nil
	}
	out := make([]string, 0, len(fields)-1)
	for i := 0; i+1 < len(fields); i++ {
		out = append(out, fields[i]+" "+fields[i+1])
	}
	return out
}
