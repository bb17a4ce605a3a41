// Package vectors loads static word embeddings and composes them into
// text vectors.
package vectors

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/philippgille/chromem-go"

	"github.com/cognicore/pathex/pkg/pathex/internalerr"
)

// ErrNoVector is returned when no token of a text is in the vocabulary.
var ErrNoVector = errors.New("vectors: no in-vocabulary token")

// Model maps words to dense vectors of a fixed dimension.
type Model struct {
	dim  int
	vecs map[string][]float32
}

// NewModel builds a model from an in-memory table. All vectors must share
// one dimension.
func NewModel(words map[string][]float32) (*Model, error) {
	m := &Model{vecs: make(map[string][]float32, len(words))}
	for w, v := range words {
		if err := m.add(strings.ToLower(w), v); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Model) add(word string, v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty vector for %q", internalerr.ErrInvalidInput, word)
	}
	if m.dim == 0 {
		m.dim = len(v)
	}
	if len(v) != m.dim {
		return fmt.Errorf("%w: %q has dimension %d, want %d", internalerr.ErrInvalidInput, word, len(v), m.dim)
	}
	if _, ok := m.vecs[word]; !ok {
		m.vecs[word] = v
	}
	return nil
}

// LoadFile reads a word2vec or GloVe text file.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vectors: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads "word v1 ... vn" lines. A leading "count dim" header line is
// accepted and skipped. The first occurrence of a word wins.
func Load(r io.Reader) (*Model, error) {
	m := &Model{vecs: make(map[string][]float32)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && len(fields) == 2 && isInt(fields[0]) && isInt(fields[1]) {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d has no vector", internalerr.ErrInvalidInput, line)
		}
		v := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", internalerr.ErrInvalidInput, line, err)
			}
			v[i] = float32(x)
		}
		if err := m.add(strings.ToLower(fields[0]), v); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}
	if len(m.vecs) == 0 {
		return nil, fmt.Errorf("%w: no vectors", internalerr.ErrInvalidInput)
	}
	return m, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// Dim returns the vector dimension.
func (m *Model) Dim() int { return m.dim }

// Len returns the vocabulary size.
func (m *Model) Len() int { return len(m.vecs) }

// Has reports whether word is in the vocabulary.
func (m *Model) Has(word string) bool {
	_, ok := m.vecs[strings.ToLower(word)]
	return ok
}

// Vector returns the vector for word, or nil.
func (m *Model) Vector(word string) []float32 {
	return m.vecs[strings.ToLower(word)]
}

// Tokens splits text into lowercase word tokens.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
	})
}

// Embed returns the mean of the vectors of the known tokens of text, or
// nil when none is known.
func (m *Model) Embed(text string) []float32 {
	var sum []float64
	n := 0
	for _, tok := range Tokens(text) {
		v, ok := m.vecs[tok]
		if !ok {
			continue
		}
		if sum == nil {
			sum = make([]float64, m.dim)
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		n++
	}
	if n == 0 {
		return nil
	}
	out := make([]float32, m.dim)
	for i := range sum {
		out[i] = float32(sum[i] / float64(n))
	}
	return out
}

// OOV returns the tokens of text missing from the vocabulary.
func (m *Model) OOV(text string) []string {
	var out []string
	for _, tok := range Tokens(text) {
		if _, ok := m.vecs[tok]; !ok {
			out = append(out, tok)
		}
	}
	return out
}

// Similarity is the cosine similarity of two texts' embeddings. It is 0
// when either side has no known token.
func (m *Model) Similarity(a, b string) float64 {
	return Cosine(m.Embed(a), m.Embed(b))
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// empty, zero, or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// EmbeddingFunc adapts the model for a chromem collection. Texts without a
// known token yield ErrNoVector.
func (m *Model) EmbeddingFunc() chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		v := m.Embed(text)
		if v == nil || IsZero(v) {
			return nil, fmt.Errorf("%w: %q", ErrNoVector, text)
		}
		return v, nil
	}
}
