package match

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"github.com/cognicore/pathex/pkg/pathex/vectors"
)

// DefaultVectorThreshold is the cosine similarity a vector prediction must
// exceed.
const DefaultVectorThreshold = 0.5

const labelCollection = "pathology-labels"

// Vector embeds labels and text with word vectors and predicts the label
// most similar to the text when the similarity exceeds the threshold.
type Vector struct {
	model     *vectors.Model
	coll      *chromem.Collection
	threshold float64
	skipped   []string
}

// NewVector embeds every label into an in-memory collection. Labels with
// no in-vocabulary token are left out and listed by Skipped.
func NewVector(ctx context.Context, model *vectors.Model, labels []string, threshold float64) (*Vector, error) {
	labels = NormalizeLabels(labels)
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}
	if threshold < -1 || threshold > 1 {
		return nil, fmt.Errorf("%w: vector threshold %.2f not in [-1,1]", ErrInvalidThreshold, threshold)
	}

	db := chromem.NewDB()
	coll, err := db.CreateCollection(labelCollection, nil, model.EmbeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("create label collection: %w", err)
	}

	v := &Vector{model: model, coll: coll, threshold: threshold}
	docs := make([]chromem.Document, 0, len(labels))
	for i, label := range labels {
		emb := model.Embed(label)
		if emb == nil || vectors.IsZero(emb) {
			v.skipped = append(v.skipped, label)
			continue
		}
		docs = append(docs, chromem.Document{
			ID:        strconv.Itoa(i),
			Content:   label,
			Metadata:  map[string]string{"label": label},
			Embedding: emb,
		})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no label has an in-vocabulary token", ErrNoLabels)
	}
	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("add label embeddings: %w", err)
	}
	return v, nil
}

func (v *Vector) Name() string { return "vector" }

// Skipped returns the labels that could not be embedded.
func (v *Vector) Skipped() []string { return v.skipped }

func (v *Vector) Match(ctx context.Context, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	emb := v.model.Embed(text)
	if emb == nil || vectors.IsZero(emb) {
		return none(v.Name()), nil
	}

	results, err := v.coll.QueryEmbedding(ctx, emb, v.coll.Count(), nil, nil)
	if err != nil {
		return Prediction{}, fmt.Errorf("query labels: %w", err)
	}
	if len(results) == 0 {
		return none(v.Name()), nil
	}

	// equal similarities resolve to the earlier label
	top := results[0]
	topIdx, _ := strconv.Atoi(top.ID)
	for _, r := range results[1:] {
		if r.Similarity < top.Similarity {
			break
		}
		if idx, _ := strconv.Atoi(r.ID); idx < topIdx {
			top, topIdx = r, idx
		}
	}

	score := float64(top.Similarity)
	if score <= v.threshold {
		p := none(v.Name())
		p.Score = score
		return p, nil
	}
	return Prediction{Label: top.Metadata["label"], Score: score, Strategy: v.Name(), Evidence: top.Content}, nil
}
