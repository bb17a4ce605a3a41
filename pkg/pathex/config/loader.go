package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/pathex/pkg/pathex/dataset"
	"github.com/cognicore/pathex/pkg/pathex/fuzz"
	"github.com/cognicore/pathex/pkg/pathex/ingest"
	"github.com/cognicore/pathex/pkg/pathex/internalerr"
	"github.com/cognicore/pathex/pkg/pathex/lexicon"
	"github.com/cognicore/pathex/pkg/pathex/match"
	"github.com/cognicore/pathex/pkg/pathex/negex"
	"github.com/cognicore/pathex/pkg/pathex/vectors"
)

// Loader loads all resource files and constructs components
type Loader struct {
	LabelsPath   string
	StoplistPath string
	LexiconPath  string
	RadLexPath   string
	TermsetPath  string
	VectorsPath  string
	Stemming     bool
	Logger       *zap.Logger
}

// Components holds all loaded components
type Components struct {
	Labels    []string
	Tokenizer *ingest.Tokenizer
	Lexicon   *lexicon.Lexicon
	Termset   negex.Termset
	Vectors   *vectors.Model
}

// NewLoader maps the data section of an AppConfig to a Loader.
func NewLoader(cfg *AppConfig, log *zap.Logger) *Loader {
	return &Loader{
		LabelsPath:   cfg.Data.Labels,
		StoplistPath: cfg.Data.Stoplist,
		LexiconPath:  cfg.Data.Lexicon,
		RadLexPath:   cfg.Data.RadLex,
		TermsetPath:  cfg.Data.Termset,
		VectorsPath:  cfg.Data.Vectors,
		Stemming:     cfg.Match.Tokens,
		Logger:       log,
	}
}

// Load reads all configured files and returns initialized components.
// Labels are required; every other file is optional.
func (l *Loader) Load() (*Components, error) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	comp := &Components{}

	if l.LabelsPath == "" {
		return nil, fmt.Errorf("%w: labels file is required", internalerr.ErrInvalidConfig)
	}
	labels, err := dataset.LoadLabels(l.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	comp.Labels = match.NormalizeLabels(labels)
	if len(comp.Labels) == 0 {
		return nil, fmt.Errorf("load labels: %w", match.ErrNoLabels)
	}

	// Load stoplist
	if l.StoplistPath != "" {
		stoplist, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Tokenizer = ingest.NewTokenizer(stoplist.Terms)
	} else {
		comp.Tokenizer = ingest.NewTokenizer(ingest.DefaultStopwords())
	}
	comp.Tokenizer.SetStemming(l.Stemming)

	// Load lexicon
	if l.LexiconPath != "" {
		comp.Lexicon, err = lexicon.LoadFromYAML(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
	} else {
		comp.Lexicon = lexicon.New()
	}
	if l.RadLexPath != "" {
		syns, err := dataset.LoadRadLexSynonyms(l.RadLexPath)
		if err != nil {
			return nil, fmt.Errorf("load radlex: %w", err)
		}
		merged := mergeRadLex(comp.Lexicon, lexicon.FromMap(syns).Restrict(comp.Labels), comp.Labels)
		log.Info("merged radlex synonyms", zap.Int("labels", merged))
	}

	// Load termset
	if l.TermsetPath != "" {
		comp.Termset, err = LoadTermset(l.TermsetPath)
		if err != nil {
			return nil, fmt.Errorf("load termset: %w", err)
		}
	} else {
		comp.Termset = negex.ClinicalTermset()
	}

	// Load word vectors
	if l.VectorsPath != "" {
		comp.Vectors, err = vectors.LoadFile(l.VectorsPath)
		if err != nil {
			return nil, fmt.Errorf("load vectors: %w", err)
		}
		log.Info("loaded word vectors", zap.Int("words", comp.Vectors.Len()), zap.Int("dim", comp.Vectors.Dim()))
	}

	stats := comp.Lexicon.Stats()
	log.Debug("loaded components",
		zap.Int("labels", len(comp.Labels)),
		zap.Int("synonym_groups", stats.SynonymGroups),
		zap.Int("variants", stats.TotalVariants),
	)
	return comp, nil
}

// mergeRadLex adds the RadLex variants of each label to lex and returns
// how many labels gained synonyms.
func mergeRadLex(lex, radlex *lexicon.Lexicon, labels []string) int {
	n := 0
	for _, label := range labels {
		if !radlex.HasSynonyms(label) || lex.Normalize(label) != label {
			continue
		}
		extra := radlex.Variants(label)[1:]
		if len(extra) == 0 {
			continue
		}
		current := lex.Variants(label)[1:]
		lex.AddSynonymGroup(label, append(append([]string{}, current...), extra...))
		n++
	}
	return n
}

// NewMatcher builds the matcher named by cfg.Strategy. Several names make
// a chain tried in order.
func NewMatcher(ctx context.Context, cfg MatchConfig, comp *Components, log *zap.Logger) (match.Matcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	names := cfg.Strategies()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no strategy", internalerr.ErrInvalidConfig)
	}

	matchers := make([]match.Matcher, 0, len(names))
	for _, name := range names {
		m, err := newStrategy(ctx, name, cfg, comp, log)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", name, err)
		}
		matchers = append(matchers, m)
	}
	if len(matchers) == 1 {
		return matchers[0], nil
	}
	return match.NewChain(matchers...), nil
}

func newStrategy(ctx context.Context, name string, cfg MatchConfig, comp *Components, log *zap.Logger) (match.Matcher, error) {
	switch name {
	case StrategyExact:
		e, err := match.NewExact(comp.Labels, comp.Lexicon)
		if err != nil {
			return nil, err
		}
		return e, nil
	case StrategyFuzzy:
		scorer, err := fuzz.ScorerByName(cfg.Scorer)
		if err != nil {
			return nil, err
		}
		opts := []match.FuzzyOption{match.WithScorer(cfg.Scorer, scorer)}
		if cfg.Tokens {
			opts = append(opts, match.WithTokens(comp.Tokenizer))
		}
		f, err := match.NewFuzzy(comp.Labels, cfg.Threshold, opts...)
		if err != nil {
			return nil, err
		}
		return f, nil
	case StrategyVector:
		if comp.Vectors == nil {
			return nil, fmt.Errorf("%w: vector strategy needs data.vectors", internalerr.ErrInvalidConfig)
		}
		v, err := match.NewVector(ctx, comp.Vectors, comp.Labels, cfg.VectorThreshold)
		if err != nil {
			return nil, err
		}
		if skipped := v.Skipped(); len(skipped) > 0 {
			log.Warn("labels without in-vocabulary tokens are skipped",
				zap.Int("count", len(skipped)), zap.Strings("labels", skipped))
		}
		return v, nil
	case StrategyNegation:
		n, err := match.NewNegation(comp.Labels, comp.Lexicon, comp.Termset)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", internalerr.ErrInvalidConfig, name)
}
