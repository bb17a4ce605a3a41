package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/pathex/pkg/pathex/internalerr"
	"github.com/cognicore/pathex/pkg/pathex/negex"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// SaveStoplist writes stopwords in the format LoadStoplist reads.
func SaveStoplist(path string, terms []string) error {
	data, err := yaml.Marshal(Stoplist{Terms: terms})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// TermsetFile is the YAML form of a negation termset. Base selects the
// starting list ("clinical" or "none"); Add and Remove edit it.
//
//	base: clinical
//	add:
//	  preceding_negations: [no convincing]
//	remove:
//	  termination: [which]
type TermsetFile struct {
	Base   string        `yaml:"base"`
	Add    negex.Termset `yaml:"add"`
	Remove negex.Termset `yaml:"remove"`
}

// LoadTermset loads a negation termset from a YAML file
func LoadTermset(path string) (negex.Termset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return negex.Termset{}, err
	}

	var f TermsetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return negex.Termset{}, err
	}

	var ts negex.Termset
	switch f.Base {
	case "", "clinical":
		ts = negex.ClinicalTermset()
	case "none":
	default:
		return negex.Termset{}, fmt.Errorf("%w: unknown termset base %q", internalerr.ErrInvalidConfig, f.Base)
	}
	ts.AddPatterns(f.Add)
	ts.RemovePatterns(f.Remove)
	return ts, nil
}
