// Command pathex extracts pathology labels from radiology report exports.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/pathex/internal/logging"
	"github.com/cognicore/pathex/pkg/pathex/config"
	"github.com/cognicore/pathex/pkg/pathex/report"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries state shared by subcommands once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	jsonOut    bool

	cfg *config.AppConfig
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pathex",
		Short: "Extract pathology labels from radiology reports",
		Long: `pathex reads a merged radiology report export, finds the impression
section of each report and predicts the pathology it describes from a list
of labels, using exact, fuzzy, word-vector or negation-aware matching.

Configuration is read from --config and PATHEX_* environment variables,
e.g. PATHEX_MATCH_STRATEGY=negation,fuzzy.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		newPredictCmd(a),
		newImpressionsCmd(a),
		newSummaryCmd(a),
		newRunsCmd(a),
		newReportCmd(a),
		newStopwordsCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// section resolves the configured body section; "" selects every report.
func (a *app) section(flag string) (report.BodySection, error) {
	name := a.cfg.Section
	if flag != "" {
		name = flag
	}
	if name == "" {
		return "", nil
	}
	s, ok := report.ParseBodySection(name)
	if !ok {
		return "", fmt.Errorf("unknown body section %q", name)
	}
	return s, nil
}

func (a *app) reportsPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if a.cfg.Data.Reports == "" {
		return "", fmt.Errorf("no reports file: set --reports or data.reports")
	}
	return a.cfg.Data.Reports, nil
}
