// Package cli implements the jobopts command line.
package cli

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/askiada/go-jobopts/pkg/envpath"
	"github.com/askiada/go-jobopts/pkg/jobfile"
	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/scenarios"
)

var ErrNoInput = errors.New("give exactly one job file or --scenario")

type app struct {
	verbose bool
	env     map[string]string
	logger  *zap.Logger
	// newLogger is replaced in tests.
	newLogger func(verbose bool) (*zap.Logger, error)
}

func productionLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return config.Build()
}

// NewRootCommand returns the jobopts command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{newLogger: productionLogger})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "jobopts",
		Short: "Assemble, check and render job-option pipelines",
		Long: `jobopts assembles generation pipelines from YAML job files or built-in scenarios.

It checks the data flow between stages, renders framework option scripts and
draws the pipeline as a Graphviz graph.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := a.newLogger(a.verbose)
			if err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}

			a.logger = logger

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringToStringVar(&a.env, "env", nil, "environment overrides, e.g. --env K4GEN=/opt/k4gen")

	root.AddCommand(
		newRenderCommand(a),
		newValidateCommand(a),
		newDrawCommand(a),
		newComponentsCommand(a),
		newScenariosCommand(a),
		newWatchCommand(a),
	)

	return root
}

// lookup reads --env overrides first, then the process environment.
func (a *app) lookup() envpath.LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := a.env[key]; ok {
			return v, true
		}

		return os.LookupEnv(key)
	}
}

// input selects a job file argument or a built-in scenario.
type input struct {
	scenario string
	strict   bool
}

func (in *input) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&in.scenario, "scenario", "s", "", "use a built-in scenario instead of a job file")
	cmd.Flags().BoolVar(&in.strict, "strict", false, "fail on any data-flow issue")
}

func (in *input) load(a *app, args []string, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	opts = append([]pipeline.Option{pipeline.WithLogger(a.logger)}, opts...)
	if in.strict {
		opts = append(opts, pipeline.WithStrictDataFlow())
	}

	switch {
	case in.scenario != "" && len(args) == 0:
		s, err := scenarios.Lookup(in.scenario)
		if err != nil {
			return nil, err
		}

		return s.Build(a.lookup(), opts...)
	case in.scenario == "" && len(args) == 1:
		return jobfile.LoadFile(args[0], a.lookup(), opts...)
	default:
		return nil, ErrNoInput
	}
}

// output opens path for writing, or returns w when path is empty or "-".
func output(w io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return w, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to create %s", path)
	}

	return f, f.Close, nil
}
