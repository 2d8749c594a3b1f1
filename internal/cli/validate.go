package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sort"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-jobopts/pkg/envpath"
	"github.com/askiada/go-jobopts/pkg/jobfile"
	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/pipeline/measure"
	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrNoJobFiles       = errors.New("no job file matched")
)

// result is the outcome of checking one job file.
type result struct {
	path   string
	issues []pipeline.Issue
	err    error
}

func (r result) failed(strict bool) bool {
	return r.err != nil || (strict && len(r.issues) > 0)
}

type validator struct {
	lookup  envpath.LookupFunc
	logger  *zap.Logger
	jobs    int
	strict  bool
	// measure, when set, records how long each file took to assemble.
	measure *measure.DefaultMeasure
}

// expand resolves doublestar patterns into a sorted, duplicate-free file list. Plain paths pass through.
func expand(patterns []string) ([]string, error) {
	seen := map[string]struct{}{}

	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "bad pattern %q", pattern)
		}

		for _, m := range matches {
			m = filepath.Clean(m)
			if _, ok := seen[m]; ok {
				continue
			}

			seen[m] = struct{}{}
			files = append(files, m)
		}
	}

	if len(files) == 0 {
		return nil, errors.Wrapf(ErrNoJobFiles, "%v", patterns)
	}

	sort.Strings(files)

	return files, nil
}

// run checks every file, each in its own pipeline, at most v.jobs at a time. Results keep the input order.
func (v *validator) run(ctx context.Context, files []string) ([]result, error) {
	results := make([]result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.jobs)

	for i, path := range files {
		i, path := i, path

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = v.check(path)

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, errors.Wrap(err, "validation interrupted")
	}

	return results, nil
}

func (v *validator) check(path string) result {
	logger := v.logger.With(zap.String("file", path))

	f, err := jobfile.DecodeFile(path)
	if err != nil {
		return result{path: path, err: err}
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if v.measure != nil {
		opts = append(opts, pipeline.WithHook(measure.PipelineMeasure(v.measure, path)))
	}

	// issues are collected here; strictness is decided by the caller
	p, err := f.Assemble(v.lookup, opts...)
	if err != nil {
		return result{path: path, err: err}
	}

	issues, err := p.Validate()
	if err != nil {
		return result{path: path, err: err}
	}

	return result{path: path, issues: issues}
}

func report(w io.Writer, results []result, strict bool) int {
	failed := 0

	for _, r := range results {
		switch {
		case r.err != nil:
			fmt.Fprintf(w, "FAIL %s: %v\n", r.path, r.err)
		case len(r.issues) == 0:
			fmt.Fprintf(w, "ok   %s\n", r.path)
		default:
			status := "warn"
			if strict {
				status = "FAIL"
			}

			fmt.Fprintf(w, "%-4s %s\n", status, r.path)

			for _, issue := range r.issues {
				fmt.Fprintf(w, "     %s\n", issue)
			}
		}

		if r.failed(strict) {
			failed++
		}
	}

	return failed
}

// reportTimings prints the assembly time of every file that assembled.
func reportTimings(w io.Writer, m *measure.DefaultMeasure) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tTOTAL\tAVG/APPEND\tSTAGES\tSERVICES")

	for _, name := range m.Names() {
		mt := m.GetMetric(name)
		if mt.GetTotalDuration() == 0 {
			continue
		}

		stages := int64(0)
		appended := mt.Appended()

		for kind, n := range appended {
			if model.Kind(kind).IsStage() {
				stages += n
			}
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", name, mt.GetTotalDuration(), mt.AVGDuration(), stages,
			appended[string(model.ServiceKind)])
	}

	return tw.Flush()
}

func newValidateCommand(a *app) *cobra.Command {
	var timings bool

	v := &validator{}

	cmd := &cobra.Command{
		Use:   "validate PATTERN...",
		Short: "Check job files in parallel",
		Long: `validate assembles every job file matching the patterns and reports data-flow issues.
Patterns support ** (e.g. options/**/*.yaml).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v.lookup = a.lookup()
			v.logger = a.logger

			if v.jobs < 1 {
				v.jobs = 1
			}

			if timings {
				v.measure = measure.NewDefaultMeasure()
			}

			files, err := expand(args)
			if err != nil {
				return err
			}

			results, err := v.run(cmd.Context(), files)
			if err != nil {
				return err
			}

			failed := report(cmd.OutOrStdout(), results, v.strict)
			a.logger.Info("validation done", zap.Int("files", len(results)), zap.Int("failed", failed))

			if timings {
				fmt.Fprintln(cmd.OutOrStdout())

				if err := reportTimings(cmd.OutOrStdout(), v.measure); err != nil {
					return err
				}
			}

			if failed > 0 {
				return errors.Wrapf(ErrValidationFailed, "%d of %d job files", failed, len(results))
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&v.jobs, "jobs", "j", runtime.NumCPU(), "files checked in parallel")
	cmd.Flags().BoolVar(&v.strict, "strict", false, "treat data-flow issues as failures")
	cmd.Flags().BoolVar(&timings, "timings", false, "print how long each file took to assemble")

	return cmd
}
