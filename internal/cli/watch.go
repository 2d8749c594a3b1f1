package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultDebounce = 200 * time.Millisecond

// watcher re-validates job files matching pattern whenever they change.
type watcher struct {
	pattern  string
	v        *validator
	out      io.Writer
	logger   *zap.Logger
	debounce time.Duration
	// notify, when set, receives every batch of results after it is reported.
	notify   func([]result)

	fsw     *fsnotify.Watcher
	pending map[string]struct{}
}

func newWatcher(pattern string, v *validator, out io.Writer, logger *zap.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create file watcher")
	}

	return &watcher{
		pattern:  filepath.Clean(pattern),
		v:        v,
		out:      out,
		logger:   logger,
		debounce: defaultDebounce,
		fsw:      fsw,
		pending:  make(map[string]struct{}),
	}, nil
}

// addWatches watches every directory under the static prefix of the pattern.
func (w *watcher) addWatches() error {
	base, _ := doublestar.SplitPattern(filepath.ToSlash(w.pattern))

	return filepath.Walk(filepath.FromSlash(base), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if name := info.Name(); path != filepath.FromSlash(base) && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		} else {
			w.logger.Debug("watching directory", zap.String("path", path))
		}

		return nil
	})
}

func (w *watcher) matches(path string) bool {
	ok, err := doublestar.PathMatch(w.pattern, filepath.Clean(path))

	return err == nil && ok
}

// Run validates every matching file once, then again on each change until ctx is done.
func (w *watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	err := w.addWatches()
	if err != nil {
		return errors.Wrap(err, "unable to watch")
	}

	files, err := expand([]string{w.pattern})
	if err != nil && !errors.Is(err, ErrNoJobFiles) {
		return err
	}

	w.validate(ctx, files)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}

			w.logger.Error("watcher error", zap.Error(err))
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
			}

			return
		}
	}

	if !w.matches(event.Name) {
		return
	}

	w.pending[filepath.Clean(event.Name)] = struct{}{}
	w.logger.Debug("job file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
}

func (w *watcher) flush(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}

	files := make([]string, 0, len(w.pending))

	for path := range w.pending {
		// removed files have nothing left to check
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}

	w.pending = make(map[string]struct{})

	sort.Strings(files)
	w.validate(ctx, files)
}

func (w *watcher) validate(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}

	results, err := w.v.run(ctx, files)
	if err != nil {
		w.logger.Warn("validation interrupted", zap.Error(err))

		return
	}

	report(w.out, results, w.v.strict)

	if w.notify != nil {
		w.notify(results)
	}
}

func newWatchCommand(a *app) *cobra.Command {
	v := &validator{jobs: 1}

	cmd := &cobra.Command{
		Use:     "watch PATTERN",
		Short:   "Re-validate job files whenever they change",
		Example: `  jobopts watch 'options/**/*.yaml'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v.lookup = a.lookup()
			v.logger = a.logger

			if v.jobs < 1 {
				v.jobs = 1
			}

			w, err := newWatcher(args[0], v, cmd.OutOrStdout(), a.logger)
			if err != nil {
				return err
			}

			a.logger.Info("watching job files", zap.String("pattern", args[0]))

			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&v.jobs, "jobs", "j", 4, "files checked in parallel")
	cmd.Flags().BoolVar(&v.strict, "strict", false, "treat data-flow issues as failures")

	return cmd
}
