package cli

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/askiada/go-jobopts/pkg/pipeline"
	"github.com/askiada/go-jobopts/pkg/render"
)

var ErrUnknownFormat = errors.New("unknown output format")

type renderFunc func(w io.Writer, p *pipeline.Pipeline) error

func renderer(format string) (renderFunc, error) {
	switch format {
	case "python", "py":
		return render.Python, nil
	case "yaml", "yml":
		return render.YAML, nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}

func newRenderCommand(a *app) *cobra.Command {
	var (
		in     input
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "render [job.yaml]",
		Short: "Render a pipeline as an options script or a job file",
		Example: `  jobopts render --scenario pythia > pythia.py
  jobopts render --format yaml --env K4GEN=/opt/k4gen options/particleGun.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			write, err := renderer(format)
			if err != nil {
				return err
			}

			p, err := in.load(a, args)
			if err != nil {
				return err
			}

			w, closeOut, err := output(cmd.OutOrStdout(), out)
			if err != nil {
				return err
			}

			err = write(w, p)
			if cerr := closeOut(); err == nil {
				err = cerr
			}

			if err != nil {
				return err
			}

			a.logger.Debug("pipeline rendered", zap.String("format", format), zap.Int("stages", len(p.Stages())))

			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "python", "python or yaml")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, stdout by default")

	return cmd
}
