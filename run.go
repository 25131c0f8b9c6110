package bulk_updater

import (
	"context"
	"io"
	"os"

	"github.com/bredtape/bulk_updater/color"
	"github.com/bredtape/bulk_updater/logging"
	"github.com/bredtape/bulk_updater/terminal"
)

// Runner bootstraps the process and delegates to Operation. The zero
// value of every field except Stdout and Stderr has a usable default.
type Runner struct {
	Getenv           func(string) string
	Stdout           io.Writer
	Stderr           io.Writer
	StdoutIsTerminal bool

	ProbeColors func(getenv func(string) string) (bool, error)
	Installer   *logging.Installer
	Operation   func(ctx context.Context, o Options) error
}

func Run(
	ctx context.Context,
	args []string,
	getenv func(string) string,
	stdout io.Writer,
	stderr io.Writer) error {

	r := Runner{
		Getenv:           getenv,
		Stdout:           stdout,
		Stderr:           stderr,
		StdoutIsTerminal: isTerminal(stdout),
	}
	return r.Run(ctx, args)
}

// Run parses args, configures and installs the logger and runs the
// operation. The operation error is returned unchanged.
func (r Runner) Run(ctx context.Context, args []string) error {
	r = r.withDefaults()

	opts, err := ParseOptions(args, r.Stderr)
	if err != nil {
		return err
	}

	capable, probeErr := r.ProbeColors(r.Getenv)
	useColor := color.Resolve(opts.Color, capable, r.StdoutIsTerminal)

	filter, filterErr := logging.FilterFromEnv(r.Getenv)
	log := logging.New(r.Stdout, logging.Config{
		Filter: filter,
		Color:  useColor,
		Source: logging.SourceAnnotations,
	})
	r.Installer.Install(log)
	ctx = logging.WithLogger(ctx, log)

	if probeErr != nil {
		log.Error("unable to access terminfo db. This is a bug! Setting color option to false", "err", probeErr)
	}
	if filterErr != nil {
		log.Warn("invalid log filter, using default", "filter", filter.String(), "err", filterErr)
	}
	log.Debug("resolved color policy",
		"choice", opts.Color,
		"capable", capable,
		"terminal", r.StdoutIsTerminal,
		"color", useColor)

	log.Info("🎢 Starting bulk updater")
	log.Debug("parsed options", "options", opts)

	err = r.Operation(ctx, opts)
	if err != nil {
		log.Error("failed to run bulk updater", "err", err)
	}

	// Not "successfully" since some operations may have failed.
	log.Info("🥳 Finished running bulk updater")
	return err
}

func (r Runner) withDefaults() Runner {
	if r.Getenv == nil {
		r.Getenv = os.Getenv
	}
	if r.Stdout == nil {
		r.Stdout = io.Discard
	}
	if r.Stderr == nil {
		r.Stderr = io.Discard
	}
	if r.ProbeColors == nil {
		r.ProbeColors = terminal.ProbeColors
	}
	if r.Installer == nil {
		r.Installer = logging.Global()
	}
	if r.Operation == nil {
		r.Operation = func(ctx context.Context, o Options) error {
			return o.Run(ctx)
		}
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && terminal.IsTerminal(f.Fd())
}
