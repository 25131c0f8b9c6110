package bulk_updater

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bredtape/bulk_updater/color"
	"github.com/bredtape/bulk_updater/logging"
	"github.com/bredtape/bulk_updater/update"
	"github.com/bredtape/bulk_updater/xml"
	"github.com/peterbourgon/ff/v3"
	"github.com/pkg/errors"
)

const app = "bulk_updater"

type Options struct {
	Color       color.Choice
	XPaths      []string
	OutputDir   string
	DryRun      bool
	MetricsFile string
	Archives    []string
}

// Run performs the bulk update described by o.
func (o Options) Run(ctx context.Context) error {
	return update.Run(ctx, update.Config{
		Archives:    o.Archives,
		XPaths:      o.XPaths,
		OutputDir:   o.OutputDir,
		DryRun:      o.DryRun,
		MetricsFile: o.MetricsFile,
	})
}

func (o Options) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("color", o.Color.String()),
		slog.Any("xpaths", o.XPaths),
		slog.String("outputDir", o.OutputDir),
		slog.Bool("dryRun", o.DryRun),
		slog.String("metricsFile", o.MetricsFile),
		slog.Any("archives", o.Archives))
}

type stringsFlag []string

func (s *stringsFlag) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ", ")
}

func (s *stringsFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// ParseOptions parses command line args (args[0] being the program name)
// and BULK_UPDATER_* environment variables.
func ParseOptions(args []string, stderr io.Writer) (Options, error) {
	var o Options

	name := app
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	envPrefix := strings.ToUpper(app)
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [options] archive.zip...\n\n", name)
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nOptions may also be set from the environment. Prefix with %s_, use all caps and replace any - with _\n", envPrefix)
		fmt.Fprintf(fs.Output(), "The log filter is read from %s, e.g. 'warn,update=debug' (default 'info')\n", logging.EnvVar)
	}

	fs.TextVar(&o.Color, "color", color.Auto, "Colorize output {auto, always, never}. Color is never used when stdout is not a terminal")
	fs.Var((*stringsFlag)(&o.XPaths), "xpath", "XPath of nodes to remove from every .xml file. May be repeated")
	fs.StringVar(&o.OutputDir, "output-dir", "", "Write updated archives to this directory instead of replacing them")
	fs.BoolVar(&o.DryRun, "dry-run", false, "Process archives, but do not write anything")
	fs.StringVar(&o.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")

	err := ff.Parse(fs, args, ff.WithEnvVarPrefix(envPrefix), ff.WithEnvVarSplit("\n"))
	if err != nil {
		return o, errors.Wrap(err, "failed to parse command line options")
	}

	o.Archives = fs.Args()
	if len(o.Archives) == 0 {
		fs.Usage()
		return o, errors.New("no archives specified")
	}
	if len(o.XPaths) == 0 {
		return o, errors.New("at least one -xpath must be specified")
	}
	if err := xml.ValidateXPaths(o.XPaths); err != nil {
		return o, errors.Wrap(err, "invalid -xpath")
	}

	return o, nil
}
