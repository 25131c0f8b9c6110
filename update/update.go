// Package update applies XPath pruning to a batch of .zip archives.
package update

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/bredtape/bulk_updater/archive"
	"github.com/bredtape/bulk_updater/logging"
	"github.com/bredtape/bulk_updater/xml"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	Archives []string
	XPaths   []string
	// OutputDir receives the updated archives. Empty means in place.
	OutputDir string
	DryRun    bool
	// MetricsFile, if set, is written in the Prometheus text format.
	MetricsFile string
}

// Run updates every archive in c.Archives. A failing archive is logged and
// does not stop the remaining ones; the returned error then reports how
// many failed. Cancelling ctx stops before the next archive.
func Run(ctx context.Context, c Config) error {
	log := logging.Target(logging.FromContext(ctx), "update")

	if len(c.Archives) == 0 {
		return errors.New("no archives specified")
	}

	pruner, err := xml.NewPruner(c.XPaths)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := newMetrics(reg)

	current := log
	pruner.OnPruned = func(name string, nodes int) {
		m.nodesPruned.Add(float64(nodes))
		current.Debug("pruned nodes", "file", name, "nodes", nodes)
	}

	if c.OutputDir != "" && !c.DryRun {
		if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create output dir '%s'", c.OutputDir)
		}
	}

	destinations, err := resolveDestinations(c)
	if err != nil {
		return err
	}

	failed := 0
	for i, src := range c.Archives {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "interrupted after %d of %d archives", i, len(c.Archives))
		}

		current = log.With("archive", src)
		start := time.Now()
		stats, err := updateArchive(src, destinations[i], c.DryRun, pruner)
		m.duration.Observe(time.Since(start).Seconds())

		if err != nil {
			failed++
			m.archives.WithLabelValues("failed").Inc()
			current.Error("failed to update archive", "err", err)
			continue
		}

		m.files.WithLabelValues("processed").Add(float64(stats.Processed))
		m.files.WithLabelValues("copied").Add(float64(stats.Copied))
		if stats.Processed == 0 {
			m.archives.WithLabelValues("unchanged").Inc()
			current.Info("archive unchanged", "copied", stats.Copied)
			continue
		}
		m.archives.WithLabelValues("updated").Inc()
		current.Info("updated archive",
			"processed", stats.Processed,
			"copied", stats.Copied,
			"destination", destinations[i],
			"dryRun", c.DryRun)
	}

	if c.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(c.MetricsFile, reg); err != nil {
			return errors.Wrapf(err, "failed to write metrics to '%s'", c.MetricsFile)
		}
		log.Debug("wrote metrics", "file", c.MetricsFile)
	}

	if failed > 0 {
		return errors.Errorf("%d of %d archives failed to update", failed, len(c.Archives))
	}
	return nil
}

func resolveDestinations(c Config) ([]string, error) {
	result := make([]string, len(c.Archives))
	seen := map[string]string{}
	for i, src := range c.Archives {
		dst := src
		if c.OutputDir != "" {
			dst = filepath.Join(c.OutputDir, filepath.Base(src))
		}
		if other, exists := seen[dst]; exists {
			return nil, errors.Errorf("archives '%s' and '%s' would both be written to '%s'", other, src, dst)
		}
		seen[dst] = src
		result[i] = dst
	}
	return result, nil
}

func updateArchive(src, dst string, dryRun bool, pruner *xml.Pruner) (archive.Stats, error) {
	f, err := os.Open(src)
	if err != nil {
		return archive.Stats{}, errors.Wrap(err, "failed to open archive")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return archive.Stats{}, errors.Wrap(err, "failed to stat archive")
	}

	var buf bytes.Buffer
	stats, err := archive.ProcessZip(&buf, f, pruner.ProcessFile)
	if err != nil {
		return stats, err
	}

	if dryRun || (stats.Processed == 0 && dst == src) {
		return stats, nil
	}

	return stats, writeFileAtomic(dst, buf.Bytes(), info.Mode().Perm())
}

// writeFileAtomic writes to a temporary file next to dst and renames it
// into place, so dst is never left half written.
func writeFileAtomic(dst string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	defer os.Remove(tmp.Name()) // no-op after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write temporary file")
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to set permissions")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temporary file")
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return errors.Wrapf(err, "failed to replace '%s'", dst)
	}
	return nil
}
