package logging

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	LevelTrace = slog.LevelDebug - 4
	LevelOff   = slog.Level(1 << 30)
)

type directive struct {
	target string
	level  slog.Level
}

// Filter decides per target which levels are emitted. The zero value
// emits info and above for every target.
//
// An expression is a comma separated list of directives, each one of
//
//	level          default level for targets without a directive
//	target=level   level for target and its children (target/child)
//	target         every level for target and its children
type Filter struct {
	expr       string
	def        slog.Level
	directives []directive // longest target first
}

// DefaultFilter is used when nothing else is configured.
func DefaultFilter() Filter {
	return Filter{expr: "info", def: slog.LevelInfo}
}

// ParseFilter parses a filter expression, e.g. "warn,update=debug".
func ParseFilter(expr string) (Filter, error) {
	f := Filter{expr: expr, def: slog.LevelInfo}
	if strings.TrimSpace(expr) == "" {
		return f, errors.New("empty filter expression")
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if target, lvl, found := strings.Cut(part, "="); found {
			target = strings.TrimSpace(target)
			if !validTarget(target) {
				return f, errors.Errorf("invalid target '%s' in directive '%s'", target, part)
			}
			level, err := parseLevel(strings.TrimSpace(lvl))
			if err != nil {
				return f, errors.Wrapf(err, "invalid directive '%s'", part)
			}
			f.directives = append(f.directives, directive{target: target, level: level})
			continue
		}

		if level, err := parseLevel(part); err == nil {
			f.def = level
			continue
		}
		if !validTarget(part) {
			return f, errors.Errorf("invalid directive '%s'", part)
		}
		f.directives = append(f.directives, directive{target: part, level: LevelTrace})
	}

	sort.SliceStable(f.directives, func(i, j int) bool {
		return len(f.directives[i].target) > len(f.directives[j].target)
	})
	return f, nil
}

// Level returns the minimum level emitted for target.
func (f Filter) Level(target string) slog.Level {
	for _, d := range f.directives {
		if target == d.target || strings.HasPrefix(target, d.target+"/") {
			return d.level
		}
	}
	return f.def
}

func (f Filter) Enabled(target string, level slog.Level) bool {
	return level >= f.Level(target)
}

// MinLevel is the lowest level any target may emit.
func (f Filter) MinLevel() slog.Level {
	lowest := f.def
	for _, d := range f.directives {
		if d.level < lowest {
			lowest = d.level
		}
	}
	return lowest
}

// String returns the expression the filter was parsed from.
func (f Filter) String() string {
	if f.expr == "" {
		return "info"
	}
	return f.expr
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, nil
	case "off", "none":
		return LevelOff, nil
	case "warning":
		return slog.LevelWarn, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, errors.Errorf("unknown level '%s'", s)
	}
	return level, nil
}

func validTarget(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.', r == '/', r == ':':
		default:
			return false
		}
	}
	return true
}
