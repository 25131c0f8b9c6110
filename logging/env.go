package logging

import (
	"github.com/pkg/errors"
)

// EnvVar holds the filter expression, e.g. BULK_UPDATER_LOG=warn,update=debug
const EnvVar = "BULK_UPDATER_LOG"

// FilterFromEnv reads the filter from EnvVar, falling back to
// DefaultFilter when it is unset. A malformed expression also yields
// DefaultFilter, together with the parse error so the caller can report it.
func FilterFromEnv(getenv func(string) string) (Filter, error) {
	expr := getenv(EnvVar)
	if expr == "" {
		return DefaultFilter(), nil
	}

	f, err := ParseFilter(expr)
	if err != nil {
		return DefaultFilter(), errors.Wrapf(err, "ignoring %s='%s'", EnvVar, expr)
	}
	return f, nil
}
