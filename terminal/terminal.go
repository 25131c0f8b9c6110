// Package terminal inspects the terminal the process is attached to.
package terminal

import (
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/xo/terminfo"
)

// LoadFn loads the terminfo entry for a terminal type.
type LoadFn = func(term string) (*terminfo.Terminfo, error)

// Prober looks up color support in the terminfo database.
type Prober struct {
	Load LoadFn
}

// ProbeColors reports whether the terminal named by TERM has the
// max_colors capability. On any failure it returns false with the cause.
func ProbeColors(getenv func(string) string) (bool, error) {
	return Prober{Load: terminfo.Load}.ProbeColors(getenv)
}

func (p Prober) ProbeColors(getenv func(string) string) (bool, error) {
	term := getenv("TERM")
	if term == "" {
		return false, errors.New("TERM is not set")
	}

	load := p.Load
	if load == nil {
		load = terminfo.Load
	}

	ti, err := load(term)
	if err != nil {
		return false, errors.Wrapf(err, "failed to load terminfo for '%s'", term)
	}
	if ti == nil {
		return false, errors.Errorf("no terminfo entry for '%s'", term)
	}

	_, ok := ti.Nums[terminfo.MaxColors]
	return ok, nil
}

// IsTerminal reports whether fd is an interactive terminal, including
// Cygwin/MSYS pseudo terminals.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
