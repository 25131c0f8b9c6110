package color

import (
	"strings"

	"github.com/pkg/errors"
)

// Choice is the user preference for colored output.
type Choice int

const (
	Auto Choice = iota
	Always
	Never
)

var names = map[Choice]string{
	Auto:   "auto",
	Always: "always",
	Never:  "never",
}

func (c Choice) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "unknown"
}

func (c Choice) MarshalText() ([]byte, error) {
	s, ok := names[c]
	if !ok {
		return nil, errors.Errorf("invalid color choice %d", int(c))
	}
	return []byte(s), nil
}

// UnmarshalText accepts auto, always or never (case-insensitive).
func (c *Choice) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	for choice, name := range names {
		if name == v {
			*c = choice
			return nil
		}
	}
	return errors.Errorf("invalid color choice '%s', expected one of auto, always, never", string(text))
}

// Resolve decides whether to emit color. A non-interactive stdout never
// gets color, regardless of choice.
func Resolve(choice Choice, capability, stdoutIsTerminal bool) bool {
	if !stdoutIsTerminal {
		return false
	}
	switch choice {
	case Always:
		return true
	case Never:
		return false
	default:
		return capability
	}
}
