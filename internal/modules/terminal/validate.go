package terminal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("terminal not found")
	ErrInvalid  = errors.New("invalid terminal")
	// ErrNotHobex guards operations that only make sense for Hobex terminals.
	ErrNotHobex = errors.New("this operation is only available for hobex terminals")
)

// ConfigurationError lists required fields left empty for the terminal's kind.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("required fields not filled: %s", strings.Join(e.Missing, ", "))
}

type requiredField struct {
	label string
	value func(*Terminal) string
}

// requiredFields lists, per kind, the fields a terminal must carry before it
// can be saved or used.
var requiredFields = map[Kind][]requiredField{
	KindHobex: {
		{label: "Terminal ID", value: func(t *Terminal) string { return t.TID }},
		{label: "User", value: func(t *Terminal) string { return t.User }},
		{label: "Password", value: func(t *Terminal) string { return t.Password }},
	},
}

// Validate checks kind, mode and the per-kind required fields.
func Validate(t *Terminal) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	switch t.Kind {
	case KindNone, KindHobex:
	default:
		return fmt.Errorf("%w: unknown kind %q (allowed: none, hobex)", ErrInvalid, t.Kind)
	}
	switch t.Mode {
	case ModeTesting, ModeProduction:
	default:
		return fmt.Errorf("%w: unknown mode %q (allowed: testing, production)", ErrInvalid, t.Mode)
	}

	var missing []string
	for _, f := range requiredFields[t.Kind] {
		if strings.TrimSpace(f.value(t)) == "" {
			missing = append(missing, f.label)
		}
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}
