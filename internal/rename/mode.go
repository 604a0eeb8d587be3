package rename

import "fmt"

// OverwriteMode decides what happens when a final target path already exists.
type OverwriteMode int

const (
	// ModeChangeFileName prefixes the target name with underscores until it is free.
	ModeChangeFileName OverwriteMode = iota
	// ModeOverwrite replaces the existing entry. The run becomes irreversible.
	ModeOverwrite
	// ModeError aborts the run with ErrTargetExists.
	ModeError
)

// String returns the canonical name used by flags and config files.
func (m OverwriteMode) String() string {
	switch m {
	case ModeChangeFileName:
		return "change-name"
	case ModeOverwrite:
		return "overwrite"
	case ModeError:
		return "error"
	default:
		return fmt.Sprintf("OverwriteMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the defined modes.
func (m OverwriteMode) Valid() bool {
	return m == ModeChangeFileName || m == ModeOverwrite || m == ModeError
}

// ParseOverwriteMode parses the canonical name of a mode.
func ParseOverwriteMode(s string) (OverwriteMode, error) {
	switch s {
	case "change-name", "rename":
		return ModeChangeFileName, nil
	case "overwrite":
		return ModeOverwrite, nil
	case "error":
		return ModeError, nil
	default:
		return 0, fmt.Errorf("unknown overwrite mode %q (want change-name, overwrite or error)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m OverwriteMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid overwrite mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *OverwriteMode) UnmarshalText(text []byte) error {
	parsed, err := ParseOverwriteMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
