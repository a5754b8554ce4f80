package material

import "fmt"

// Functional is the electronic-structure approximation a band value was computed with.
type Functional int

const (
	PBE Functional = iota + 1
	HSE
	GW
)

// Priority lists functionals from most to least preferred.
var Priority = [...]Functional{GW, HSE, PBE}

// String returns the display name used in result tables.
func (f Functional) String() string {
	switch f {
	case PBE:
		return "PBE"
	case HSE:
		return "HSE"
	case GW:
		return "GW"
	default:
		return fmt.Sprintf("Functional(%d)", int(f))
	}
}

// Suffix returns the attribute suffix of the functional in source rows.
func (f Functional) Suffix() string {
	switch f {
	case HSE:
		return "_hse"
	case GW:
		return "_gw"
	default:
		return ""
	}
}

// ParseFunctional accepts the display name (case-sensitive).
func ParseFunctional(s string) (Functional, error) {
	switch s {
	case "PBE":
		return PBE, nil
	case "HSE":
		return HSE, nil
	case "GW":
		return GW, nil
	}
	return 0, fmt.Errorf("unknown functional %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Functional) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Functional) UnmarshalText(b []byte) error {
	v, err := ParseFunctional(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
