package survey

import "fmt"

// Kind is the semantic class assigned to a variable by classification
type Kind string

const (
	KindUnclassified Kind = "unclassified"
	KindOrdinalScale Kind = "ordinal_scale"
	KindNominal      Kind = "nominal"
	KindBinary       Kind = "binary"
	KindNumeric      Kind = "numeric"
)

// AllKinds lists every kind in display order
var AllKinds = []Kind{KindOrdinalScale, KindNominal, KindBinary, KindNumeric, KindUnclassified}

// ParseKind accepts the canonical names plus a few short aliases used in plan files
func ParseKind(s string) (Kind, error) {
	switch s {
	case string(KindOrdinalScale), "ordinal", "likert", "scale":
		return KindOrdinalScale, nil
	case string(KindNominal), "categorical":
		return KindNominal, nil
	case string(KindBinary):
		return KindBinary, nil
	case string(KindNumeric), "continuous":
		return KindNumeric, nil
	case string(KindUnclassified), "":
		return KindUnclassified, nil
	}
	return "", fmt.Errorf("unknown variable kind %q", s)
}

// IsCategorical reports whether the kind can act as a banner or categorical row
func (k Kind) IsCategorical() bool {
	return k == KindNominal || k == KindBinary
}

func (k Kind) String() string { return string(k) }

// UnmarshalText decodes a kind from JSON or YAML, mapping aliases to the canonical name
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Direction selects which end of an ordinal scale a box recode collapses
type Direction string

const (
	DirectionTop    Direction = "top"
	DirectionBottom Direction = "bottom"
)

// ParseDirection parses "top" or "bottom"
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionTop, DirectionBottom:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown recode direction %q", s)
}

// Title returns "Top" or "Bottom"
func (d Direction) Title() string {
	if d == DirectionBottom {
		return "Bottom"
	}
	return "Top"
}
