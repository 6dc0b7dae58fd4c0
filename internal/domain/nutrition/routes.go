package nutrition

import (
	"errors"
	"fmt"
	"strings"
)

// Route is a single nutrition therapy route.
type Route string

const (
	RouteEnteral    Route = "enteral"
	RouteOral       Route = "oral"
	RouteParenteral Route = "parenteral"
)

// ErrInvalidRoutes is returned for route sets that cannot be prescribed together.
var ErrInvalidRoutes = errors.New("oral and parenteral can only be combined with enteral")

// RouteCombination is the closed set of route mixes a prescription can have.
// The zero value is RoutesNone.
type RouteCombination uint8

const (
	RoutesNone RouteCombination = iota
	EnteralOnly
	EnteralPlusOral
	EnteralPlusParenteral
	EnteralPlusBoth
	OralOnly
	ParenteralOnly
)

var routeCombinationNames = map[RouteCombination]string{
	RoutesNone:            "none",
	EnteralOnly:           "enteral",
	EnteralPlusOral:       "enteral+oral",
	EnteralPlusParenteral: "enteral+parenteral",
	EnteralPlusBoth:       "enteral+oral+parenteral",
	OralOnly:              "oral",
	ParenteralOnly:        "parenteral",
}

// NewRouteCombination maps route flags onto a combination. Without enteral
// only one route may be active.
func NewRouteCombination(oral, enteral, parenteral bool) (RouteCombination, error) {
	switch {
	case enteral && oral && parenteral:
		return EnteralPlusBoth, nil
	case enteral && oral:
		return EnteralPlusOral, nil
	case enteral && parenteral:
		return EnteralPlusParenteral, nil
	case enteral:
		return EnteralOnly, nil
	case oral && parenteral:
		return RoutesNone, ErrInvalidRoutes
	case oral:
		return OralOnly, nil
	case parenteral:
		return ParenteralOnly, nil
	default:
		return RoutesNone, nil
	}
}

// ParseRouteCombination reads the text form, e.g. "enteral+oral". Route order
// does not matter.
func ParseRouteCombination(s string) (RouteCombination, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == "none" {
		return RoutesNone, nil
	}
	var oral, enteral, parenteral bool
	for _, part := range strings.Split(v, "+") {
		switch Route(strings.TrimSpace(part)) {
		case RouteOral:
			oral = true
		case RouteEnteral:
			enteral = true
		case RouteParenteral:
			parenteral = true
		default:
			return RoutesNone, fmt.Errorf("unknown route %q", part)
		}
	}
	return NewRouteCombination(oral, enteral, parenteral)
}

// Has reports whether r is active in the combination.
func (rc RouteCombination) Has(r Route) bool {
	switch r {
	case RouteEnteral:
		return rc == EnteralOnly || rc == EnteralPlusOral || rc == EnteralPlusParenteral || rc == EnteralPlusBoth
	case RouteOral:
		return rc == EnteralPlusOral || rc == EnteralPlusBoth || rc == OralOnly
	case RouteParenteral:
		return rc == EnteralPlusParenteral || rc == EnteralPlusBoth || rc == ParenteralOnly
	}
	return false
}

// Routes lists the active routes in fixed order: enteral, oral, parenteral.
func (rc RouteCombination) Routes() []Route {
	var out []Route
	for _, r := range []Route{RouteEnteral, RouteOral, RouteParenteral} {
		if rc.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (rc RouteCombination) String() string {
	if name, ok := routeCombinationNames[rc]; ok {
		return name
	}
	return fmt.Sprintf("routes(%d)", uint8(rc))
}

func (rc RouteCombination) MarshalText() ([]byte, error) {
	if _, ok := routeCombinationNames[rc]; !ok {
		return nil, fmt.Errorf("invalid route combination %d", uint8(rc))
	}
	return []byte(rc.String()), nil
}

func (rc *RouteCombination) UnmarshalText(b []byte) error {
	v, err := ParseRouteCombination(string(b))
	if err != nil {
		return err
	}
	*rc = v
	return nil
}
