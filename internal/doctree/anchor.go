package doctree

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// RegionBody is the only region an anchor can currently point into.
const RegionBody = "body"

// ErrMalformedAnchor is returned when an anchor does not have the
// ["body", table, row, col, par] shape.
var ErrMalformedAnchor = errors.New("malformed anchor")

// Location is the structural path of a paragraph inside a Body.
type Location struct {
	Table int
	Row   int
	Col   int
	Para  int
}

// Anchor addresses a paragraph inside one index snapshot. It serializes as
// a five element JSON array, e.g. ["body", 0, 0, 0, 5].
type Anchor struct {
	Region string
	Location
}

// NewAnchor returns a body anchor for loc.
func NewAnchor(loc Location) Anchor {
	return Anchor{Region: RegionBody, Location: loc}
}

// Valid reports whether the anchor can exist in an index.
func (a Anchor) Valid() bool {
	return a.Region == RegionBody && a.Table >= 0 && a.Row >= 0 && a.Col >= 0 && a.Para >= 0
}

func (a Anchor) String() string {
	return fmt.Sprintf("[%q, %d, %d, %d, %d]", a.Region, a.Table, a.Row, a.Col, a.Para)
}

func (a Anchor) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.Region, a.Table, a.Row, a.Col, a.Para})
}

func (a *Anchor) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAnchor(data)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAnchor decodes a JSON anchor. Numbers may arrive as floats from
// model-generated arguments; they are accepted when integral.
func ParseAnchor(data []byte) (Anchor, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return Anchor{}, fmt.Errorf("%w: %v", ErrMalformedAnchor, err)
	}
	if len(parts) != 5 {
		return Anchor{}, fmt.Errorf("%w: expected 5 elements, got %d", ErrMalformedAnchor, len(parts))
	}

	var region string
	if err := json.Unmarshal(parts[0], &region); err != nil || region != RegionBody {
		return Anchor{}, fmt.Errorf("%w: region must be %q", ErrMalformedAnchor, RegionBody)
	}

	var idx [4]int
	for i := range idx {
		var f float64
		if err := json.Unmarshal(parts[i+1], &f); err != nil {
			return Anchor{}, fmt.Errorf("%w: element %d is not a number", ErrMalformedAnchor, i+1)
		}
		if f < 0 || f != math.Trunc(f) {
			return Anchor{}, fmt.Errorf("%w: element %d must be a non-negative integer", ErrMalformedAnchor, i+1)
		}
		idx[i] = int(f)
	}

	return Anchor{
		Region:   region,
		Location: Location{Table: idx[0], Row: idx[1], Col: idx[2], Para: idx[3]},
	}, nil
}
