package render

import (
	"strings"

	"github.com/flowscope/flowscope/pkg/errors"
)

// Direction is the flow direction of a rendered graph.
type Direction string

// Flow directions.
const (
	DirectionLR Direction = "LR" // left to right
	DirectionRL Direction = "RL" // right to left
	DirectionTB Direction = "TB" // top to bottom
	DirectionBT Direction = "BT" // bottom to top
)

// Horizontal reports whether the direction flows along the x axis.
func (d Direction) Horizontal() bool {
	return d == DirectionLR || d == DirectionRL
}

// Reversed reports whether the direction flows against the axis (right to
// left or bottom to top).
func (d Direction) Reversed() bool {
	return d == DirectionRL || d == DirectionBT
}

// ParseDirection parses a direction token. Matching is case-insensitive and
// TD is accepted as an alias for TB.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(s) {
	case "LR":
		return DirectionLR, nil
	case "RL":
		return DirectionRL, nil
	case "TB", "TD":
		return DirectionTB, nil
	case "BT":
		return DirectionBT, nil
	}
	return "", errors.New(errors.ErrCodeInvalidDirection, "unknown direction: %q (want LR, RL, TB, or BT)", s)
}
