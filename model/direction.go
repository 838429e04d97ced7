package model

import (
	"fmt"
	"strings"
)

// Direction is one of the four cardinal facings. North is +Y.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Delta returns the unit offset for one step in d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	case West:
		return -1, 0
	}
	return 0, 0
}

// Next returns the clockwise neighbour of d.
func (d Direction) Next() Direction {
	return (d + 1) % 4
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Vertical reports whether d is North or South.
func (d Direction) Vertical() bool {
	return d == North || d == South
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection accepts full names or their first letter.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n", "":
		return North, nil
	case "east", "e":
		return East, nil
	case "south", "s":
		return South, nil
	case "west", "w":
		return West, nil
	}
	return North, fmt.Errorf("unknown direction %q", s)
}
