package model

import "fmt"

type PlayerColor uint8

const (
	NoColor PlayerColor = iota
	PlayerColorWhite
	PlayerColorBlack
)

func (c PlayerColor) Opponent() PlayerColor {
	switch c {
	case PlayerColorWhite:
		return PlayerColorBlack
	case PlayerColorBlack:
		return PlayerColorWhite
	}
	return NoColor
}

func (c PlayerColor) IsValid() bool {
	return c == PlayerColorWhite || c == PlayerColorBlack
}

// forward is the row delta of a pawn advance for this color.
func (c PlayerColor) forward() int {
	if c == PlayerColorWhite {
		return -1
	}
	return 1
}

// homeRow is the back rank row for this color.
func (c PlayerColor) homeRow() int {
	if c == PlayerColorWhite {
		return 7
	}
	return 0
}

func (c PlayerColor) String() string {
	switch c {
	case PlayerColorWhite:
		return "white"
	case PlayerColorBlack:
		return "black"
	}
	return ""
}

func (c PlayerColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *PlayerColor) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white", "w":
		*c = PlayerColorWhite
	case "black", "b":
		*c = PlayerColorBlack
	case "":
		*c = NoColor
	default:
		return fmt.Errorf("unknown color %q", string(text))
	}
	return nil
}
