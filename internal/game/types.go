package game

import (
	"fmt"
	"strings"
)

// BoardSize is the side length of the grid.
const BoardSize = 4

// WinningTile is the exponent of the 2048 tile (2^11). A board containing
// it means the game ended in a win.
const WinningTile = 11

// Board is a 4x4 grid of tile exponents. A cell value of n represents the
// tile 2^n; zero is an empty cell.
type Board [BoardSize][BoardSize]int

// State is the last fetched snapshot of a game session. The authoritative
// copy lives on the chain; this is never mutated locally outside of a full
// re-fetch.
type State struct {
	GameID  int   `json:"gameId"`
	Board   Board `json:"board"`
	Score   int64 `json:"score"`
	IsEnded bool  `json:"isEnded"`
}

// Won reports whether the board contains the 2048 tile anywhere.
// Only meaningful once IsEnded is true: an ended game without the winning
// tile is a loss.
func (s *State) Won() bool {
	for _, row := range s.Board {
		for _, cell := range row {
			if cell == WinningTile {
				return true
			}
		}
	}
	return false
}

// Direction is a move direction as the chain application spells it.
type Direction string

const (
	Up    Direction = "Up"
	Down  Direction = "Down"
	Left  Direction = "Left"
	Right Direction = "Right"
)

// ParseDirection maps a key name to a move direction. Key names may carry
// an "Arrow" prefix ("ArrowUp"); anything that does not resolve to one of
// the four directions is an error and the input should be dropped.
func ParseDirection(key string) (Direction, error) {
	switch Direction(strings.TrimPrefix(key, "Arrow")) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	case Left:
		return Left, nil
	case Right:
		return Right, nil
	}
	return "", fmt.Errorf("game: invalid move key %q", key)
}
