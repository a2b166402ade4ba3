package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownMark is returned when decoding a mark that is neither X nor O.
var ErrUnknownMark = errors.New("unknown mark")

// Mark is a player symbol. The zero value marks an unoccupied cell.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

// String returns "X", "O" or "" for an empty cell.
func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Other returns the opposing mark. Empty stays Empty.
func (m Mark) Other() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Valid reports whether m is a player symbol.
func (m Mark) Valid() bool { return m == X || m == O }

// ParseMark accepts "x"/"X"/"o"/"O".
func ParseMark(s string) (Mark, bool) {
	switch s {
	case "x", "X":
		return X, true
	case "o", "O":
		return O, true
	}
	return Empty, false
}

// BoardSize is the number of cells on the 3x3 board.
const BoardSize = 9

// Board is a fixed 3x3 board stored row-major.
type Board [BoardSize]Mark

// Full reports whether every cell is occupied.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Lines are the winning triples in evaluation order: rows, columns, diagonals.
var Lines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// OutcomeKind classifies a board evaluation.
type OutcomeKind uint8

const (
	NoOutcome OutcomeKind = iota
	Win
	Draw
)

// Outcome is the result of evaluating a board.
// Winner and Line are only meaningful when Kind is Win.
type Outcome struct {
	Kind   OutcomeKind
	Winner Mark
	Line   [3]int
}

// Decided reports whether the round is over.
func (o Outcome) Decided() bool { return o.Kind != NoOutcome }

// InLine reports whether cell i belongs to the winning line.
func (o Outcome) InLine(i int) bool {
	if o.Kind != Win {
		return false
	}
	return o.Line[0] == i || o.Line[1] == i || o.Line[2] == i
}

// Evaluate scans the lines in order and returns a win for the first one held
// entirely by a single mark; otherwise Draw on a full board, else NoOutcome.
func Evaluate(b Board) Outcome {
	for _, ln := range Lines {
		side := b[ln[0]]
		if side != Empty && b[ln[1]] == side && b[ln[2]] == side {
			return Outcome{Kind: Win, Winner: side, Line: ln}
		}
	}
	if b.Full() {
		return Outcome{Kind: Draw}
	}
	return Outcome{}
}

// MarshalText encodes the mark as "X", "O" or "".
func (m Mark) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText decodes "X", "O" or "" (empty cell).
func (m *Mark) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = Empty
		return nil
	}
	v, ok := ParseMark(string(b))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMark, b)
	}
	*m = v
	return nil
}
