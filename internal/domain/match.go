package domain

import (
	"strconv"
	"strings"
)

// Round count bounds for a match.
const (
	MinRounds = 1
	MaxRounds = 10
)

// PlayerProfile is the display name attached to a mark.
type PlayerProfile struct {
	Symbol Mark   `json:"symbol"`
	Name   string `json:"name"`
}

// Players holds one profile per mark.
type Players struct {
	X PlayerProfile `json:"x"`
	O PlayerProfile `json:"o"`
}

// Of returns the profile for m.
func (p Players) Of(m Mark) PlayerProfile {
	if m == O {
		return p.O
	}
	return p.X
}

// Ready reports whether both players have a name.
func (p Players) Ready() bool { return p.X.Name != "" && p.O.Name != "" }

// ScoreTally counts rounds won per mark within a match.
type ScoreTally struct {
	X int `json:"x"`
	O int `json:"o"`
}

// Of returns the win count for m.
func (s ScoreTally) Of(m Mark) int {
	switch m {
	case X:
		return s.X
	case O:
		return s.O
	}
	return 0
}

// MatchConfig is fixed once the match starts.
type MatchConfig struct {
	TotalRounds int `json:"total_rounds"`
}

// Match is the whole session state. It holds no references, so every copy is
// an independent snapshot and transitions never alias the caller's value.
//
// The round outcome is not stored: Outcome derives it from Board on demand.
type Match struct {
	Board   Board       `json:"board"`
	Turn    Mark        `json:"turn"`
	Score   ScoreTally  `json:"score"`
	Round   int         `json:"round"`
	Config  MatchConfig `json:"config"`
	Players Players     `json:"players"`
	Started bool        `json:"started"`
}

// New returns a match in setup with X to move in round 1 of 1.
func New() Match {
	return Match{
		Turn:   X,
		Round:  1,
		Config: MatchConfig{TotalRounds: MinRounds},
		Players: Players{
			X: PlayerProfile{Symbol: X},
			O: PlayerProfile{Symbol: O},
		},
	}
}

// Outcome evaluates the current board.
func (m Match) Outcome() Outcome { return Evaluate(m.Board) }

// Playable reports whether a move at cell i would be applied.
func (m Match) Playable(i int) bool {
	if i < 0 || i >= BoardSize {
		return false
	}
	return m.Board[i] == Empty && !m.Outcome().Decided()
}

// ApplyMove places the mark of the player to move at cell i.
// Out-of-range cells, occupied cells and decided rounds are ignored.
func (m Match) ApplyMove(i int) (Match, bool) {
	if !m.Playable(i) {
		return m, false
	}
	m.Board[i] = m.Turn
	switch out := m.Outcome(); out.Kind {
	case Win:
		if out.Winner == X {
			m.Score.X++
		} else {
			m.Score.O++
		}
	case NoOutcome:
		m.Turn = m.Turn.Other()
	}
	return m, true
}

// StartNextRound clears the board for the next round, keeping scores.
// It is ignored on the last round.
func (m Match) StartNextRound() (Match, bool) {
	if m.Round >= m.Config.TotalRounds {
		return m, false
	}
	m.Board = Board{}
	m.Turn = X
	m.Round++
	return m, true
}

// Reset restarts the match from round 1 with zero scores.
// Names, round count and the started flag are kept.
func (m Match) Reset() (Match, bool) {
	m.Board = Board{}
	m.Turn = X
	m.Score = ScoreTally{}
	m.Round = 1
	return m, true
}

// BackToSetup resets the match and returns to the setup phase.
func (m Match) BackToSetup() (Match, bool) {
	m, _ = m.Reset()
	m.Started = false
	return m, true
}

// ConfigUpdate is a setup change accepted by Configure.
type ConfigUpdate interface {
	apply(m *Match)
}

// NameUpdate replaces a player's display name verbatim.
type NameUpdate struct {
	Mark Mark
	Name string
}

func (u NameUpdate) apply(m *Match) {
	switch u.Mark {
	case X:
		m.Players.X.Name = u.Name
	case O:
		m.Players.O.Name = u.Name
	}
}

// RoundsUpdate sets the number of rounds, clamped to [MinRounds, MaxRounds].
type RoundsUpdate struct {
	Rounds int
}

func (u RoundsUpdate) apply(m *Match) {
	m.Config.TotalRounds = ClampRounds(u.Rounds)
}

// Configure applies a setup change. It is ignored once the match has started,
// and for name updates addressed to neither X nor O.
func (m Match) Configure(u ConfigUpdate) (Match, bool) {
	if m.Started || u == nil {
		return m, false
	}
	if nu, ok := u.(NameUpdate); ok && !nu.Mark.Valid() {
		return m, false
	}
	u.apply(&m)
	return m, true
}

// CanStart reports whether StartMatch would be applied.
func (m Match) CanStart() bool {
	return !m.Started && m.Players.Ready() && m.Config.TotalRounds >= MinRounds
}

// StartMatch leaves setup once both names are set.
func (m Match) StartMatch() (Match, bool) {
	if !m.CanStart() {
		return m, false
	}
	m.Started = true
	return m, true
}

// CanAdvance reports whether the round is decided and another one remains.
func (m Match) CanAdvance() bool {
	return m.Outcome().Decided() && m.Round < m.Config.TotalRounds
}

// Over reports whether the last round of the match is decided.
func (m Match) Over() bool {
	return m.Outcome().Decided() && m.Round >= m.Config.TotalRounds
}

// Leader returns the mark with more round wins, or Empty on a tie.
func (m Match) Leader() Mark {
	switch {
	case m.Score.X > m.Score.O:
		return X
	case m.Score.O > m.Score.X:
		return O
	}
	return Empty
}

// ClampRounds bounds n to [MinRounds, MaxRounds].
func ClampRounds(n int) int {
	if n < MinRounds {
		return MinRounds
	}
	if n > MaxRounds {
		return MaxRounds
	}
	return n
}

// ParseRounds reads a round count from user input the way a form field
// does: leading spaces and a sign, then the leading digits ("3abc" is 3,
// "2.5" is 2). Input without leading digits counts as MinRounds; the
// number is clamped.
func ParseRounds(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return MinRounds
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// too many digits
		n = MaxRounds
	}
	if neg {
		n = -n
	}
	return ClampRounds(n)
}
