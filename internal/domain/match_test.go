package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// play applies moves in order and fails the test if any of them is ignored.
func play(t *testing.T, m Match, cells ...int) Match {
	t.Helper()
	for n, i := range cells {
		var ok bool
		m, ok = m.ApplyMove(i)
		require.True(t, ok, "move %d at cell %d was ignored", n, i)
	}
	return m
}

func startedMatch(t *testing.T, rounds int) Match {
	t.Helper()
	m := New()
	m, _ = m.Configure(NameUpdate{Mark: X, Name: "Ada"})
	m, _ = m.Configure(NameUpdate{Mark: O, Name: "Bo"})
	m, _ = m.Configure(RoundsUpdate{Rounds: rounds})
	m, ok := m.StartMatch()
	require.True(t, ok)
	return m
}

// xWins, oWins and draw are complete rounds starting with X.
var (
	xWins = []int{0, 3, 1, 4, 2}
	oWins = []int{0, 3, 1, 4, 8, 5}
	draw  = []int{0, 1, 2, 4, 3, 5, 7, 6, 8}
)

func TestNew(t *testing.T) {
	m := New()

	assert.Equal(t, Board{}, m.Board)
	assert.Equal(t, X, m.Turn)
	assert.Equal(t, Outcome{}, m.Outcome())
	assert.Equal(t, ScoreTally{}, m.Score)
	assert.Equal(t, 1, m.Round)
	assert.Equal(t, 1, m.Config.TotalRounds)
	assert.Equal(t, X, m.Players.X.Symbol)
	assert.Equal(t, O, m.Players.O.Symbol)
	assert.False(t, m.Started)
}

func TestApplyMove(t *testing.T) {
	t.Run("turn alternates on non-terminal moves", func(t *testing.T) {
		m := New()
		want := []Mark{X, O, X, O, X, O}
		for n, cell := range []int{4, 0, 8, 2, 1, 7} {
			// Then: the mark written is the one whose turn it was
			require.Equal(t, want[n], m.Turn)
			m = play(t, m, cell)
			require.Equal(t, want[n], m.Board[cell])
			require.Equal(t, want[n].Other(), m.Turn)
		}
	})

	t.Run("occupied cell is a no-op", func(t *testing.T) {
		// Given: X holds the centre
		before := play(t, New(), 4)

		// When: O clicks the same cell
		after, ok := before.ApplyMove(4)

		// Then: nothing changes
		assert.False(t, ok)
		assert.Equal(t, before, after)
	})

	t.Run("out of range cell is a no-op", func(t *testing.T) {
		before := New()
		for _, i := range []int{-1, 9, 20} {
			after, ok := before.ApplyMove(i)
			assert.False(t, ok)
			assert.Equal(t, before, after)
		}
	})

	t.Run("move after a win is a no-op", func(t *testing.T) {
		before := play(t, New(), xWins...)

		after, ok := before.ApplyMove(8)

		assert.False(t, ok)
		assert.Equal(t, before, after)
	})

	t.Run("move after a draw is a no-op", func(t *testing.T) {
		before := play(t, New(), draw...)
		require.Equal(t, Draw, before.Outcome().Kind)

		after, ok := before.ApplyMove(8)

		assert.False(t, ok)
		assert.Equal(t, before, after)
	})

	t.Run("does not alias the receiver", func(t *testing.T) {
		before := New()
		after, ok := before.ApplyMove(0)
		require.True(t, ok)
		assert.Equal(t, Empty, before.Board[0])
		assert.Equal(t, X, after.Board[0])
	})
}

func TestApplyMove_XWinsTopRow(t *testing.T) {
	// When: X:0, O:3, X:1, O:4, X:2
	m := play(t, New(), xWins...)

	// Then: X wins the top row and scores once
	out := m.Outcome()
	assert.Equal(t, Win, out.Kind)
	assert.Equal(t, X, out.Winner)
	assert.Equal(t, [3]int{0, 1, 2}, out.Line)
	assert.Equal(t, ScoreTally{X: 1}, m.Score)
	// the winner keeps the turn; it no longer matters
	assert.Equal(t, X, m.Turn)
}

func TestApplyMove_Draw(t *testing.T) {
	m := play(t, New(), draw...)

	assert.Equal(t, Outcome{Kind: Draw}, m.Outcome())
	assert.Equal(t, ScoreTally{}, m.Score)
	assert.True(t, m.Board.Full())
}

func TestApplyMove_AlternatingFillEndsOnDiagonal(t *testing.T) {
	// Given: X:0, O:1, X:2, O:3, X:4, O:5, X:6
	m := play(t, New(), 0, 1, 2, 3, 4, 5, 6)

	// Then: X already holds 2-4-6, so the board never fills up
	assert.Equal(t, Outcome{Kind: Win, Winner: X, Line: [3]int{2, 4, 6}}, m.Outcome())
	assert.Equal(t, ScoreTally{X: 1}, m.Score)

	for _, i := range []int{7, 8} {
		_, ok := m.ApplyMove(i)
		assert.False(t, ok)
	}
}

func TestStartNextRound(t *testing.T) {
	t.Run("keeps scores and players", func(t *testing.T) {
		// Given: round 1 of 3 won by X
		before := play(t, startedMatch(t, 3), xWins...)

		// When: moving on
		after, ok := before.StartNextRound()

		// Then: the board is cleared and only the round moves forward
		require.True(t, ok)
		assert.Equal(t, Board{}, after.Board)
		assert.Equal(t, X, after.Turn)
		assert.Equal(t, Outcome{}, after.Outcome())
		assert.Equal(t, before.Round+1, after.Round)
		assert.Equal(t, before.Score, after.Score)
		assert.Equal(t, before.Players, after.Players)
		assert.Equal(t, before.Config, after.Config)
	})

	t.Run("no-op on the last round", func(t *testing.T) {
		before := play(t, startedMatch(t, 1), xWins...)

		after, ok := before.StartNextRound()

		assert.False(t, ok)
		assert.Equal(t, before, after)
	})
}

func TestReset(t *testing.T) {
	// Given: a 3 round match in round 2 with scores
	m := play(t, startedMatch(t, 3), xWins...)
	m, _ = m.StartNextRound()
	m = play(t, m, 4)

	// When: resetting
	got, ok := m.Reset()

	// Then: the match restarts but keeps its setup
	require.True(t, ok)
	assert.Equal(t, Board{}, got.Board)
	assert.Equal(t, X, got.Turn)
	assert.Equal(t, ScoreTally{}, got.Score)
	assert.Equal(t, 1, got.Round)
	assert.Equal(t, m.Players, got.Players)
	assert.Equal(t, m.Config, got.Config)
	assert.True(t, got.Started)
}

func TestBackToSetup(t *testing.T) {
	m := play(t, startedMatch(t, 2), xWins...)

	got, ok := m.BackToSetup()

	require.True(t, ok)
	assert.False(t, got.Started)
	assert.Equal(t, ScoreTally{}, got.Score)
	assert.Equal(t, 1, got.Round)
	assert.Equal(t, "Ada", got.Players.X.Name)
	assert.Equal(t, 2, got.Config.TotalRounds)
}

func TestConfigure(t *testing.T) {
	t.Run("name is replaced verbatim", func(t *testing.T) {
		m, ok := New().Configure(NameUpdate{Mark: O, Name: "  Bo "})
		require.True(t, ok)
		assert.Equal(t, "  Bo ", m.Players.O.Name)

		m, ok = m.Configure(NameUpdate{Mark: O, Name: ""})
		require.True(t, ok)
		assert.Equal(t, "", m.Players.O.Name)
	})

	t.Run("rounds are clamped", func(t *testing.T) {
		for in, want := range map[int]int{-3: 1, 0: 1, 1: 1, 7: 7, 10: 10, 11: 10} {
			m, ok := New().Configure(RoundsUpdate{Rounds: in})
			require.True(t, ok)
			assert.Equal(t, want, m.Config.TotalRounds, "input %d", in)
		}
	})

	t.Run("ignored once started", func(t *testing.T) {
		before := startedMatch(t, 2)

		after, ok := before.Configure(RoundsUpdate{Rounds: 5})
		assert.False(t, ok)
		assert.Equal(t, before, after)

		after, ok = before.Configure(NameUpdate{Mark: X, Name: "Cy"})
		assert.False(t, ok)
		assert.Equal(t, before, after)
	})

	t.Run("unknown mark and nil update are ignored", func(t *testing.T) {
		before := New()

		after, ok := before.Configure(NameUpdate{Mark: Empty, Name: "nobody"})
		assert.False(t, ok)
		assert.Equal(t, before, after)

		after, ok = before.Configure(nil)
		assert.False(t, ok)
		assert.Equal(t, before, after)
	})
}

func TestParseRounds(t *testing.T) {
	tests := map[string]int{
		"0":                     1,
		"11":                    10,
		"abc":                   1,
		"":                      1,
		" 4 ":                   4,
		"-2":                    1,
		"10":                    10,
		"3abc":                  3,
		"2.5":                   2,
		"+5":                    5,
		"-0":                    1,
		"x3":                    1,
		"- 3":                   1,
		"99999999999999999999":  10,
		"-99999999999999999999": 1,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseRounds(in), "input %q", in)
	}
}

func TestStartMatch(t *testing.T) {
	t.Run("needs both names", func(t *testing.T) {
		m, _ := New().Configure(NameUpdate{Mark: X, Name: "Ada"})
		require.False(t, m.CanStart())

		after, ok := m.StartMatch()

		assert.False(t, ok)
		assert.Equal(t, m, after)
	})

	t.Run("starts with both names", func(t *testing.T) {
		m, _ := New().Configure(NameUpdate{Mark: X, Name: "Ada"})
		m, _ = m.Configure(NameUpdate{Mark: O, Name: "Bo"})
		require.True(t, m.CanStart())

		m, ok := m.StartMatch()

		assert.True(t, ok)
		assert.True(t, m.Started)
		assert.False(t, m.CanStart())
	})
}

func TestThreeRoundMatch(t *testing.T) {
	m := startedMatch(t, 3)

	// Round 1: X wins
	m = play(t, m, xWins...)
	assert.Equal(t, ScoreTally{X: 1, O: 0}, m.Score)
	assert.True(t, m.CanAdvance())
	assert.False(t, m.Over())

	m, ok := m.StartNextRound()
	require.True(t, ok)

	// Round 2: O wins
	m = play(t, m, oWins...)
	assert.Equal(t, Outcome{Kind: Win, Winner: O, Line: [3]int{3, 4, 5}}, m.Outcome())
	assert.Equal(t, ScoreTally{X: 1, O: 1}, m.Score)

	m, ok = m.StartNextRound()
	require.True(t, ok)

	// Round 3: draw
	m = play(t, m, draw...)
	assert.Equal(t, Draw, m.Outcome().Kind)
	assert.Equal(t, ScoreTally{X: 1, O: 1}, m.Score)
	assert.Equal(t, 3, m.Round)
	assert.Equal(t, 3, m.Config.TotalRounds)
	assert.True(t, m.Over())
	assert.False(t, m.CanAdvance())
	assert.Equal(t, Empty, m.Leader())

	after, ok := m.StartNextRound()
	assert.False(t, ok)
	assert.Equal(t, m, after)
}

func TestLeader(t *testing.T) {
	assert.Equal(t, X, Match{Score: ScoreTally{X: 2, O: 1}}.Leader())
	assert.Equal(t, O, Match{Score: ScoreTally{O: 1}}.Leader())
	assert.Equal(t, Empty, Match{}.Leader())
}
