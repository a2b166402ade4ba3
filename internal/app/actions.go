package app

import "github.com/jaminalder/tictactoe-rounds/internal/domain"

// Action is a named engine transition.
type Action struct {
	Name string
	run  func(domain.Match) (domain.Match, bool)
}

// Move plays the current turn at cell i. The board only takes moves once
// the match has started.
func Move(i int) Action {
	return Action{Name: "move", run: func(m domain.Match) (domain.Match, bool) {
		if !m.Started {
			return m, false
		}
		return m.ApplyMove(i)
	}}
}

// NextRound starts the next round once the current one is decided.
func NextRound() Action {
	return Action{Name: "next_round", run: func(m domain.Match) (domain.Match, bool) {
		if !m.CanAdvance() {
			return m, false
		}
		return m.StartNextRound()
	}}
}

// Reset restarts the match keeping names and round count.
func Reset() Action {
	return Action{Name: "reset", run: domain.Match.Reset}
}

// BackToSetup resets the match and reopens the setup form.
func BackToSetup() Action {
	return Action{Name: "back_to_setup", run: domain.Match.BackToSetup}
}

// SetName updates a player's name during setup.
func SetName(mark domain.Mark, name string) Action {
	return configure("set_name", domain.NameUpdate{Mark: mark, Name: name})
}

// SetRounds updates the round count during setup from raw user input.
func SetRounds(input string) Action {
	return configure("set_rounds", domain.RoundsUpdate{Rounds: domain.ParseRounds(input)})
}

// Start leaves setup.
func Start() Action {
	return Action{Name: "start", run: domain.Match.StartMatch}
}

func configure(name string, u domain.ConfigUpdate) Action {
	return Action{Name: name, run: func(m domain.Match) (domain.Match, bool) { return m.Configure(u) }}
}
