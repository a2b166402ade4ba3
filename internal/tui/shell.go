package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jaminalder/tictactoe-rounds/internal/app"
	"github.com/jaminalder/tictactoe-rounds/internal/domain"
	"github.com/jaminalder/tictactoe-rounds/internal/logging"
	"github.com/jaminalder/tictactoe-rounds/internal/storage/memory"
	"github.com/muesli/termenv"
)

const localSession = "local"

const helpText = `Setup:  name x <name> | name o <name> | rounds <n> | start
Game:   1-9 (cell) | next | reset | setup
Other:  help | quit`

// Shell is a line-oriented terminal front end for one local match.
type Shell struct {
	svc     *app.Service
	out     io.Writer
	profile termenv.Profile
	log     *slog.Logger
	banner  bool
}

type Option func(*Shell)

// WithProfile sets the color profile. Tests use termenv.Ascii.
func WithProfile(p termenv.Profile) Option {
	return func(s *Shell) { s.profile = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBanner toggles the title banner on Run.
func WithBanner(on bool) Option {
	return func(s *Shell) { s.banner = on }
}

// NewShell creates a shell writing to out. Without a service a private
// in-memory one is used.
func NewShell(out io.Writer, svc *app.Service, opts ...Option) *Shell {
	s := &Shell{
		out:     out,
		profile: termenv.ColorProfile(),
		log:     logging.NewNop(),
		banner:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if svc == nil {
		svc = app.NewService(memory.New(), app.WithLogger(s.log))
	}
	s.svc = svc
	return s
}

// Run reads commands from in until quit, EOF or ctx is done. The local
// session ends when Run returns.
func (s *Shell) Run(ctx context.Context, in io.Reader) (err error) {
	defer func() {
		if endErr := s.svc.End(context.WithoutCancel(ctx), localSession); err == nil {
			err = endErr
		}
	}()
	if s.banner {
		PrintBanner(s.out, s.profile)
	}
	if err := s.render(ctx); err != nil {
		return err
	}
	sc := bufio.NewScanner(in)
	for {
		s.prompt()
		if !sc.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := s.Exec(ctx, sc.Text())
		if err != nil {
			return err
		}
		if quit {
			fmt.Fprintln(s.out, "Bye!")
			return nil
		}
	}
	return sc.Err()
}

// Match returns the current snapshot.
func (s *Shell) Match(ctx context.Context) (domain.Match, error) {
	return s.svc.Snapshot(ctx, localSession)
}

// Exec runs one command line and re-renders. It reports whether the user
// asked to quit.
func (s *Shell) Exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd := strings.ToLower(fields[0])

	var a app.Action
	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
		return false, nil
	case "name":
		mark, name, ok := parseName(line)
		if !ok {
			s.hint("usage: name x|o <name>")
			return false, nil
		}
		a = app.SetName(mark, name)
	case "rounds":
		if len(fields) != 2 {
			s.hint("usage: rounds <n>")
			return false, nil
		}
		a = app.SetRounds(fields[1])
	case "start":
		a = app.Start()
	case "next":
		a = app.NextRound()
	case "reset":
		a = app.Reset()
	case "setup":
		a = app.BackToSetup()
	default:
		n, err := strconv.Atoi(cmd)
		if err != nil {
			s.hint(fmt.Sprintf("unknown command %q, type help", cmd))
			return false, nil
		}
		a = app.Move(n - 1)
	}

	m, applied, err := s.svc.Apply(ctx, localSession, a)
	if err != nil {
		return false, err
	}
	if !applied {
		s.refused(a, m)
	}
	s.show(m)
	return false, nil
}

// refused explains a no-op the player could not see coming. Occupied cells
// and moves after the round is decided stay silent.
func (s *Shell) refused(a app.Action, m domain.Match) {
	switch {
	case a.Name == "start" && !m.Started:
		s.hint("both players need a name before the match can start")
	case a.Name == "move" && !m.Started:
		s.hint("the board opens once the match starts")
	case a.Name == "next_round" && !m.Started:
		s.hint("the match has not started yet")
	case a.Name == "next_round" && !m.Outcome().Decided():
		s.hint("finish this round first")
	case a.Name == "next_round" && m.Over():
		s.hint("that was the last round, type reset for a rematch")
	}
}

// parseName splits "name <mark> <name>". The name is the rest of the raw
// line after one separator, kept verbatim and possibly empty.
func parseName(line string) (domain.Mark, string, bool) {
	_, rest := cutField(line)
	markField, name := cutField(rest)
	mark, ok := domain.ParseMark(markField)
	if !ok {
		return domain.Empty, "", false
	}
	return mark, name, true
}

// cutField returns the first whitespace-separated field of s and what
// follows the single separator after it.
func cutField(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

func (s *Shell) prompt() {
	fmt.Fprint(s.out, s.profile.String("> ").Foreground(s.profile.Color(colorAccent)))
}

func (s *Shell) hint(msg string) {
	fmt.Fprintln(s.out, s.profile.String(msg).Faint())
}

func (s *Shell) render(ctx context.Context) error {
	m, err := s.Match(ctx)
	if err != nil {
		return err
	}
	s.show(m)
	return nil
}

func (s *Shell) show(m domain.Match) {
	if m.Started {
		s.showGame(m)
		return
	}
	s.showSetup(m)
}

func (s *Shell) showSetup(m domain.Match) {
	name := func(p domain.PlayerProfile) string {
		if p.Name == "" {
			return s.profile.String("(not set)").Faint().String()
		}
		return s.mark(p.Symbol, p.Name)
	}
	fmt.Fprintln(s.out, s.profile.String("Tic Tac Toe Game Setup").Bold())
	fmt.Fprintf(s.out, "  Player X: %s\n", name(m.Players.X))
	fmt.Fprintf(s.out, "  Player O: %s\n", name(m.Players.O))
	fmt.Fprintf(s.out, "  Rounds:   %d (max %d)\n", m.Config.TotalRounds, domain.MaxRounds)
	if m.CanStart() {
		fmt.Fprintln(s.out, "Type 'start' to begin.")
	}
}

func (s *Shell) showGame(m domain.Match) {
	out := m.Outcome()
	fmt.Fprintf(s.out, "Round %d of %d\n", m.Round, m.Config.TotalRounds)
	fmt.Fprintf(s.out, "%s 🏆 %d   %s 🏆 %d\n\n",
		s.mark(domain.X, m.Players.X.Name), m.Score.X,
		s.mark(domain.O, m.Players.O.Name), m.Score.O)

	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			cells[col] = s.cell(m, out, row*3+col)
		}
		fmt.Fprintf(s.out, " %s\n", strings.Join(cells, " | "))
		if row < 2 {
			fmt.Fprintln(s.out, "---+---+---")
		}
	}
	fmt.Fprintln(s.out)

	switch out.Kind {
	case domain.Draw:
		fmt.Fprintln(s.out, s.profile.String("It's a Draw!").Bold())
	case domain.Win:
		fmt.Fprintln(s.out, s.profile.String(m.Players.Of(out.Winner).Name+" Wins!").
			Bold().Foreground(s.profile.Color(markColor(out.Winner))))
	default:
		fmt.Fprintln(s.out, s.mark(m.Turn, m.Players.Of(m.Turn).Name+"'s Turn"))
		return
	}
	if m.CanAdvance() {
		fmt.Fprintln(s.out, "Type 'next' for the next round.")
	}
	if m.Over() {
		fmt.Fprintf(s.out, "Game Over! Final Score: %s: %d - %s: %d\n",
			m.Players.X.Name, m.Score.X, m.Players.O.Name, m.Score.O)
		if leader := m.Leader(); leader != domain.Empty {
			fmt.Fprintln(s.out, s.mark(leader, m.Players.Of(leader).Name+" wins the match!"))
		} else {
			fmt.Fprintln(s.out, "The match is a tie!")
		}
	}
}

func (s *Shell) cell(m domain.Match, out domain.Outcome, i int) string {
	c := m.Board[i]
	if c == domain.Empty {
		return s.profile.String(strconv.Itoa(i + 1)).Faint().String()
	}
	st := s.profile.String(c.String()).Foreground(s.profile.Color(markColor(c)))
	if out.InLine(i) {
		st = st.Bold().Underline()
	}
	return st.String()
}

func (s *Shell) mark(m domain.Mark, text string) string {
	return s.profile.String(text).Foreground(s.profile.Color(markColor(m))).String()
}

func markColor(m domain.Mark) string {
	if m == domain.O {
		return colorO
	}
	return colorX
}
