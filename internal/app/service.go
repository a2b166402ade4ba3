package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jaminalder/tictactoe-rounds/internal/domain"
	"github.com/jaminalder/tictactoe-rounds/internal/logging"
	"github.com/jaminalder/tictactoe-rounds/internal/storage"
)

// Store persists one match snapshot per session. Update must apply fn
// atomically with respect to other writers of the same id.
type Store interface {
	Load(ctx context.Context, id string) (domain.Match, error)
	Update(ctx context.Context, id string, fn storage.UpdateFunc) error
	Delete(ctx context.Context, id string) error
}

// Renderer turns a snapshot into the payload pushed to subscribers.
type Renderer func(domain.Match) []byte

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service owns the match of every session. Transitions are serialized, and
// each one replaces the stored snapshot as a whole.
type Service struct {
	mu      sync.Mutex
	store   Store
	subs    map[string]map[*subscriber]struct{}
	render  Renderer
	log     *slog.Logger
	metrics *Metrics
}

type Option func(*Service)

// WithRenderer sets the broadcast renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.render = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l.With("component", "service")
		}
	}
}

// WithMetrics records transitions on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a service on store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		subs:   make(map[string]map[*subscriber]struct{}),
		render: func(domain.Match) []byte { return nil },
		log:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(r Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r == nil {
		s.render = func(domain.Match) []byte { return nil }
		return
	}
	s.render = r
}

// Snapshot returns the match of session id; unknown sessions get a new match.
func (s *Service) Snapshot(ctx context.Context, id string) (domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, id)
}

func (s *Service) loadLocked(ctx context.Context, id string) (domain.Match, error) {
	m, err := s.store.Load(ctx, id)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return domain.New(), nil
	}
	if err != nil {
		return domain.Match{}, fmt.Errorf("load session: %w", err)
	}
	return m, nil
}

// Apply runs one transition on the session's match. The snapshot is written
// and broadcast only when the transition was applied; otherwise the current
// snapshot is returned with applied=false.
func (s *Service) Apply(ctx context.Context, id string, a Action) (domain.Match, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var before, after domain.Match
	var applied bool
	err := s.store.Update(ctx, id, func(cur domain.Match, found bool) (domain.Match, bool) {
		if !found {
			cur = domain.New()
		}
		before = cur
		after, applied = a.run(cur)
		return after, applied
	})
	if err != nil {
		s.log.Error("update failed", "session", id, "action", a.Name, "error", err)
		return domain.Match{}, false, fmt.Errorf("update session: %w", err)
	}

	s.metrics.transition(a.Name, applied)
	s.log.Debug("transition", "session", id, "action", a.Name, "applied", applied)
	if !applied {
		return before, false, nil
	}
	s.observe(before, after)
	s.broadcastLocked(id, s.render(after))
	return after, true, nil
}

// End forgets the session. Subscribers stay connected and see the next
// transition on a fresh match.
func (s *Service) End(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) observe(before, after domain.Match) {
	if !before.Started && after.Started {
		s.metrics.matchStarted()
		s.log.Info("match started", "rounds", after.Config.TotalRounds)
	}
	if out := after.Outcome(); out.Decided() && !before.Outcome().Decided() {
		s.metrics.roundFinished(out)
		s.log.Info("round finished",
			"round", after.Round,
			"winner", out.Winner.String(),
			"score_x", after.Score.X,
			"score_o", after.Score.O,
		)
	}
}

// Fan-out under s.mu, so an unsubscribe cannot close a channel mid-send.
// Slow subscribers are closed and removed.
func (s *Service) broadcastLocked(id string, payload []byte) {
	set := s.subs[id]
	for sub := range set {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			delete(set, sub)
		}
	}
	if len(set) == 0 {
		delete(s.subs, id)
	}
}

// Subscribe registers a subscriber for a session. Returns a channel and an
// unsubscribe func; the subscription also ends with ctx.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}
