package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lastseen/internal/calendar"
	"lastseen/internal/classify"
	"lastseen/internal/geocode"
	"lastseen/internal/heuristic"
	"lastseen/internal/logging"
	"lastseen/internal/services"
	"lastseen/internal/verdict"
)

// Gate is the deterministic pre-oracle filter.
type Gate interface {
	Evaluate(ev calendar.Event) heuristic.Result
}

// Oracle classifies an event that passed the gate.
type Oracle interface {
	Classify(ctx context.Context, ev calendar.Event) (classify.Result, error)
}

// PlaceNormalizer resolves the display label of a shown event.
type PlaceNormalizer interface {
	Normalize(ctx context.Context, label string) (geocode.Place, error)
}

// Options configures a Pipeline.
type Options struct {
	// Concurrency bounds DecideAll; values below 2 decide sequentially.
	Concurrency int
	// Now stamps decidedAt. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Pipeline wires the gate, oracle and normalizer together.
type Pipeline struct {
	gate        Gate
	oracle      Oracle
	normalizer  PlaceNormalizer
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

// New constructs a Pipeline.
func New(gate Gate, oracle Oracle, normalizer PlaceNormalizer, opts Options) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		gate:        gate,
		oracle:      oracle,
		normalizer:  normalizer,
		concurrency: opts.Concurrency,
		now:         now,
		logger:      logging.NewComponentLogger(opts.Logger, "pipeline"),
	}
}

// Summary counts the outcomes of one DecideAll call.
type Summary struct {
	Shown   int
	Hidden  int
	Skipped int
}

// Decided returns the number of verdicts written.
func (s Summary) Decided() int {
	return s.Shown + s.Hidden
}

func (s *Summary) add(state State) {
	switch state {
	case Shown:
		s.Shown++
	case Hidden:
		s.Hidden++
	case Skipped:
		s.Skipped++
	}
}

// Decide runs the decision sequence for ev. The returned state is Skipped,
// Hidden or Shown on success and Pending when err is non-nil.
func (p *Pipeline) Decide(ctx context.Context, cache *verdict.Cache, ev calendar.Event) (State, error) {
	key := verdict.KeyFor(ev)
	ctx = services.WithEventKey(ctx, string(key))
	log := logging.WithContext(ctx, p.logger).With(logging.String("event_id", ev.ID))

	if _, ok := cache.GetKey(key); ok {
		log.Debug("event already decided")
		return Skipped, nil
	}

	gate := p.gate.Evaluate(ev)
	if !gate.Pass {
		p.transition(log, HeuristicRejected)
		cache.SetKey(key, verdict.Hide{DecidedAt: p.now()})
		log.Info("event hidden", logging.Args(logging.DecisionAttrs("heuristic", "hide", gate.Reason)...)...)
		return Hidden, nil
	}
	p.transition(log, HeuristicPassed)

	result, err := p.oracle.Classify(ctx, ev)
	if err != nil {
		return Pending, err
	}
	if !result.Show {
		p.transition(log, OracleRejected)
		cache.SetKey(key, verdict.Hide{DecidedAt: p.now()})
		log.Info("event hidden", logging.Args(logging.DecisionAttrs("oracle", "hide", result.Reason)...)...)
		return Hidden, nil
	}
	p.transition(log, OracleAccepted)

	label := strings.TrimSpace(result.Normalized)
	labelSource := "oracle"
	if label == "" {
		label = strings.TrimSpace(ev.Location)
		labelSource = "location"
	}
	place, err := p.normalizer.Normalize(ctx, label)
	if err != nil {
		return Pending, err
	}
	p.transition(log, Normalized)

	cache.SetKey(key, verdict.Show{
		Place:     place.Place,
		City:      place.City,
		MapURL:    place.MapURL,
		DecidedAt: p.now(),
	})
	log.Info("event shown",
		logging.Args(append(logging.DecisionAttrs("oracle", "show", result.Reason),
			logging.String("label_source", labelSource),
			logging.String("place", place.Place),
			logging.String("city", place.City),
		)...)...,
	)
	return Shown, nil
}

func (p *Pipeline) transition(log *slog.Logger, state State) {
	log.Debug("decision state", logging.String("state", state.String()))
}

// DecideAll decides every event. With Concurrency above one, events are
// decided in parallel with that bound; the first error cancels the remaining
// work and is returned. Verdicts written before the error stay in the cache.
func (p *Pipeline) DecideAll(ctx context.Context, cache *verdict.Cache, events []calendar.Event) (Summary, error) {
	var summary Summary
	if p.concurrency < 2 {
		for _, ev := range events {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			state, err := p.Decide(ctx, cache, ev)
			if err != nil {
				return summary, err
			}
			summary.add(state)
		}
		return summary, nil
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.concurrency)
	for _, ev := range events {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			state, err := p.Decide(groupCtx, cache, ev)
			if err != nil {
				return err
			}
			mu.Lock()
			summary.add(state)
			mu.Unlock()
			return nil
		})
	}
	err := group.Wait()
	return summary, err
}
