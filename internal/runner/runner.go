package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lastseen/internal/calendar"
	"lastseen/internal/logging"
	"lastseen/internal/pipeline"
	"lastseen/internal/publish"
	"lastseen/internal/selection"
	"lastseen/internal/services"
	"lastseen/internal/verdict"
)

const (
	ModeBatch       = "batch"
	ModeIncremental = "incremental"

	defaultLockWait   = 2 * time.Minute
	lockRetryInterval = 250 * time.Millisecond
)

// Decider decides and caches verdicts. *pipeline.Pipeline satisfies it.
type Decider interface {
	DecideAll(ctx context.Context, cache *verdict.Cache, events []calendar.Event) (pipeline.Summary, error)
}

// Publisher replaces the status document. *publish.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, state publish.State) error
}

// Deps are the collaborators of a run.
type Deps struct {
	Source    calendar.Source
	Store     verdict.Store
	Decider   Decider
	Publisher Publisher
	Logger    *slog.Logger
}

// Options tune a run.
type Options struct {
	Lookahead time.Duration
	Lookback  time.Duration
	Location  *time.Location
	// AllowIncrementalDecisions lets incremental runs decide events that the
	// batch run never saw.
	AllowIncrementalDecisions bool
	// Placeholder is published when nothing qualifies. Empty leaves the
	// previous document in place.
	Placeholder string
	// LockPath enables the advisory run lock. Empty disables locking.
	LockPath string
	LockWait time.Duration
	Now      func() time.Time
}

// Runner executes batch and incremental runs.
type Runner struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
}

// New validates deps and returns a Runner.
func New(deps Deps, opts Options) (*Runner, error) {
	switch {
	case deps.Source == nil:
		return nil, errors.New("runner: calendar source is required")
	case deps.Store == nil:
		return nil, errors.New("runner: verdict store is required")
	case deps.Decider == nil:
		return nil, errors.New("runner: decider is required")
	case deps.Publisher == nil:
		return nil, errors.New("runner: publisher is required")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LockWait <= 0 {
		opts.LockWait = defaultLockWait
	}
	return &Runner{deps: deps, opts: opts, logger: logging.NewComponentLogger(deps.Logger, "runner")}, nil
}

// BatchReport summarizes a batch run.
type BatchReport struct {
	RunID     string
	Events    int
	Decisions pipeline.Summary
	Persisted bool
}

// IncrementalReport summarizes an incremental run.
type IncrementalReport struct {
	RunID       string
	Events      int
	Decisions   pipeline.Summary
	Persisted   bool
	EventID     string
	Published   bool
	Placeholder bool
	State       publish.State
}

// Batch decides every undecided event in [now, now+lookahead].
func (r *Runner) Batch(ctx context.Context) (BatchReport, error) {
	var report BatchReport
	err := r.withLock(ctx, func(ctx context.Context) error {
		var err error
		report, err = r.batch(ctx)
		return err
	})
	return report, err
}

// Incremental selects and publishes the latest shown event in
// [now-lookback, now].
func (r *Runner) Incremental(ctx context.Context) (IncrementalReport, error) {
	var report IncrementalReport
	err := r.withLock(ctx, func(ctx context.Context) error {
		var err error
		report, err = r.incremental(ctx)
		return err
	})
	return report, err
}

// RunOnce runs Batch then Incremental while holding the lock once.
func (r *Runner) RunOnce(ctx context.Context) (BatchReport, IncrementalReport, error) {
	var batch BatchReport
	var incremental IncrementalReport
	err := r.withLock(ctx, func(ctx context.Context) error {
		var err error
		if batch, err = r.batch(ctx); err != nil {
			return err
		}
		incremental, err = r.incremental(ctx)
		return err
	})
	return batch, incremental, err
}

func (r *Runner) batch(ctx context.Context) (BatchReport, error) {
	report := BatchReport{RunID: uuid.NewString()}
	ctx = services.WithMode(services.WithRunID(ctx, report.RunID), ModeBatch)
	log := logging.WithContext(ctx, r.logger)
	started := time.Now()

	now := r.opts.Now()
	events, err := r.deps.Source.ListEvents(ctx, now, now.Add(r.opts.Lookahead))
	if err != nil {
		return report, fmt.Errorf("list upcoming events: %w", err)
	}
	report.Events = len(events)
	log.Info("batch run started", logging.Int("event_count", len(events)), logging.Duration("lookahead", r.opts.Lookahead))

	cache := verdict.Load(ctx, r.deps.Store, r.deps.Logger)
	report.Decisions, err = r.deps.Decider.DecideAll(ctx, cache, events)
	if err != nil {
		return report, fmt.Errorf("decide events: %w", err)
	}
	if report.Persisted, err = r.persist(ctx, cache); err != nil {
		return report, err
	}

	log.Info("batch run complete",
		logging.Int("shown", report.Decisions.Shown),
		logging.Int("hidden", report.Decisions.Hidden),
		logging.Int("skipped", report.Decisions.Skipped),
		logging.Bool("persisted", report.Persisted),
		logging.Duration("elapsed", time.Since(started)),
	)
	return report, nil
}

func (r *Runner) incremental(ctx context.Context) (IncrementalReport, error) {
	report := IncrementalReport{RunID: uuid.NewString()}
	ctx = services.WithMode(services.WithRunID(ctx, report.RunID), ModeIncremental)
	log := logging.WithContext(ctx, r.logger)

	now := r.opts.Now()
	events, err := r.deps.Source.ListEvents(ctx, now.Add(-r.opts.Lookback), now)
	if err != nil {
		return report, fmt.Errorf("list recent events: %w", err)
	}
	report.Events = len(events)

	cache := verdict.Load(ctx, r.deps.Store, r.deps.Logger)
	if r.opts.AllowIncrementalDecisions {
		report.Decisions, err = r.deps.Decider.DecideAll(ctx, cache, events)
		if err != nil {
			return report, fmt.Errorf("decide events: %w", err)
		}
		if report.Persisted, err = r.persist(ctx, cache); err != nil {
			return report, err
		}
	}

	chosen, ok := selection.Select(events, now, r.opts.Lookback, cache, r.opts.Location)
	if ok {
		rec, _ := cache.Get(chosen)
		show, _ := rec.(verdict.Show)
		eventTime, _ := selection.Instant(chosen, r.opts.Location)
		report.EventID = chosen.ID
		report.State = publish.FromShow(show, now, eventTime)
		if err := r.deps.Publisher.Publish(ctx, report.State); err != nil {
			return report, err
		}
		report.Published = true
		log.Info("incremental publish", logging.Args(append(
			logging.DecisionAttrs("publish", "event", "latest completed event with SHOW verdict"),
			logging.String("event_id", chosen.ID),
		)...)...)
		return report, nil
	}

	if r.opts.Placeholder != "" {
		report.State = publish.Placeholder(r.opts.Placeholder, now)
		if err := r.deps.Publisher.Publish(ctx, report.State); err != nil {
			return report, err
		}
		report.Published = true
		report.Placeholder = true
		log.Info("incremental publish", logging.Args(logging.DecisionAttrs("publish", "placeholder", "no qualifying event")...)...)
		return report, nil
	}

	log.Info("incremental publish skipped", logging.Args(append(
		logging.DecisionAttrs("publish", "skip", "no qualifying event"),
		logging.Int("event_count", len(events)),
	)...)...)
	return report, nil
}

func (r *Runner) persist(ctx context.Context, cache *verdict.Cache) (bool, error) {
	if cache.Pending() == 0 {
		return false, nil
	}
	if err := cache.Persist(ctx); err != nil {
		return false, fmt.Errorf("persist verdict cache: %w", err)
	}
	return true, nil
}

func (r *Runner) withLock(ctx context.Context, fn func(context.Context) error) error {
	if r.opts.LockPath == "" {
		return fn(ctx)
	}
	if err := os.MkdirAll(filepath.Dir(r.opts.LockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(r.opts.LockPath)
	waitCtx, cancel := context.WithTimeout(ctx, r.opts.LockWait)
	defer cancel()
	ok, err := lock.TryLockContext(waitCtx, lockRetryInterval)
	if err != nil || !ok {
		return services.Wrap(services.ErrTimeout, "runner", "lock",
			fmt.Sprintf("another lastseen run holds %s", r.opts.LockPath), err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(r.logger, "failed to release run lock", "run_lock_release_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the lock file if no run is active"),
				logging.String(logging.FieldImpact, "later runs on this host may wait for the lock"),
			)
		}
	}()
	return fn(ctx)
}
