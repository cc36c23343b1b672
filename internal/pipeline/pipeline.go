package pipeline

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/teamforge/internal/cluster"
	"github.com/Iron-Ham/teamforge/internal/engine"
	tferrors "github.com/Iron-Ham/teamforge/internal/errors"
	"github.com/Iron-Ham/teamforge/internal/event"
	"github.com/Iron-Ham/teamforge/internal/logging"
	"github.com/Iron-Ham/teamforge/internal/partition"
)

// Pipeline runs the team-formation stages in a fixed order:
// place → categories → sizes → languages → leadership → pins.
//
// A Pipeline may be reused for several catalogs; each Run owns its own
// partition. Runs are serialized.
type Pipeline struct {
	mu    sync.Mutex
	cfg   Config
	pcfg  pipelineConfig
	stage Stage
}

// New validates cfg and creates a Pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	cfg = cfg.defaults()
	if err := validate(cfg); err != nil {
		return nil, err
	}

	pc := pipelineConfig{}
	for _, opt := range opts {
		opt(&pc)
	}
	if pc.logger == nil {
		pc.logger = logging.NopLogger()
	}
	if pc.bus == nil {
		pc.bus = event.NewBus()
	}
	if pc.now == nil {
		pc.now = time.Now
	}
	if pc.newID == nil {
		pc.newID = uuid.NewString
	}

	return &Pipeline{cfg: cfg, pcfg: pc}, nil
}

func validate(cfg Config) error {
	invalid := func(field string, value any, msg string) error {
		return fmt.Errorf("pipeline: %w", tferrors.NewValidationError(msg).
			WithField(field).
			WithValue(value).
			WithCause(tferrors.ErrInvalidConfig))
	}
	if cfg.Teams < 1 {
		return invalid("teams", cfg.Teams, "team count must be at least 1")
	}
	ceilings := []struct {
		field string
		value int
	}{
		{"category_passes", cfg.CategoryPasses},
		{"cleanup_passes", cfg.CleanupPasses},
		{"size_iterations", cfg.SizeIterations},
		{"language_iterations", cfg.LanguageIterations},
	}
	for _, c := range ceilings {
		if c.value < 0 {
			return invalid(c.field, c.value, "iteration ceiling must not be negative")
		}
	}
	for i, pin := range cfg.Pins {
		if pin.Cluster == "" || pin.With == "" {
			return invalid(fmt.Sprintf("pins[%d]", i), pin, "pin needs both cluster and with")
		}
	}
	return nil
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Stage returns the stage the pipeline is in, or "" before the first run.
func (p *Pipeline) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

func (p *Pipeline) setStage(s Stage) {
	p.mu.Lock()
	p.stage = s
	p.mu.Unlock()
}

// Run forms teams from catalog. Goals the engine cannot reach are reported
// in the stage stats, never as errors. An error means the configuration or
// the catalog was unusable, or a stage broke partition completeness.
func (p *Pipeline) Run(catalog *cluster.Catalog) (*Result, error) {
	if catalog == nil {
		return nil, fmt.Errorf("pipeline: nil catalog: %w", tferrors.ErrInvalidConfig)
	}

	start := p.pcfg.now()
	result := &Result{
		RunID:     p.pcfg.newID(),
		StartedAt: start,
		Teams:     p.cfg.Teams,
	}
	log := p.pcfg.logger.WithRun(result.RunID)
	log.Info("run started", "clusters", catalog.Len(), "teams", p.cfg.Teams)
	p.pcfg.bus.Publish(event.NewRunStartedEvent(result.RunID, catalog.Len(), p.cfg.Teams))

	for _, stage := range Stages() {
		p.setStage(stage)
		stageLog := log.WithStage(stage.String())
		stageStart := p.pcfg.now()

		stats := p.runStage(stage, result, catalog, stageLog)

		if err := result.Partition.Validate(catalog); err != nil {
			p.setStage(StageFailed)
			stageLog.Error("partition incomplete after stage", "error", err.Error())
			return nil, tferrors.NewEngineError("partition incomplete", err).WithStage(stage.String())
		}

		rep := StageReport{Stage: stage, Stats: stats, Duration: p.pcfg.now().Sub(stageStart)}
		result.Stages = append(result.Stages, rep)
		stageLog.Info("stage complete",
			"iterations", stats.Iterations,
			"moves", stats.Moves,
			"swaps", stats.Swaps,
			"converged", stats.Converged,
			"duration_ms", rep.Duration.Milliseconds(),
		)
		p.pcfg.bus.Publish(event.NewStageCompletedEvent(
			result.RunID, stage.String(),
			stats.Iterations, stats.Moves, stats.Swaps, stats.Converged,
			rep.Duration,
		))
	}

	p.setStage(StageDone)
	result.Duration = p.pcfg.now().Sub(start)
	q := measure(result.Partition, catalog)
	log.Info("run complete",
		"spread", q.spread,
		"leaderless_teams", q.leaderless,
		"teams_missing_languages", q.missing,
		"pin_failures", len(result.PinFailures),
		"duration_ms", result.Duration.Milliseconds(),
	)
	p.pcfg.bus.Publish(event.NewRunCompletedEvent(result.RunID, q.spread, q.leaderless, q.missing, result.Duration))
	return result, nil
}

// runStage executes one stage against result.Partition, creating it for
// StagePlace.
func (p *Pipeline) runStage(stage Stage, result *Result, catalog *cluster.Catalog, log *logging.Logger) engine.Stats {
	opts := []engine.Option{engine.WithLogger(log)}
	switch stage {
	case StagePlace:
		part, stats := engine.Place(catalog, p.cfg.Teams, opts...)
		result.Partition = part
		return stats
	case StageCategories:
		opts = append(opts,
			engine.WithCategoryPasses(p.cfg.CategoryPasses),
			engine.WithCleanupPasses(p.cfg.CleanupPasses),
		)
		if p.cfg.Seed != 0 {
			opts = append(opts, engine.WithRand(rand.New(rand.NewPCG(p.cfg.Seed, p.cfg.Seed))))
		}
		return engine.BalanceCategories(result.Partition, catalog, opts...)
	case StageSizes:
		opts = append(opts, engine.WithMaxIterations(p.cfg.SizeIterations))
		return engine.BalanceSizes(result.Partition, catalog, opts...)
	case StageLanguages:
		opts = append(opts, engine.WithMaxIterations(p.cfg.LanguageIterations))
		return engine.BalanceLanguages(result.Partition, catalog, opts...)
	case StageLeadership:
		return engine.BalanceLeadership(result.Partition, catalog, opts...)
	case StagePins:
		return p.applyPins(result, catalog, log, opts)
	}
	return engine.Stats{Converged: true}
}

func (p *Pipeline) applyPins(result *Result, catalog *cluster.Catalog, log *logging.Logger, opts []engine.Option) engine.Stats {
	stats := engine.Stats{Converged: true}
	for _, pin := range p.cfg.Pins {
		s, err := engine.Pin(result.Partition, catalog, pin.With, pin.Cluster, opts...)
		if err != nil {
			log.Warn("pin skipped",
				"cluster", pin.Cluster,
				"with", pin.With,
				"error", err.Error(),
			)
			result.PinFailures = append(result.PinFailures, PinFailure{Pin: pin, Reason: err.Error()})
			p.pcfg.bus.Publish(event.NewPinFailedEvent(result.RunID, pin.With, pin.Cluster, err.Error()))
			stats.Converged = false
			continue
		}
		stats = stats.Add(s)
	}
	return stats
}

type quality struct {
	spread     int
	leaderless int
	missing    int
}

func measure(p *partition.Partition, catalog *cluster.Catalog) quality {
	var q quality
	if p.Len() == 0 {
		return q
	}
	sizes := partition.Sizes(p, catalog)
	lo, hi := sizes[0], sizes[0]
	for i, size := range sizes {
		lo, hi = min(lo, size), max(hi, size)
		prof := partition.ProfileOf(p, catalog, i)
		if prof.Leaders == 0 {
			q.leaderless++
		}
		if len(prof.Missing()) > 0 {
			q.missing++
		}
	}
	q.spread = hi - lo
	return q
}
