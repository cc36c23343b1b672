package pipeline

import (
	"time"

	"github.com/Iron-Ham/teamforge/internal/engine"
	"github.com/Iron-Ham/teamforge/internal/partition"
)

// Stage identifies a step of the team-formation pipeline.
type Stage string

const (
	// StagePlace builds the initial partition.
	StagePlace Stage = "place"

	// StageCategories evens out categories across teams.
	StageCategories Stage = "categories"

	// StageSizes narrows the team size spread.
	StageSizes Stage = "sizes"

	// StageLanguages improves translation coverage.
	StageLanguages Stage = "languages"

	// StageLeadership gives every team a leader-bearing cluster.
	StageLeadership Stage = "leadership"

	// StagePins applies configured pins.
	StagePins Stage = "pins"

	// StageDone indicates the run returned a partition.
	StageDone Stage = "done"

	// StageFailed indicates the run stopped with an error.
	StageFailed Stage = "failed"
)

// Stages returns the working stages in execution order.
func Stages() []Stage {
	return []Stage{StagePlace, StageCategories, StageSizes, StageLanguages, StageLeadership, StagePins}
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// IsTerminal returns true if this stage represents a final state.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}

// Pin asks for Cluster to end up in the same team as With.
type Pin struct {
	Cluster string `yaml:"cluster" json:"cluster" mapstructure:"cluster"`
	With    string `yaml:"with" json:"with" mapstructure:"with"`
}

// Config holds the run parameters. Zero iteration ceilings take the engine
// defaults; negative ones are rejected.
type Config struct {
	Teams              int
	CategoryPasses     int
	CleanupPasses      int
	SizeIterations     int
	LanguageIterations int
	Seed               uint64 // 0 keeps category cleanup deterministic
	Pins               []Pin
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Teams:              engine.DefaultTeams,
		CategoryPasses:     engine.DefaultCategoryPasses,
		CleanupPasses:      engine.DefaultCleanupPasses,
		SizeIterations:     engine.DefaultSizeIterations,
		LanguageIterations: engine.DefaultLanguageIterations,
	}
}

// defaults returns a copy of the config with zero ceilings filled in.
func (c Config) defaults() Config {
	d := DefaultConfig()
	if c.CategoryPasses == 0 {
		c.CategoryPasses = d.CategoryPasses
	}
	if c.CleanupPasses == 0 {
		c.CleanupPasses = d.CleanupPasses
	}
	if c.SizeIterations == 0 {
		c.SizeIterations = d.SizeIterations
	}
	if c.LanguageIterations == 0 {
		c.LanguageIterations = d.LanguageIterations
	}
	return c
}

// StageReport records what one stage did.
type StageReport struct {
	Stage    Stage
	Stats    engine.Stats
	Duration time.Duration
}

// PinFailure records a pin that could not be applied.
type PinFailure struct {
	Pin    Pin
	Reason string
}

// Result is the output of a run. Partition is read-only once returned.
type Result struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	Teams       int
	Partition   *partition.Partition
	Stages      []StageReport
	PinFailures []PinFailure
}

// Report returns the report for stage s, if it ran.
func (r *Result) Report(s Stage) (StageReport, bool) {
	for _, rep := range r.Stages {
		if rep.Stage == s {
			return rep, true
		}
	}
	return StageReport{}, false
}
