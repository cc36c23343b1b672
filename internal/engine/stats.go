package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/Iron-Ham/teamforge/internal/cluster"
	"github.com/Iron-Ham/teamforge/internal/logging"
	"github.com/Iron-Ham/teamforge/internal/partition"
)

// Default iteration ceilings.
const (
	DefaultTeams              = 42
	DefaultCategoryPasses     = 40
	DefaultCleanupPasses      = 20
	DefaultSizeIterations     = 20
	DefaultLanguageIterations = 10
)

// Stats reports what a pass did.
type Stats struct {
	Iterations int  // loop iterations consumed
	Moves      int  // single-cluster moves applied
	Swaps      int  // two-cluster swaps applied
	Converged  bool // the pass reached its goal or a fixed point before its ceiling
}

// Add accumulates other into s. Converged is true only if both were.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		Iterations: s.Iterations + other.Iterations,
		Moves:      s.Moves + other.Moves,
		Swaps:      s.Swaps + other.Swaps,
		Converged:  s.Converged && other.Converged,
	}
}

// Option configures a balancing pass.
type Option func(*options)

type options struct {
	logger         *logging.Logger
	rng            *rand.Rand
	categoryPasses int
	cleanupPasses  int
	maxIterations  int
}

func newOptions(opts []Option) options {
	o := options{
		categoryPasses: DefaultCategoryPasses,
		cleanupPasses:  DefaultCleanupPasses,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NopLogger()
	}
	return o
}

// WithLogger sets the logger used for per-move debug output.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRand makes relocation targets in the category cleanup pass a uniform
// draw from the eligible teams instead of the lowest-index eligible team.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithCategoryPasses sets the per-category iteration ceiling.
func WithCategoryPasses(n int) Option {
	return func(o *options) {
		o.categoryPasses = n
	}
}

// WithCleanupPasses sets the cleanup iteration ceiling.
func WithCleanupPasses(n int) Option {
	return func(o *options) {
		o.cleanupPasses = n
	}
}

// WithMaxIterations sets the iteration ceiling of BalanceSizes and
// BalanceLanguages. Zero or negative keeps the pass default.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

func (o options) iterations(def int) int {
	if o.maxIterations > 0 {
		return o.maxIterations
	}
	return def
}

// category returns the category of id and whether it has one.
func category(id string) (cluster.Category, bool) {
	ident, ok := cluster.Classify(id)
	return ident.Category, ok
}

// firstMax returns the index of the first maximum of values.
func firstMax(values []int) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// firstMin returns the index of the first minimum of values.
func firstMin(values []int) int {
	best := 0
	for i, v := range values {
		if v < values[best] {
			best = i
		}
	}
	return best
}

// mustMove applies a move whose cluster and team were read off p. It
// panics if p rejects it.
func mustMove(p *partition.Partition, id string, to int) {
	if err := p.Move(id, to); err != nil {
		panic(fmt.Sprintf("engine: move %q to team %d: %v", id, to, err))
	}
}

// mustSwap is the swap counterpart of mustMove.
func mustSwap(p *partition.Partition, a, b string) {
	if err := p.Swap(a, b); err != nil {
		panic(fmt.Sprintf("engine: swap %q and %q: %v", a, b, err))
	}
}

// swapped returns the cluster list of a team after out leaves and in arrives.
func swapped(team []string, out, in string) []string {
	next := slices.Clone(team)
	if i := slices.Index(next, out); i >= 0 {
		next[i] = in
	}
	return next
}

// missingCount is the number of untranslated languages of a cluster list.
func missingCount(ids []string, catalog *cluster.Catalog) int {
	return len(partition.ProfileOfIDs(ids, catalog).Missing())
}
