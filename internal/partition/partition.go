// Package partition models the assignment of clusters to a fixed number of
// teams.
//
// A [Partition] is mutated only through its methods, which never drop or
// duplicate a cluster. Team characteristics are derived on demand by
// [ProfileOf] from the partition and the catalog, so they cannot drift from
// the assignment they describe.
package partition

import (
	"fmt"
	"slices"

	"github.com/Iron-Ham/teamforge/internal/cluster"
	tferrors "github.com/Iron-Ham/teamforge/internal/errors"
)

// Partition is an ordered list of teams, each an ordered list of cluster
// identifiers. It is not safe for concurrent use; one stage owns it at a
// time.
type Partition struct {
	teams [][]string
	index map[string]int // cluster id -> team index
}

// New creates a partition with n empty teams.
func New(n int) *Partition {
	if n < 0 {
		n = 0
	}
	return &Partition{
		teams: make([][]string, n),
		index: make(map[string]int),
	}
}

// FromTeams builds a partition from explicit team lists. It fails if any
// identifier appears twice.
func FromTeams(teams [][]string) (*Partition, error) {
	p := New(len(teams))
	for i, team := range teams {
		for _, id := range team {
			if err := p.Add(i, id); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// Len returns the number of teams.
func (p *Partition) Len() int {
	return len(p.teams)
}

// Team returns a copy of team i's cluster identifiers.
func (p *Partition) Team(i int) []string {
	return slices.Clone(p.teams[i])
}

// Teams returns a deep copy of every team.
func (p *Partition) Teams() [][]string {
	out := make([][]string, len(p.teams))
	for i, t := range p.teams {
		out[i] = slices.Clone(t)
	}
	return out
}

// ClusterCount returns the number of clusters in team i.
func (p *Partition) ClusterCount(i int) int {
	return len(p.teams[i])
}

// TeamOf returns the index of the team holding id.
func (p *Partition) TeamOf(id string) (int, bool) {
	i, ok := p.index[id]
	return i, ok
}

// Add appends id to team i. An identifier may only be added once.
func (p *Partition) Add(i int, id string) error {
	if i < 0 || i >= len(p.teams) {
		return fmt.Errorf("team index %d out of range [0,%d)", i, len(p.teams))
	}
	if _, exists := p.index[id]; exists {
		return fmt.Errorf("cluster %q: %w", id, tferrors.ErrDuplicateCluster)
	}
	p.teams[i] = append(p.teams[i], id)
	p.index[id] = i
	return nil
}

// Move relocates id to the end of team to. Moving a cluster onto its own
// team is a no-op.
func (p *Partition) Move(id string, to int) error {
	from, ok := p.index[id]
	if !ok {
		return fmt.Errorf("cluster %q: %w", id, tferrors.ErrUnknownCluster)
	}
	if to < 0 || to >= len(p.teams) {
		return fmt.Errorf("team index %d out of range [0,%d)", to, len(p.teams))
	}
	if from == to {
		return nil
	}
	p.teams[from] = slices.DeleteFunc(p.teams[from], func(s string) bool { return s == id })
	p.teams[to] = append(p.teams[to], id)
	p.index[id] = to
	return nil
}

// Swap exchanges the teams of a and b. Each cluster takes the other's
// position within its new team.
func (p *Partition) Swap(a, b string) error {
	ta, ok := p.index[a]
	if !ok {
		return fmt.Errorf("cluster %q: %w", a, tferrors.ErrUnknownCluster)
	}
	tb, ok := p.index[b]
	if !ok {
		return fmt.Errorf("cluster %q: %w", b, tferrors.ErrUnknownCluster)
	}
	if ta == tb {
		return nil
	}
	ia := slices.Index(p.teams[ta], a)
	ib := slices.Index(p.teams[tb], b)
	p.teams[ta][ia] = b
	p.teams[tb][ib] = a
	p.index[a] = tb
	p.index[b] = ta
	return nil
}

// Clone returns an independent copy.
func (p *Partition) Clone() *Partition {
	out := &Partition{
		teams: p.Teams(),
		index: make(map[string]int, len(p.index)),
	}
	for k, v := range p.index {
		out.index[k] = v
	}
	return out
}

// Validate checks that every catalog cluster appears exactly once and that
// no unknown cluster is assigned.
func (p *Partition) Validate(catalog *cluster.Catalog) error {
	seen := make(map[string]int, catalog.Len())
	for _, team := range p.teams {
		for _, id := range team {
			seen[id]++
		}
	}
	for _, id := range catalog.IDs() {
		switch seen[id] {
		case 1:
		case 0:
			return fmt.Errorf("cluster %q unassigned: %w", id, tferrors.ErrIncomplete)
		default:
			return fmt.Errorf("cluster %q assigned %d times: %w", id, seen[id], tferrors.ErrIncomplete)
		}
		delete(seen, id)
	}
	for id := range seen {
		return fmt.Errorf("cluster %q not in catalog: %w", id, tferrors.ErrIncomplete)
	}
	return nil
}
