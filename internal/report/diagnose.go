package report

import (
	"gonum.org/v1/gonum/stat"

	"github.com/Iron-Ham/teamforge/internal/cluster"
	"github.com/Iron-Ham/teamforge/internal/partition"
)

// Member is one cluster as listed in a team summary.
type Member struct {
	ID        string `json:"id" yaml:"id"`
	Headcount int    `json:"headcount" yaml:"headcount"`
}

// TeamSummary describes one team of the final partition.
type TeamSummary struct {
	Index      int            `json:"index" yaml:"index"` // 0-based
	Clusters   []Member       `json:"clusters" yaml:"clusters"`
	Size       int            `json:"size" yaml:"size"`
	Categories map[string]int `json:"categories" yaml:"categories"`
	Missing    []string       `json:"missing,omitempty" yaml:"missing,omitempty"`
	Leaders    []string       `json:"leaders,omitempty" yaml:"leaders,omitempty"`
	StatusA    int            `json:"status_a" yaml:"status_a"`
	StatusB    int            `json:"status_b" yaml:"status_b"`
}

// Label is the 1-based display name of the team.
func (t TeamSummary) Label() int {
	return t.Index + 1
}

// Collision is a team holding more than one cluster of a category.
type Collision struct {
	Team     int    `json:"team" yaml:"team"`
	Category string `json:"category" yaml:"category"`
	Count    int    `json:"count" yaml:"count"`
}

// Diagnostics reports how well a partition meets the balancing goals.
// Unmet goals are surfaced here; the engine never fails on them.
type Diagnostics struct {
	RunID                 string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Teams                 []TeamSummary `json:"teams" yaml:"teams"`
	Clusters              int           `json:"clusters" yaml:"clusters"`
	Headcount             int           `json:"headcount" yaml:"headcount"`
	Spread                int           `json:"spread" yaml:"spread"`
	MinSize               int           `json:"min_size" yaml:"min_size"`
	MaxSize               int           `json:"max_size" yaml:"max_size"`
	MeanSize              float64       `json:"mean_size" yaml:"mean_size"`
	StdDevSize            float64       `json:"stddev_size" yaml:"stddev_size"`
	LeaderlessTeams       []int         `json:"leaderless_teams" yaml:"leaderless_teams"`
	TeamsMissingLanguages []int         `json:"teams_missing_languages" yaml:"teams_missing_languages"`
	CategoryCollisions    []Collision   `json:"category_collisions" yaml:"category_collisions"`
}

// Diagnose summarizes p. Team indexes in the slices of Diagnostics are
// 0-based.
func Diagnose(p *partition.Partition, catalog *cluster.Catalog) Diagnostics {
	d := Diagnostics{
		Teams:                 make([]TeamSummary, p.Len()),
		LeaderlessTeams:       []int{},
		TeamsMissingLanguages: []int{},
		CategoryCollisions:    []Collision{},
	}

	sizes := make([]float64, p.Len())
	for i := range p.Len() {
		ts := summarize(p, catalog, i)
		d.Teams[i] = ts
		sizes[i] = float64(ts.Size)
		d.Clusters += len(ts.Clusters)
		d.Headcount += ts.Size

		if i == 0 || ts.Size < d.MinSize {
			d.MinSize = ts.Size
		}
		if i == 0 || ts.Size > d.MaxSize {
			d.MaxSize = ts.Size
		}
		if len(ts.Leaders) == 0 {
			d.LeaderlessTeams = append(d.LeaderlessTeams, i)
		}
		if len(ts.Missing) > 0 {
			d.TeamsMissingLanguages = append(d.TeamsMissingLanguages, i)
		}
		for _, c := range cluster.Categories() {
			if n := ts.Categories[c.String()]; n > 1 {
				d.CategoryCollisions = append(d.CategoryCollisions, Collision{Team: i, Category: c.String(), Count: n})
			}
		}
	}
	d.Spread = d.MaxSize - d.MinSize

	switch len(sizes) {
	case 0:
	case 1:
		d.MeanSize = sizes[0]
	default:
		d.MeanSize, d.StdDevSize = stat.MeanStdDev(sizes, nil)
	}
	return d
}

func summarize(p *partition.Partition, catalog *cluster.Catalog, i int) TeamSummary {
	prof := partition.ProfileOf(p, catalog, i)
	ts := TeamSummary{
		Index:      i,
		Size:       prof.Size,
		Categories: make(map[string]int, len(prof.Categories)),
		Missing:    prof.Missing(),
		Leaders:    prof.LeaderNames,
	}
	for c, n := range prof.Categories {
		ts.Categories[c.String()] = n
	}
	for _, id := range p.Team(i) {
		ts.Clusters = append(ts.Clusters, Member{ID: id, Headcount: catalog.Headcount(id)})
		if rec, ok := catalog.Get(id); ok {
			ts.StatusA += rec.StatusA
			ts.StatusB += rec.StatusB
		}
	}
	if ts.Clusters == nil {
		ts.Clusters = []Member{}
	}
	return ts
}
