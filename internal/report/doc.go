// Package report measures a finished partition and renders it.
//
// [Diagnose] is the only place unmet balancing goals become visible: size
// spread, teams without a leader, teams with a language nobody can
// translate, and teams holding two clusters of one category. Renderers
// take the resulting [Diagnostics] and never touch the partition.
//
// Formats:
//   - text: styled console report, wrapped to the terminal width
//   - csv: team,cluster,headcount rows, plus an optional per-team summary
//   - yaml, json: the full Diagnostics document
package report
