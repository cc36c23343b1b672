// Package cluster holds the input model of the team-formation engine.
//
// A [Record] aggregates the registrants that share one cluster identifier;
// a [Catalog] is the read-only, insertion-ordered set of records for a run.
// [Classify] is the single place that parses identifiers into a
// [Category] and origin tag, and [NormalizeLanguage] is the single place
// that folds language names for coverage comparisons. Engine passes must
// call these rather than re-parse identifiers or compare raw names.
package cluster
