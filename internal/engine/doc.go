// Package engine implements the team-formation passes.
//
// [Place] builds the first partition with a greedy, descending-headcount
// placement. Four balancing passes then repair it in place:
//
//   - [BalanceCategories] evens out per-category counts across teams.
//   - [BalanceSizes] narrows the spread between the largest and smallest team.
//   - [BalanceLanguages] reduces languages nobody in a team can translate.
//   - [BalanceLeadership] gives leaderless teams a leader-bearing cluster.
//
// [Pin] forces one cluster into another's team.
//
// # Ordering
//
// Every "first found" choice scans teams by ascending index, clusters within
// a team in insertion order, and categories in [cluster.Categories] order.
// Given the same catalog and options, every pass is deterministic.
//
// # Failure Semantics
//
// Passes never return errors for goals they cannot reach. Every loop has a
// fixed iteration ceiling, and every pass leaves each cluster assigned
// exactly once. A [Stats] value reports what the pass did.
package engine
