// Package ingest turns a registrant spreadsheet, exported as CSV, into a
// [cluster.Catalog].
//
// Each row is one registrant. The cluster column is searched for a code of
// the form by|bo|sy|so + two-letter origin + number (optionally followed by
// a or b); rows without one are dropped and counted in [Summary.Dropped].
// Columns are located by case-insensitive glob patterns over the header
// row, so "*language*" finds "Languages spoken". Only the cluster column is
// required.
//
// A member whose English answer contains fluent, fair, good or native adds
// their languages to the cluster's translatable set; any other answer puts
// them in the spoken set. When no English column is configured all
// languages are translatable.
package ingest
