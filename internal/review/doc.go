// Package review contains the finding model and the aggregation pipeline
// that turns the raw output of detector agents into a report.
//
// The pipeline runs in a fixed order: noise filtering, exact deduplication,
// merging of corroborating findings from different agents, grouping (by
// file, category, or none), and priority ordering within each group.
// Priority is a single combined score (severity weight times confidence)
// rather than a lexicographic sort, so a confident high-severity finding can
// outrank a speculative critical one.
//
// All operations are pure transformations over in-memory slices; the package
// performs no I/O and holds no state between invocations.
package review
