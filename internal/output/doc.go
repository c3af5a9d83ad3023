// Package output formats aggregated reports for display or machine
// consumption.
//
// Two formats are supported:
//   - markdown: a single PR-comment-ready document (default)
//   - json: the full structured report
//
// Use [GetWriter] to obtain a [Writer] for a given format string, or
// [WriteReport] to handle destination selection (file path or stdout).
package output
