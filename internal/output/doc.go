// Package output formats review results for display or machine consumption.
//
// Three formats are supported:
//   - text     - divider-separated Issue/Reason/Score blocks, styled with
//     lipgloss when colour is enabled (default)
//   - json     - the full structured result
//   - markdown - a summary table and one section per finding
//
// Free-text answers (map-reduce) are printed as-is. Intermediate steps are
// included only when requested.
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*review.Result]. [WriteResult]
// handles destination selection.
package output
