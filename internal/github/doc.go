// Package github is the source-control boundary: it fetches PR diffs and
// posts or updates the single microreview comment on a pull request.
//
// Existing comments are located by a fixed marker string in the comment
// body, so "update" mode edits the previous review in place instead of
// stacking new comments on every push.
package github
