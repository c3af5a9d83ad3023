// Microreview scans pull-request diffs with independent pattern-matching
// micro-agents and synthesizes their findings into a single markdown review
// comment.
//
// Usage:
//
//	microreview analyze diff changes.patch   # analyze a diff file
//	git diff origin/main | microreview analyze diff   # analyze stdin
//	microreview analyze pr octo/app 42 --post  # fetch a PR and post the review
//	microreview config init                  # write an example .microreview.yml
//	microreview agents                       # list available micro-agents
//
// Exit codes are deterministic and suitable for CI gating: 0 success, 1 when
// findings meet the configured fail-on threshold, 2 usage error, 3
// authentication error, 4 runtime error.
package main
