// Package cli implements the microreview command-line interface using cobra.
//
// Commands: analyze (diff from file/stdin or a GitHub PR), config
// (init/show), agents (list), and version. Exit codes are deterministic:
// 0 success, 1 findings at or above the fail-on threshold, 2 usage error,
// 3 authentication error, 4 runtime error.
package cli
