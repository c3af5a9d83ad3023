package orchestrator

import (
	"path/filepath"
	"strings"
)

// FileDiff is the slice of a PR diff that applies to a single file.
type FileDiff struct {
	Path string
	Diff string
}

// SplitDiffByFile splits a unified PR diff into per-file slices, preserving
// the order files appear in the diff. File paths come from "diff --git" or
// "+++ b/" headers; a diff with no recognizable headers is treated as a
// single file named "unknown".
func SplitDiffByFile(prDiff string) []FileDiff {
	var result []FileDiff
	var currentPath string
	var currentLines []string

	flush := func() {
		if currentPath != "" && len(currentLines) > 0 {
			result = append(result, FileDiff{
				Path: currentPath,
				Diff: strings.Join(currentLines, "\n"),
			})
		}
		currentLines = nil
	}

	for _, line := range strings.Split(prDiff, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git"):
			flush()
			// Format: diff --git a/path b/path
			parts := strings.Fields(line)
			if len(parts) >= 4 {
				currentPath = strings.TrimPrefix(parts[2], "a/")
			} else {
				currentPath = "unknown"
			}
		case strings.HasPrefix(line, "+++ b/"):
			currentPath = strings.TrimPrefix(line, "+++ b/")
		}
		if currentPath != "" {
			currentLines = append(currentLines, line)
		}
	}
	flush()

	if len(result) == 0 && strings.TrimSpace(prDiff) != "" {
		result = append(result, FileDiff{Path: "unknown", Diff: prDiff})
	}
	return result
}

// shouldExclude reports whether a file path matches any exclude pattern.
// Patterns match as globs against the full path and the base name, and as
// directory prefixes (a trailing slash is optional).
func (o *Orchestrator) shouldExclude(path string) bool {
	for _, pattern := range o.cfg.ExcludePaths {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
		if strings.HasPrefix(path, strings.TrimSuffix(pattern, "/")+"/") {
			return true
		}
	}
	return false
}
