package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	// Tool is the name stamped on every report.
	Tool = "microreview"
	// Version is the report schema version.
	Version = "1.0"
)

// Confidence floors applied by FilterNoise.
const (
	noiseFloor    = 0.3
	testPathFloor = 0.7
)

// testPathMarkers flag paths that look like test code.
var testPathMarkers = []string{"test", "spec", "__test__", ".test."}

// docPathMarkers flag paths that look like prose documentation.
var docPathMarkers = []string{"readme", "doc", ".md"}

// FilterNoise drops findings unlikely to be worth a reviewer's attention.
// Three rules, applied in order, each a hard drop:
//
//  1. confidence below the absolute floor (0.3), regardless of any
//     per-agent threshold applied upstream;
//  2. findings in test code below 0.7 confidence; test paths are
//     lower-stakes, so only high-confidence findings survive there;
//  3. non-low security findings located in prose documentation, which are
//     treated as false positives regardless of confidence.
//
// An empty result is a valid terminal state and feeds the "no issues" report.
func FilterNoise(findings []Finding) []Finding {
	kept := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if f.Confidence < noiseFloor {
			continue
		}
		if pathContainsAny(f.FilePath, testPathMarkers) && f.Confidence < testPathFloor {
			continue
		}
		if f.Category == "security" && f.Severity != SeverityLow && pathContainsAny(f.FilePath, docPathMarkers) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func pathContainsAny(path string, markers []string) bool {
	lower := strings.ToLower(path)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// exactKey identifies a finding for exact deduplication.
type exactKey struct {
	filePath   string
	lineNumber int
	finding    string
	reasoning  string
}

// DeduplicateExact removes findings that are exact duplicates: same file,
// line, finding text, and reasoning. First-seen in input order wins; later
// duplicates are discarded silently. This guards against a single agent or
// the orchestrator accidentally double-emitting the same finding.
func DeduplicateExact(findings []Finding) []Finding {
	seen := make(map[exactKey]bool, len(findings))
	unique := make([]Finding, 0, len(findings))
	for _, f := range findings {
		key := exactKey{f.FilePath, f.LineNumber, f.Finding, f.Reasoning}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, f)
	}
	return unique
}

// similarKey identifies the same issue at the same location, regardless of
// which agent reported it or how it worded the reasoning.
type similarKey struct {
	filePath   string
	lineNumber int
	finding    string
}

// MergeSimilar collapses findings that report the same issue at the same
// location. The member with the highest confidence becomes the
// representative (first-seen wins ties). When the collapsed members came
// from more than one distinct agent, a corroboration note naming the agents
// is appended to the representative's reasoning; corroboration affects
// explanation text only, never the numeric score.
func MergeSimilar(findings []Finding) []Finding {
	type bucket struct {
		rep    Finding
		agents []string
	}
	order := make([]similarKey, 0, len(findings))
	buckets := make(map[similarKey]*bucket, len(findings))

	for _, f := range findings {
		key := similarKey{f.FilePath, f.LineNumber, f.Finding}
		b, ok := buckets[key]
		if !ok {
			buckets[key] = &bucket{rep: f, agents: appendAgent(nil, f.AgentName)}
			order = append(order, key)
			continue
		}
		b.agents = appendAgent(b.agents, f.AgentName)
		if f.Confidence > b.rep.Confidence {
			b.rep = f
		}
	}

	merged := make([]Finding, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		f := b.rep
		if len(b.agents) > 1 {
			f.Reasoning = fmt.Sprintf("%s (Confirmed by %d agents: %s)",
				f.Reasoning, len(b.agents), strings.Join(b.agents, ", "))
		}
		merged = append(merged, f)
	}
	return merged
}

func appendAgent(agents []string, name string) []string {
	if name == "" {
		return agents
	}
	for _, a := range agents {
		if a == name {
			return agents
		}
	}
	return append(agents, name)
}

// Grouping modes.
const (
	GroupByFile     = "file"
	GroupByCategory = "category"
	GroupByNone     = "none"
)

// Sentinel group labels.
const (
	labelUnknownFile = "Unknown File"
	labelAllFindings = "All Findings"
)

// GroupFindings partitions findings into labeled groups according to the
// grouping mode. Groups appear in first-seen order of their first member and
// empty groups are never emitted. An unknown mode behaves like "none".
func GroupFindings(findings []Finding, groupBy string) []Group {
	var labelFor func(Finding) string
	switch groupBy {
	case GroupByFile:
		labelFor = func(f Finding) string {
			if f.FilePath == "" {
				return labelUnknownFile
			}
			return f.FilePath
		}
	case GroupByCategory:
		labelFor = func(f Finding) string {
			return titleCase(f.Category)
		}
	default:
		labelFor = func(Finding) string { return labelAllFindings }
	}

	var order []string
	byLabel := make(map[string][]Finding)
	for _, f := range findings {
		label := labelFor(f)
		if _, ok := byLabel[label]; !ok {
			order = append(order, label)
		}
		byLabel[label] = append(byLabel[label], f)
	}

	groups := make([]Group, 0, len(order))
	for _, label := range order {
		groups = append(groups, Group{Label: label, Findings: byLabel[label]})
	}
	return groups
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// Prioritize orders findings by combined score (severity weight times
// confidence), descending. The sort is stable, so ties preserve input order.
// The single multiplicative score means a high-severity finding at very high
// confidence can outrank a critical finding at low confidence.
func Prioritize(findings []Finding) []Finding {
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score() > sorted[j].Score()
	})
	return sorted
}

// Aggregate runs the full pipeline over raw findings: normalize, filter
// noise, deduplicate exact copies, merge corroborating findings, group, and
// prioritize within each group. TotalCount is the raw input length;
// UniqueCount is the size of the deduplicated and merged set.
func Aggregate(findings []Finding, groupBy string) *Report {
	normalized := make([]Finding, 0, len(findings))
	for _, f := range findings {
		normalized = append(normalized, f.Normalize())
	}

	merged := MergeSimilar(DeduplicateExact(FilterNoise(normalized)))
	groups := GroupFindings(merged, groupBy)
	for i := range groups {
		groups[i].Findings = Prioritize(groups[i].Findings)
	}

	return &Report{
		Tool:        Tool,
		Version:     Version,
		RunID:       uuid.NewString(),
		GroupBy:     groupBy,
		Groups:      groups,
		TotalCount:  len(findings),
		UniqueCount: len(merged),
	}
}
