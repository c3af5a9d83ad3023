package review

// Severity represents the severity level of a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SeverityWeight returns the numeric weight used for priority scoring.
func SeverityWeight(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityWeight(s) >= SeverityWeight(Severity(threshold))
}

// Default values applied by Finding.Normalize for absent optional fields.
const (
	DefaultCategory = "general"
	DefaultSeverity = SeverityMedium
)

// Finding represents a single normalized issue produced by a detector agent.
//
// LineNumber 0 means the location within the file is unknown; an empty
// FilePath means the file itself is unknown. AgentName is stamped by the
// orchestrator, not by the agent that produced the finding.
type Finding struct {
	Finding    string   `json:"finding"`
	Reasoning  string   `json:"reasoning"`
	Confidence float64  `json:"confidence"`
	LineNumber int      `json:"lineNumber,omitempty"`
	FilePath   string   `json:"filePath,omitempty"`
	Category   string   `json:"category,omitempty"`
	Severity   Severity `json:"severity,omitempty"`
	AgentName  string   `json:"agent,omitempty"`
}

// Normalize returns a copy of f with absent optional fields defaulted and
// confidence clamped into [0,1]. Clamping (rather than dropping the finding)
// is the fixed out-of-range policy: a detector that mis-scores one finding
// should not lose it, and the batch is never aborted.
func (f Finding) Normalize() Finding {
	if f.Category == "" {
		f.Category = DefaultCategory
	}
	switch f.Severity {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
	default:
		f.Severity = DefaultSeverity
	}
	if f.Confidence < 0 {
		f.Confidence = 0
	}
	if f.Confidence > 1 {
		f.Confidence = 1
	}
	if f.LineNumber < 0 {
		f.LineNumber = 0
	}
	return f
}

// Score returns the combined priority score: severity weight times confidence.
func (f Finding) Score() float64 {
	return float64(SeverityWeight(f.Severity)) * f.Confidence
}

// Group is an ordered, labeled set of findings ready for rendering.
type Group struct {
	Label    string    `json:"label"`
	Findings []Finding `json:"findings"`
}

// Report is the top-level aggregation result consumed by output writers.
type Report struct {
	Tool        string  `json:"tool"`
	Version     string  `json:"version"`
	RunID       string  `json:"runId"`
	GroupBy     string  `json:"groupBy"`
	Groups      []Group `json:"groups"`
	TotalCount  int     `json:"totalCount"`
	UniqueCount int     `json:"uniqueCount"`
}

// Files returns the distinct file paths referenced by the report's findings,
// in first-seen order. Findings with no file path count once under "".
func (r *Report) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, g := range r.Groups {
		for _, f := range g.Findings {
			if !seen[f.FilePath] {
				seen[f.FilePath] = true
				files = append(files, f.FilePath)
			}
		}
	}
	return files
}

// FindingCount returns the number of findings across all groups.
func (r *Report) FindingCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Findings)
	}
	return n
}

// HasSeverityAtOrAbove reports whether any finding meets the given threshold.
func (r *Report) HasSeverityAtOrAbove(threshold string) bool {
	for _, g := range r.Groups {
		for _, f := range g.Findings {
			if MeetsThreshold(f.Severity, threshold) {
				return true
			}
		}
	}
	return false
}
