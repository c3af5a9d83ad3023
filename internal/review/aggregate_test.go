package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterNoise(t *testing.T) {
	tests := []struct {
		name    string
		finding Finding
		kept    bool
	}{
		{
			name:    "confidence below absolute floor",
			finding: Finding{Finding: "X", FilePath: "src/app.py", Confidence: 0.2, Severity: SeverityHigh, Category: "general"},
			kept:    false,
		},
		{
			name:    "confidence at absolute floor",
			finding: Finding{Finding: "X", FilePath: "src/app.py", Confidence: 0.3, Severity: SeverityHigh, Category: "general"},
			kept:    true,
		},
		{
			name:    "test path below test floor",
			finding: Finding{Finding: "X", FilePath: "tests/foo.py", Confidence: 0.5, Severity: SeverityHigh, Category: "general"},
			kept:    false,
		},
		{
			name:    "test path above test floor",
			finding: Finding{Finding: "X", FilePath: "tests/foo.py", Confidence: 0.75, Severity: SeverityHigh, Category: "general"},
			kept:    true,
		},
		{
			name:    "spec path below test floor",
			finding: Finding{Finding: "X", FilePath: "app.spec.ts", Confidence: 0.6, Severity: SeverityHigh, Category: "general"},
			kept:    false,
		},
		{
			name:    "dotted test marker",
			finding: Finding{Finding: "X", FilePath: "widget.test.js", Confidence: 0.65, Severity: SeverityHigh, Category: "general"},
			kept:    false,
		},
		{
			name:    "security finding in readme",
			finding: Finding{Finding: "X", FilePath: "README.md", Confidence: 0.95, Severity: SeverityHigh, Category: "security"},
			kept:    false,
		},
		{
			name:    "low severity security in docs survives",
			finding: Finding{Finding: "X", FilePath: "guide.md", Confidence: 0.95, Severity: SeverityLow, Category: "security"},
			kept:    true,
		},
		{
			name:    "non-security finding in docs survives",
			finding: Finding{Finding: "X", FilePath: "guide.md", Confidence: 0.95, Severity: SeverityHigh, Category: "style"},
			kept:    true,
		},
		{
			name:    "regular finding survives",
			finding: Finding{Finding: "X", FilePath: "src/app.py", Confidence: 0.9, Severity: SeverityHigh, Category: "security"},
			kept:    true,
		},
		{
			name:    "empty file path survives floors above threshold",
			finding: Finding{Finding: "X", Confidence: 0.5, Severity: SeverityMedium, Category: "general"},
			kept:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FilterNoise([]Finding{tt.finding})
			if tt.kept {
				assert.Len(t, out, 1)
			} else {
				assert.Empty(t, out)
			}
		})
	}
}

func TestFilterNoise_EmptyResultIsValid(t *testing.T) {
	out := FilterNoise([]Finding{
		{Finding: "X", Confidence: 0.1},
		{Finding: "Y", Confidence: 0.05},
	})
	assert.Empty(t, out)
}

func TestDeduplicateExact(t *testing.T) {
	a := Finding{FilePath: "a.py", LineNumber: 5, Finding: "X", Reasoning: "r1", Confidence: 0.9, AgentName: "A"}
	dup := Finding{FilePath: "a.py", LineNumber: 5, Finding: "X", Reasoning: "r1", Confidence: 0.6, AgentName: "B"}
	other := Finding{FilePath: "a.py", LineNumber: 5, Finding: "X", Reasoning: "r2", Confidence: 0.6, AgentName: "B"}

	out := DeduplicateExact([]Finding{a, dup, other})
	require.Len(t, out, 2)

	// First-seen wins: the 0.9 copy survives, not the 0.6 one.
	assert.Equal(t, 0.9, out[0].Confidence)
	assert.Equal(t, "A", out[0].AgentName)
	assert.Equal(t, "r2", out[1].Reasoning)
}

func TestDeduplicateExact_Idempotent(t *testing.T) {
	findings := []Finding{
		{FilePath: "a.py", LineNumber: 1, Finding: "X", Reasoning: "r"},
		{FilePath: "a.py", LineNumber: 1, Finding: "X", Reasoning: "r"},
		{FilePath: "b.py", LineNumber: 2, Finding: "Y", Reasoning: "s"},
	}

	once := DeduplicateExact(findings)
	twice := DeduplicateExact(once)
	assert.Equal(t, once, twice)
}

func TestMergeSimilar_Corroboration(t *testing.T) {
	findings := []Finding{
		{FilePath: "a.py", LineNumber: 5, Finding: "X", Reasoning: "looks bad", Confidence: 0.9, AgentName: "A"},
		{FilePath: "a.py", LineNumber: 5, Finding: "X", Reasoning: "also bad", Confidence: 0.6, AgentName: "B"},
	}

	out := MergeSimilar(findings)
	require.Len(t, out, 1)

	f := out[0]
	assert.Equal(t, 0.9, f.Confidence)
	assert.Contains(t, f.Reasoning, "Confirmed by 2 agents")
	assert.Contains(t, f.Reasoning, "A")
	assert.Contains(t, f.Reasoning, "B")
}

func TestMergeSimilar_SingleMemberUnchanged(t *testing.T) {
	f := Finding{FilePath: "a.py", LineNumber: 5, Finding: "X", Reasoning: "r", Confidence: 0.9, AgentName: "A"}

	out := MergeSimilar([]Finding{f})
	require.Len(t, out, 1)
	assert.Equal(t, f, out[0])
}

func TestMergeSimilar_SameAgentNoCorroboration(t *testing.T) {
	findings := []Finding{
		{FilePath: "a.py", LineNumber: 5, Finding: "X", Reasoning: "r1", Confidence: 0.9, AgentName: "A"},
		{FilePath: "a.py", LineNumber: 5, Finding: "X", Reasoning: "r2", Confidence: 0.7, AgentName: "A"},
	}

	out := MergeSimilar(findings)
	require.Len(t, out, 1)
	assert.NotContains(t, out[0].Reasoning, "Confirmed by")
	assert.Equal(t, 0.9, out[0].Confidence)
}

func TestMergeSimilar_TieBrokenByFirstSeen(t *testing.T) {
	findings := []Finding{
		{FilePath: "a.py", LineNumber: 5, Finding: "X", Reasoning: "first", Confidence: 0.8, AgentName: "A"},
		{FilePath: "a.py", LineNumber: 5, Finding: "X", Reasoning: "second", Confidence: 0.8, AgentName: "B"},
	}

	out := MergeSimilar(findings)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Reasoning, "first")
}

func TestMergeSimilar_ConfidenceNeverInflated(t *testing.T) {
	findings := []Finding{
		{FilePath: "a.py", LineNumber: 5, Finding: "X", Confidence: 0.5, AgentName: "A"},
		{FilePath: "a.py", LineNumber: 5, Finding: "X", Confidence: 0.7, AgentName: "B"},
		{FilePath: "a.py", LineNumber: 5, Finding: "X", Confidence: 0.6, AgentName: "C"},
	}

	out := MergeSimilar(findings)
	require.Len(t, out, 1)
	assert.Equal(t, 0.7, out[0].Confidence)
}

func TestMergeSimilar_DifferentLocationsNotMerged(t *testing.T) {
	findings := []Finding{
		{FilePath: "a.py", LineNumber: 5, Finding: "X", Confidence: 0.9, AgentName: "A"},
		{FilePath: "a.py", LineNumber: 6, Finding: "X", Confidence: 0.6, AgentName: "B"},
		{FilePath: "b.py", LineNumber: 5, Finding: "X", Confidence: 0.6, AgentName: "B"},
	}

	out := MergeSimilar(findings)
	assert.Len(t, out, 3)
}

func TestGroupFindings_ByFile(t *testing.T) {
	findings := []Finding{
		{FilePath: "b.py", Finding: "1"},
		{FilePath: "a.py", Finding: "2"},
		{FilePath: "b.py", Finding: "3"},
		{Finding: "4"},
	}

	groups := GroupFindings(findings, GroupByFile)
	require.Len(t, groups, 3)

	assert.Equal(t, "b.py", groups[0].Label)
	assert.Len(t, groups[0].Findings, 2)
	assert.Equal(t, "a.py", groups[1].Label)
	assert.Equal(t, "Unknown File", groups[2].Label)
}

func TestGroupFindings_ByCategory(t *testing.T) {
	findings := []Finding{
		{Category: "security", Finding: "1"},
		{Category: "privacy", Finding: "2"},
		{Category: "security", Finding: "3"},
	}

	groups := GroupFindings(findings, GroupByCategory)
	require.Len(t, groups, 2)
	assert.Equal(t, "Security", groups[0].Label)
	assert.Equal(t, "Privacy", groups[1].Label)
}

func TestGroupFindings_None(t *testing.T) {
	findings := []Finding{{Finding: "1"}, {Finding: "2"}}

	groups := GroupFindings(findings, GroupByNone)
	require.Len(t, groups, 1)
	assert.Equal(t, "All Findings", groups[0].Label)
	assert.Len(t, groups[0].Findings, 2)
}

func TestGroupFindings_Completeness(t *testing.T) {
	findings := []Finding{
		{FilePath: "a.py", Finding: "1"},
		{FilePath: "b.py", Finding: "2"},
		{FilePath: "a.py", Finding: "3"},
	}

	for _, mode := range []string{GroupByFile, GroupByCategory, GroupByNone} {
		groups := GroupFindings(findings, mode)
		total := 0
		for _, g := range groups {
			require.NotEmpty(t, g.Findings, "empty group emitted for mode %s", mode)
			total += len(g.Findings)
		}
		assert.Equal(t, len(findings), total, "mode %s lost or duplicated findings", mode)
	}
}

func TestPrioritize_CombinedScore(t *testing.T) {
	// high 0.95 scores 2.85; critical 0.5 scores 2.0. The combined score
	// ranks the high-severity finding first.
	findings := []Finding{
		{Finding: "critical-low-conf", Severity: SeverityCritical, Confidence: 0.5},
		{Finding: "high-high-conf", Severity: SeverityHigh, Confidence: 0.95},
	}

	out := Prioritize(findings)
	require.Len(t, out, 2)
	assert.Equal(t, "high-high-conf", out[0].Finding)
	assert.Equal(t, "critical-low-conf", out[1].Finding)
}

func TestPrioritize_StableOnTies(t *testing.T) {
	findings := []Finding{
		{Finding: "first", Severity: SeverityMedium, Confidence: 0.5},
		{Finding: "second", Severity: SeverityMedium, Confidence: 0.5},
		{Finding: "third", Severity: SeverityLow, Confidence: 1.0},
	}

	out := Prioritize(findings)
	assert.Equal(t, "first", out[0].Finding)
	assert.Equal(t, "second", out[1].Finding)
	// low 1.0 scores 1.0, ties with nothing here; it stays last.
	assert.Equal(t, "third", out[2].Finding)
}

func TestPrioritize_OrderingProperty(t *testing.T) {
	findings := []Finding{
		{Finding: "a", Severity: SeverityLow, Confidence: 0.9},
		{Finding: "b", Severity: SeverityCritical, Confidence: 0.9},
		{Finding: "c", Severity: SeverityMedium, Confidence: 0.4},
		{Finding: "d", Severity: SeverityHigh, Confidence: 0.6},
	}

	out := Prioritize(findings)
	for i := 0; i < len(out)-1; i++ {
		assert.GreaterOrEqual(t, out[i].Score(), out[i+1].Score(),
			"finding %q before %q violates score ordering", out[i].Finding, out[i+1].Finding)
	}
}

func TestAggregate_EndToEnd(t *testing.T) {
	findings := []Finding{
		{FilePath: "src/api.py", LineNumber: 12, Finding: "Hard-coded API key", Reasoning: "r1", Confidence: 0.93, Category: "security", Severity: SeverityHigh, AgentName: "HardCodedCredsAgent"},
		{FilePath: "src/api.py", LineNumber: 12, Finding: "Hard-coded API key", Reasoning: "r2", Confidence: 0.85, Category: "security", Severity: SeverityHigh, AgentName: "PiiExposureAgent"},
		{FilePath: "src/api.py", LineNumber: 24, Finding: "Missing docs", Reasoning: "r3", Confidence: 0.87, Category: "documentation", Severity: SeverityMedium, AgentName: "DocsAgent"},
		{FilePath: "src/util.py", LineNumber: 3, Finding: "Weak", Reasoning: "r4", Confidence: 0.2, Category: "security", Severity: SeverityHigh, AgentName: "HardCodedCredsAgent"},
	}

	report := Aggregate(findings, GroupByCategory)

	assert.Equal(t, 4, report.TotalCount)
	assert.Equal(t, 2, report.UniqueCount)
	require.Len(t, report.Groups, 2)
	assert.Equal(t, "Security", report.Groups[0].Label)
	assert.Equal(t, "Documentation", report.Groups[1].Label)

	merged := report.Groups[0].Findings[0]
	assert.Equal(t, 0.93, merged.Confidence)
	assert.Contains(t, merged.Reasoning, "Confirmed by 2 agents: HardCodedCredsAgent, PiiExposureAgent")

	// The 0.2-confidence finding was noise-filtered; nothing else was lost.
	assert.Equal(t, 2, report.FindingCount())
}

func TestAggregate_EmptyInput(t *testing.T) {
	report := Aggregate(nil, GroupByCategory)

	assert.Empty(t, report.Groups)
	assert.Zero(t, report.TotalCount)
	assert.Zero(t, report.UniqueCount)
	assert.NotEmpty(t, report.RunID)
}

func TestAggregate_NormalizesBeforeFiltering(t *testing.T) {
	// Confidence above 1 clamps to 1 and survives; missing category and
	// severity pick up defaults.
	findings := []Finding{
		{FilePath: "a.py", LineNumber: 1, Finding: "X", Reasoning: "r", Confidence: 1.7},
	}

	report := Aggregate(findings, GroupByCategory)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "General", report.Groups[0].Label)

	f := report.Groups[0].Findings[0]
	assert.Equal(t, 1.0, f.Confidence)
	assert.Equal(t, DefaultSeverity, f.Severity)
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"security", "Security"},
		{"best practice", "Best Practice"},
		{"GENERAL", "General"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, titleCase(tt.in))
	}
}
