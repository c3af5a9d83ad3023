package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microreview/microreview/internal/review"
)

func renderMarkdown(t *testing.T, report *review.Report) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownWriter{}).Write(&buf, report))
	return buf.String()
}

func TestMarkdownWriter_NoIssues(t *testing.T) {
	out := renderMarkdown(t, &review.Report{})

	assert.Contains(t, out, "#### 🤖 MicroReview Automated Code Review")
	assert.Contains(t, out, "**Summary:** No issues found! 🎉")
	assert.Contains(t, out, "found no policy violations")
	assert.NotContains(t, out, "potential issue")
}

func TestMarkdownWriter_SingleFinding(t *testing.T) {
	report := &review.Report{
		TotalCount:  1,
		UniqueCount: 1,
		Groups: []review.Group{
			{Label: "Security", Findings: []review.Finding{{
				Finding:    "Hard-coded API key",
				Reasoning:  "Assignment matches a credential pattern",
				Confidence: 0.93,
				FilePath:   "src/api.py",
				LineNumber: 12,
				AgentName:  "HardCodedCredsAgent",
			}}},
		},
	}

	out := renderMarkdown(t, report)

	assert.Contains(t, out, "**Summary:** 1 potential issue found.")
	assert.NotContains(t, out, "issues found")
	assert.NotContains(t, out, "duplicate")
	assert.NotContains(t, out, "across")
	assert.Contains(t, out, "**🔒 Security**")
	assert.Contains(t, out, "- `src/api.py` (line 12)")
	assert.Contains(t, out, "  - **Hard-coded API key**")
	assert.Contains(t, out, "    > Reasoning: Assignment matches a credential pattern")
	assert.Contains(t, out, "    > Confidence: 0.93")
	assert.Contains(t, out, "    > Agent: HardCodedCredsAgent")
	assert.Contains(t, out, "_This is an automated review by MicroReview. Please address any blocking issues before merging._")
}

func TestMarkdownWriter_SummaryPluralAndDuplicates(t *testing.T) {
	report := &review.Report{
		TotalCount:  5,
		UniqueCount: 3,
		Groups: []review.Group{
			{Label: "Security", Findings: []review.Finding{
				{Finding: "A", FilePath: "a.py", Confidence: 0.9},
				{Finding: "B", FilePath: "b.py", Confidence: 0.8},
			}},
			{Label: "Style", Findings: []review.Finding{
				{Finding: "C", FilePath: "c.py", Confidence: 0.7},
			}},
		},
	}

	out := renderMarkdown(t, report)
	assert.Contains(t, out, "**Summary:** 3 potential issues found across 3 files. (2 duplicates removed)")
}

func TestMarkdownWriter_SingleDuplicate(t *testing.T) {
	report := &review.Report{
		TotalCount:  2,
		UniqueCount: 1,
		Groups: []review.Group{
			{Label: "Security", Findings: []review.Finding{
				{Finding: "A", FilePath: "a.py", Confidence: 0.9},
			}},
		},
	}

	out := renderMarkdown(t, report)
	assert.Contains(t, out, "(1 duplicate removed)")
}

func TestMarkdownWriter_LocationVariants(t *testing.T) {
	report := &review.Report{
		TotalCount:  3,
		UniqueCount: 3,
		Groups: []review.Group{
			{Label: "All Findings", Findings: []review.Finding{
				{Finding: "A", FilePath: "a.py", LineNumber: 7, Confidence: 0.9},
				{Finding: "B", FilePath: "b.py", Confidence: 0.8},
				{Finding: "C", Confidence: 0.7},
			}},
		},
	}

	out := renderMarkdown(t, report)
	assert.Contains(t, out, "- `a.py` (line 7)")
	assert.Contains(t, out, "- `b.py`\n")
	assert.NotContains(t, out, "- `b.py` (line")
	assert.Contains(t, out, "- Unknown location")
}

func TestMarkdownWriter_MissingFieldsGetPlaceholders(t *testing.T) {
	report := &review.Report{
		TotalCount:  1,
		UniqueCount: 1,
		Groups: []review.Group{
			{Label: "All Findings", Findings: []review.Finding{{Confidence: 0.5}}},
		},
	}

	out := renderMarkdown(t, report)
	assert.Contains(t, out, "**Issue detected**")
	assert.Contains(t, out, "> Reasoning: No reasoning provided")
	assert.Contains(t, out, "> Agent: Unknown Agent")
}

func TestMarkdownWriter_EmptyGroupSkipped(t *testing.T) {
	report := &review.Report{
		TotalCount:  1,
		UniqueCount: 1,
		Groups: []review.Group{
			{Label: "Security", Findings: []review.Finding{{Finding: "A", Confidence: 0.9}}},
			{Label: "Style"},
		},
	}

	out := renderMarkdown(t, report)
	assert.NotContains(t, out, "Style")
}

func TestCategoryEmoji(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Security", "🔒"},
		{"Privacy", "🔐"},
		{"Documentation", "📄"},
		{"Performance", "⚡"},
		{"Style", "🎨"},
		{"Duplication", "🌀"},
		{"Quality", "✨"},
		{"src/api.py", "📋"},
		{"General", "📋"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, categoryEmoji(tt.label), "label %q", tt.label)
	}
}

func TestJSONWriter(t *testing.T) {
	report := &review.Report{
		Tool:        "microreview",
		Version:     "1.0",
		RunID:       "run-1",
		GroupBy:     "category",
		TotalCount:  2,
		UniqueCount: 1,
		Groups: []review.Group{
			{Label: "Security", Findings: []review.Finding{{
				Finding: "A", Confidence: 0.9, FilePath: "a.py", LineNumber: 3,
			}}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, (&JSONWriter{}).Write(&buf, report))

	var decoded review.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *report, decoded)

	// Indented output, one field per line.
	assert.True(t, strings.Contains(buf.String(), "\n  "))
}

func TestGetWriter(t *testing.T) {
	w, err := GetWriter("markdown")
	require.NoError(t, err)
	assert.IsType(t, &MarkdownWriter{}, w)

	w, err = GetWriter("")
	require.NoError(t, err)
	assert.IsType(t, &MarkdownWriter{}, w)

	w, err = GetWriter("json")
	require.NoError(t, err)
	assert.IsType(t, &JSONWriter{}, w)

	_, err = GetWriter("xml")
	assert.ErrorContains(t, err, "unsupported output format")
}
