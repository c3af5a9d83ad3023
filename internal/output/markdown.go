package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/microreview/microreview/internal/review"
)

const (
	mdHeader = "#### 🤖 MicroReview Automated Code Review"
	mdFooter = "_This is an automated review by MicroReview. Please address any blocking issues before merging._\n\n" +
		"*To learn more about MicroReview or suggest new policies, visit our docs.*"
)

// MarkdownWriter renders a report as a single PR-comment-friendly markdown
// document: header, one-line summary, one section per group with one block
// per finding, and a fixed disclaimer footer.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}

	if report.FindingCount() == 0 {
		m.writeNoIssues(ew)
		return ew.err
	}

	ew.printf("%s\n\n", mdHeader)
	ew.printf("%s\n\n---\n\n", summaryLine(report))

	for _, g := range report.Groups {
		if len(g.Findings) == 0 {
			continue
		}
		ew.printf("**%s %s**\n\n", categoryEmoji(g.Label), g.Label)
		for _, f := range g.Findings {
			writeFinding(ew, f)
		}
		ew.printf("\n")
	}

	ew.printf("---\n\n%s\n", mdFooter)
	return ew.err
}

// writeNoIssues renders the dedicated variant for a clean review.
func (m *MarkdownWriter) writeNoIssues(ew *errWriter) {
	ew.printf("%s\n\n", mdHeader)
	ew.printf("**Summary:** No issues found! 🎉\n\n")
	ew.printf("All enabled micro-agents have reviewed the changes and found no policy violations or potential issues.\n\n")
	ew.printf("---\n\n")
	ew.printf("_This is an automated review by MicroReview._\n\n")
	ew.printf("*To learn more about MicroReview or suggest new policies, visit our docs.*\n")
}

func summaryLine(report *review.Report) string {
	total := report.FindingCount()
	fileCount := len(report.Files())

	var b strings.Builder
	fmt.Fprintf(&b, "**Summary:** %d potential issue%s found", total, plural(total))
	if fileCount > 1 {
		fmt.Fprintf(&b, " across %d file%s", fileCount, plural(fileCount))
	}
	b.WriteString(".")

	if dupes := report.TotalCount - report.UniqueCount; dupes > 0 {
		fmt.Fprintf(&b, " (%d duplicate%s removed)", dupes, plural(dupes))
	}
	return b.String()
}

func writeFinding(ew *errWriter, f review.Finding) {
	switch {
	case f.FilePath != "" && f.LineNumber > 0:
		ew.printf("- `%s` (line %d)\n", f.FilePath, f.LineNumber)
	case f.FilePath != "":
		ew.printf("- `%s`\n", f.FilePath)
	default:
		ew.printf("- Unknown location\n")
	}

	title := f.Finding
	if title == "" {
		title = "Issue detected"
	}
	ew.printf("  - **%s**\n", title)

	reasoning := f.Reasoning
	if reasoning == "" {
		reasoning = "No reasoning provided"
	}
	ew.printf("    > Reasoning: %s\n", reasoning)
	ew.printf("    > Confidence: %.2f\n", f.Confidence)

	agent := f.AgentName
	if agent == "" {
		agent = "Unknown Agent"
	}
	ew.printf("    > Agent: %s\n\n", agent)
}

// categoryEmoji maps a group label to its section icon. File-path labels fall
// through to the default.
func categoryEmoji(label string) string {
	switch label {
	case "Security":
		return "🔒"
	case "Privacy":
		return "🔐"
	case "Documentation":
		return "📄"
	case "Performance":
		return "⚡"
	case "Style":
		return "🎨"
	case "Duplication":
		return "🌀"
	case "Quality":
		return "✨"
	default:
		return "📋"
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
