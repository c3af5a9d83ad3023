package agents

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/microreview/microreview/internal/review"
)

func init() {
	Register("GitHubActionsSecurityAgent", func() Agent { return &GitHubActionsSecurityAgent{} })
}

// actionsRisk is a class of GitHub Actions security risk with its detection
// patterns and reporting metadata.
type actionsRisk struct {
	kind        string
	description string
	severity    review.Severity
	confidence  float64
	patterns    []*regexp.Regexp
}

var actionsRisks = []actionsRisk{
	{
		kind:        "untrusted_action",
		description: "Untrusted or mutable third-party action",
		severity:    review.SeverityHigh,
		confidence:  0.8,
		patterns: []*regexp.Regexp{
			// No specific version pin, or a mutable branch reference
			regexp.MustCompile(`uses:\s*[^@\s]+(@(main|master|develop|latest))?(\s|$)`),
			// Short commit hash
			regexp.MustCompile(`uses:\s*[^@\s]+@[a-f0-9]{7}(\s|$)`),
		},
	},
	{
		kind:        "secrets_exposure",
		description: "Potential secrets exposure",
		severity:    review.SeverityCritical,
		confidence:  0.9,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`echo\s+\$\{\{\s*secrets\.`),
			regexp.MustCompile(`env:\s*[^:]+:\s*\$\{\{\s*secrets\.`),
			regexp.MustCompile(`run:.*secrets\.`),
		},
	},
	{
		kind:        "unsafe_run",
		description: "Unsafe run command with user input",
		severity:    review.SeverityHigh,
		confidence:  0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`run:.*\$\{\{\s*github\.event\.pull_request\.title`),
			regexp.MustCompile(`run:.*\$\{\{\s*github\.event\.pull_request\.body`),
			regexp.MustCompile(`run:.*\$\{\{\s*github\.event\.head_commit\.message`),
			regexp.MustCompile(`shell:\s*bash.*-c.*\$\{`),
		},
	},
	{
		kind:        "privilege_escalation",
		description: "Excessive permissions or privilege escalation",
		severity:    review.SeverityHigh,
		confidence:  0.8,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`permissions:\s*write-all`),
			regexp.MustCompile(`contents:\s*write`),
			regexp.MustCompile(`actions:\s*write`),
			regexp.MustCompile(`GITHUB_TOKEN.*trigger`),
		},
	},
	{
		kind:        "pull_request_target",
		description: "Insecure pull_request_target usage",
		severity:    review.SeverityCritical,
		confidence:  0.9,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`on:\s*pull_request_target`),
			regexp.MustCompile(`pull_request_target:.*types:.*\[.*opened.*\]`),
		},
	},
}

// trustedPublishers are action prefixes that lower the untrusted-action risk.
var trustedPublishers = []string{"actions/", "github/", "microsoft/", "azure/", "docker/"}

var actionsMitigations = map[string]string{
	"untrusted_action":     "Pin to specific commit SHA or use trusted actions only",
	"secrets_exposure":     "Remove secrets from output and use secure secret handling",
	"unsafe_run":           "Sanitize user inputs or avoid using them in shell commands",
	"privilege_escalation": "Use minimal required permissions for each job",
	"pull_request_target":  "Consider using pull_request trigger or add safety checks",
}

var actionsExplanations = map[string][]string{
	"untrusted_action": {
		"Using mutable references (latest, main, master) or short commit hashes",
		"This allows action code to change unexpectedly, creating supply chain risks",
	},
	"secrets_exposure": {
		"Secrets should never be logged, echoed, or exposed in output",
		"This could leak sensitive credentials in build logs",
	},
	"unsafe_run": {
		"Using pull request titles, bodies, or commit messages in shell commands",
		"This enables command injection attacks from malicious PRs",
	},
	"privilege_escalation": {
		"Broad write permissions can allow attackers to modify repository",
		"Follow principle of least privilege for workflow permissions",
	},
	"pull_request_target": {
		"This trigger runs with write permissions in the context of the base repository",
		"Extremely dangerous when combined with user input or untrusted code execution",
	},
}

// GitHubActionsSecurityAgent detects security risks in GitHub Actions
// workflow changes: unpinned third-party actions, secrets exposure, unsafe
// run interpolation, overly broad permissions, and pull_request_target
// misuse. Non-workflow files are ignored entirely.
type GitHubActionsSecurityAgent struct{}

func (a *GitHubActionsSecurityAgent) Name() string { return "GitHubActionsSecurityAgent" }

func (a *GitHubActionsSecurityAgent) Analyze(diff, filePath string) []review.Finding {
	if !isWorkflowFile(filePath) {
		return nil
	}

	var findings []review.Finding
	for _, dl := range addedLines(diff) {
		for _, risk := range actionsRisks {
			for _, pattern := range risk.patterns {
				if !pattern.MatchString(dl.text) {
					continue
				}
				confidence := actionsConfidence(risk, dl.text)
				findings = append(findings, review.Finding{
					Finding:    fmt.Sprintf("GitHub Actions Security Risk: %s", risk.description),
					Reasoning:  actionsReasoning(risk, dl, confidence),
					Confidence: confidence,
					LineNumber: dl.num,
					FilePath:   filePath,
					Category:   "security",
					Severity:   risk.severity,
				})
			}
		}
	}
	return findings
}

func isWorkflowFile(filePath string) bool {
	if filePath == "" {
		return false
	}
	for _, indicator := range []string{".github/workflows/", ".yml", ".yaml"} {
		if strings.Contains(filePath, indicator) {
			return true
		}
	}
	return false
}

func actionsConfidence(risk actionsRisk, line string) float64 {
	confidence := risk.confidence

	for _, trusted := range trustedPublishers {
		if strings.Contains(line, trusted) {
			confidence -= 0.2
			break
		}
	}
	lower := strings.ToLower(line)
	if strings.Contains(lower, "test") || strings.Contains(lower, "example") {
		confidence -= 0.2
	}
	if strings.Contains(line, "${{") && strings.Contains(line, "github.event") {
		confidence += 0.1
	}
	if strings.Contains(line, "secrets.") && (strings.Contains(lower, "echo") || strings.Contains(lower, "print")) {
		confidence += 0.1
	}

	return clampConfidence(confidence)
}

func actionsReasoning(risk actionsRisk, dl diffLine, confidence float64) string {
	parts := []string{fmt.Sprintf("%s detected on line %d", risk.description, dl.num)}
	parts = append(parts, actionsExplanations[risk.kind]...)

	if mitigation, ok := actionsMitigations[risk.kind]; ok {
		parts = append(parts, fmt.Sprintf("Mitigation: %s", mitigation))
	}

	switch {
	case confidence >= 0.8:
		parts = append(parts, "High confidence - immediate review recommended")
	case confidence >= 0.6:
		parts = append(parts, "Moderate confidence - security review suggested")
	default:
		parts = append(parts, "Lower confidence - verify if this is a legitimate pattern")
	}

	return strings.Join(parts, ". ")
}
