package agents

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/microreview/microreview/internal/review"
)

func init() {
	Register("PiiExposureAgent", func() Agent { return &PiiExposureAgent{} })
}

// piiPatterns match PII values appearing literally in code.
var piiPatterns = []*regexp.Regexp{
	// Email addresses
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	// SSN (XXX-XX-XXXX)
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	// Phone numbers
	regexp.MustCompile(`\b\(?([0-9]{3})\)?[-. ]?([0-9]{3})[-. ]?([0-9]{4})\b`),
	// Credit card numbers (simplified)
	regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`),
}

// piiContextPatterns match identifiers that suggest PII handling.
var piiContextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(ssn|social_security|social_security_number)`),
	regexp.MustCompile(`(?i)(email|email_address)`),
	regexp.MustCompile(`(?i)(phone|phone_number|mobile)`),
	regexp.MustCompile(`(?i)(address|street|zip|postal)`),
	regexp.MustCompile(`(?i)(credit_card|card_number|ccn)`),
	regexp.MustCompile(`(?i)(dob|date_of_birth|birthdate)`),
	regexp.MustCompile(`(?i)(medical|health|patient|diagnosis)`),
}

// piiExposurePatterns match PII reaching logs or other output.
var piiExposurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(log|print|console\.|debug|trace)\s*\([^)]*(user|customer|patient|person)`),
	regexp.MustCompile(`(?i)(log|print|console\.|debug|trace)\s*\([^)]*(email|phone|ssn|address)`),
}

// PiiExposureAgent detects potential exposure of personal or health
// information: literal PII values, PII-related identifiers, and PII flowing
// into logging or output calls.
type PiiExposureAgent struct{}

func (a *PiiExposureAgent) Name() string { return "PiiExposureAgent" }

func (a *PiiExposureAgent) Analyze(diff, filePath string) []review.Finding {
	var findings []review.Finding
	for _, dl := range addedLines(diff) {
		findings = append(findings, a.checkDirectPatterns(dl, filePath)...)
		findings = append(findings, a.checkExposurePatterns(dl, filePath)...)
		findings = append(findings, a.checkContextPatterns(dl, filePath)...)
	}
	return findings
}

func (a *PiiExposureAgent) checkDirectPatterns(dl diffLine, filePath string) []review.Finding {
	var findings []review.Finding
	for _, pattern := range piiPatterns {
		match := pattern.FindString(dl.text)
		if match == "" {
			continue
		}
		piiType := identifyPIIType(match)
		confidence := piiConfidence(dl.text, "direct_pattern")
		findings = append(findings, review.Finding{
			Finding:    fmt.Sprintf("Potential %s exposure in code", piiType),
			Reasoning:  piiReasoning(dl, piiType, confidence, "direct_pattern"),
			Confidence: confidence,
			LineNumber: dl.num,
			FilePath:   filePath,
			Category:   "privacy",
			Severity:   review.SeverityHigh,
		})
	}
	return findings
}

func (a *PiiExposureAgent) checkExposurePatterns(dl diffLine, filePath string) []review.Finding {
	var findings []review.Finding
	for _, pattern := range piiExposurePatterns {
		if !pattern.MatchString(dl.text) {
			continue
		}
		confidence := piiConfidence(dl.text, "exposure_pattern")
		findings = append(findings, review.Finding{
			Finding:    "Potential PII exposure through logging/output",
			Reasoning:  piiReasoning(dl, "PII logging", confidence, "exposure_pattern"),
			Confidence: confidence,
			LineNumber: dl.num,
			FilePath:   filePath,
			Category:   "privacy",
			Severity:   review.SeverityMedium,
		})
	}
	return findings
}

func (a *PiiExposureAgent) checkContextPatterns(dl diffLine, filePath string) []review.Finding {
	var findings []review.Finding
	for _, pattern := range piiContextPatterns {
		if !pattern.MatchString(dl.text) {
			continue
		}
		piiType := piiTypeFromContext(pattern.String())
		confidence := piiConfidence(dl.text, "context_pattern")
		findings = append(findings, review.Finding{
			Finding:    fmt.Sprintf("Potential %s handling without proper protection", piiType),
			Reasoning:  piiReasoning(dl, piiType, confidence, "context_pattern"),
			Confidence: confidence,
			LineNumber: dl.num,
			FilePath:   filePath,
			Category:   "privacy",
			Severity:   review.SeverityMedium,
		})
	}
	return findings
}

var (
	ssnPattern        = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}`)
	phonePattern      = regexp.MustCompile(`^\(?([0-9]{3})\)?[-. ]?([0-9]{3})[-. ]?([0-9]{4})\b`)
	creditCardPattern = regexp.MustCompile(`^(?:\d{4}[-\s]?){3}\d{4}\b`)
)

func identifyPIIType(match string) string {
	switch {
	case strings.Contains(match, "@"):
		return "email address"
	case ssnPattern.MatchString(match):
		return "Social Security Number"
	case phonePattern.MatchString(match):
		return "phone number"
	case creditCardPattern.MatchString(match):
		return "credit card number"
	default:
		return "personal information"
	}
}

func piiTypeFromContext(pattern string) string {
	lower := strings.ToLower(pattern)
	switch {
	case strings.Contains(lower, "ssn") || strings.Contains(lower, "social"):
		return "SSN"
	case strings.Contains(lower, "email"):
		return "email"
	case strings.Contains(lower, "phone"):
		return "phone number"
	case strings.Contains(lower, "address"):
		return "address"
	case strings.Contains(lower, "credit") || strings.Contains(lower, "card"):
		return "credit card"
	case strings.Contains(lower, "medical") || strings.Contains(lower, "health"):
		return "health information"
	default:
		return "personal information"
	}
}

func piiConfidence(line, method string) float64 {
	var confidence float64
	switch method {
	case "direct_pattern":
		confidence = 0.9
	case "exposure_pattern":
		confidence = 0.7
	case "context_pattern":
		confidence = 0.6
	default:
		confidence = 0.5
	}

	lower := strings.ToLower(line)
	if strings.Contains(lower, "test") || strings.Contains(lower, "example") || strings.Contains(lower, "demo") {
		confidence -= 0.3
	}
	if strings.Contains(lower, "mock") || strings.Contains(lower, "fake") || strings.Contains(lower, "dummy") {
		confidence -= 0.4
	}
	if strings.Count(line, "x") > 3 {
		confidence -= 0.3
	}
	if strings.Contains(lower, "log") || strings.Contains(lower, "print") {
		confidence += 0.1
	}
	if strings.Contains(lower, "database") || strings.Contains(lower, "db") {
		confidence += 0.1
	}

	return clampConfidence(confidence)
}

func piiReasoning(dl diffLine, piiType string, confidence float64, method string) string {
	var parts []string

	switch method {
	case "direct_pattern":
		parts = append(parts, fmt.Sprintf("Direct PII pattern detected on line %d", dl.num))
	case "exposure_pattern":
		parts = append(parts, fmt.Sprintf("PII exposure through logging/output detected on line %d", dl.num))
	case "context_pattern":
		parts = append(parts, fmt.Sprintf("PII-related variable/context detected on line %d", dl.num))
	default:
		parts = append(parts, fmt.Sprintf("PII-related pattern detected on line %d", dl.num))
	}
	parts = append(parts, fmt.Sprintf("Pattern suggests handling of %s", piiType))

	lower := strings.ToLower(dl.text)
	if strings.Contains(lower, "log") || strings.Contains(lower, "print") {
		parts = append(parts, "Logging context increases exposure risk")
	}
	if strings.Contains(lower, "test") || strings.Contains(lower, "demo") {
		parts = append(parts, "Test/demo context reduces risk")
	}

	switch {
	case confidence >= 0.8:
		parts = append(parts, "High risk of PII exposure")
	case confidence >= 0.6:
		parts = append(parts, "Moderate risk - review for compliance")
	default:
		parts = append(parts, "Low risk - verify if intentional")
	}

	return strings.Join(parts, ". ")
}
