package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/microreview/microreview/internal/llm"
	"github.com/microreview/microreview/internal/review"
)

func init() {
	Register("HardCodedCredsAgent", func() Agent { return &HardCodedCredsAgent{} })
}

// credentialPatterns match assignments that suggest an embedded secret.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(password|pwd|pass)\s*[:=]\s*["'][^"']{8,}["']`),
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*["'][^"']{16,}["']`),
	regexp.MustCompile(`(?i)(secret|token)\s*[:=]\s*["'][^"']{16,}["']`),
	regexp.MustCompile(`(?i)(access[_-]?key)\s*[:=]\s*["'][^"']{16,}["']`),
	regexp.MustCompile(`(?i)(private[_-]?key)\s*[:=]\s*["'][^"']{32,}["']`),
}

var (
	longBase64Pattern = regexp.MustCompile(`["'][A-Za-z0-9+/]{32,}["']`)
	longHexPattern    = regexp.MustCompile(`["'][a-f0-9]{32,}["']`)
)

// credsPolicyPrompt is the natural-language policy sent to the LLM provider
// when one is configured.
const credsPolicyPrompt = `Does this change introduce hard-coded credentials such as passwords, API keys, tokens, or secret access keys?

Hard-coding credentials directly into source code poses a serious security risk. These secrets can be inadvertently leaked, stored in version control, or exposed during logging or error handling. Flag any strings or variables that suggest credentials are embedded, such as assignments to variables like password, secret, token, apikey, auth, or access_key, and sensitive keys committed into .env, .yaml, .json, or configuration files.

Respond with ONLY a JSON array of findings, each an object with: "reasoning" (string), "finding" (string), "confidence" (number 0-1), "lineNumber" (integer, diff-relative), "severity" ("high" for credentials, "medium" for potential credentials). Do not repeat the credential values in the results.`

// HardCodedCredsAgent detects hard-coded secrets such as API keys,
// passwords, tokens, and access keys in added diff lines. When a provider is
// configured it applies the credential policy via the LLM and falls back to
// pattern matching on any provider or parse error.
type HardCodedCredsAgent struct {
	provider llm.Provider
}

func (a *HardCodedCredsAgent) Name() string { return "HardCodedCredsAgent" }

// SetProvider enables LLM-assisted analysis.
func (a *HardCodedCredsAgent) SetProvider(p llm.Provider) { a.provider = p }

func (a *HardCodedCredsAgent) Analyze(diff, filePath string) []review.Finding {
	if a.provider != nil {
		if findings, err := a.analyzeLLM(diff, filePath); err == nil {
			return findings
		}
	}
	return a.analyzePatterns(diff, filePath)
}

func (a *HardCodedCredsAgent) analyzePatterns(diff, filePath string) []review.Finding {
	var findings []review.Finding

	for _, dl := range addedLines(diff) {
		for _, pattern := range credentialPatterns {
			match := pattern.FindString(dl.text)
			if match == "" {
				continue
			}
			credType := credentialType(match)
			findings = append(findings, review.Finding{
				Finding:    fmt.Sprintf("Possible hard-coded %s detected", credType),
				Reasoning:  fmt.Sprintf("Line %d: Variable assignment with pattern matching %s on line: '%s'", dl.num, credType, dl.text),
				Confidence: credentialConfidence(dl.text),
				LineNumber: dl.num,
				FilePath:   filePath,
				Category:   "security",
				Severity:   review.SeverityHigh,
			})
		}
	}
	return findings
}

func (a *HardCodedCredsAgent) analyzeLLM(diff, filePath string) ([]review.Finding, error) {
	resp, err := a.provider.Complete(context.Background(), llm.Request{
		SystemPrompt: credsPolicyPrompt,
		UserPrompt:   fmt.Sprintf("File: %s\n\nDiff:\n%s", filePath, diff),
	})
	if err != nil {
		return nil, fmt.Errorf("provider completion: %w", err)
	}

	findings, err := parseLLMFindings(resp.Content)
	if err != nil {
		return nil, err
	}
	for i := range findings {
		findings[i].FilePath = filePath
		findings[i].Category = "security"
		findings[i] = findings[i].Normalize()
	}
	return findings, nil
}

// parseLLMFindings decodes a JSON array of findings from an LLM response,
// tolerating markdown code fences around the payload.
func parseLLMFindings(content string) ([]review.Finding, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) >= 2 {
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			content = strings.Join(lines[1:end], "\n")
		}
	}

	var findings []review.Finding
	if err := json.Unmarshal([]byte(content), &findings); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}
	return findings, nil
}

func credentialType(match string) string {
	lower := strings.ToLower(match)
	switch {
	case strings.Contains(lower, "password") || strings.Contains(lower, "pwd") || strings.Contains(lower, "pass"):
		return "password"
	case strings.Contains(lower, "api") && strings.Contains(lower, "key"):
		return "API key"
	case strings.Contains(lower, "secret"):
		return "secret"
	case strings.Contains(lower, "token"):
		return "token"
	case strings.Contains(lower, "access") && strings.Contains(lower, "key"):
		return "access key"
	case strings.Contains(lower, "private") && strings.Contains(lower, "key"):
		return "private key"
	default:
		return "credential"
	}
}

func credentialConfidence(line string) float64 {
	confidence := 0.8

	if longBase64Pattern.MatchString(line) {
		confidence += 0.15
	}
	if longHexPattern.MatchString(line) {
		confidence += 0.15
	}
	lower := strings.ToLower(line)
	if strings.Contains(lower, "test") || strings.Contains(lower, "demo") {
		confidence -= 0.3
	}
	if strings.Count(line, "x") > 5 {
		confidence -= 0.4
	}

	return clampConfidence(confidence)
}

func clampConfidence(c float64) float64 {
	if c < 0.1 {
		return 0.1
	}
	if c > 0.95 {
		return 0.95
	}
	return c
}

// diffLine is an added diff line with its 1-based position in the diff slice.
type diffLine struct {
	num  int
	text string
}

// addedLines yields the added ("+") lines of a diff in order. File header
// lines ("+++") are skipped.
func addedLines(diff string) []diffLine {
	var lines []diffLine
	for i, raw := range strings.Split(diff, "\n") {
		if !strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "+++") {
			continue
		}
		lines = append(lines, diffLine{num: i + 1, text: strings.TrimSpace(raw[1:])})
	}
	return lines
}
