package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the conventional config file location in a repository.
const DefaultPath = ".microreview.yml"

// AgentConfig holds per-agent overrides of the global settings.
type AgentConfig struct {
	ConfidenceThreshold *float64 `yaml:"confidence_threshold,omitempty"`
	MaxFindings         *int     `yaml:"max_findings,omitempty"`
}

// Config represents the .microreview.yml settings.
type Config struct {
	EnabledAgents       []string               `yaml:"enabled_agents"`
	ConfidenceThreshold float64                `yaml:"confidence_threshold"`
	GroupBy             string                 `yaml:"group_by"`
	MaxFindingsPerAgent int                    `yaml:"max_findings_per_agent"`
	ExcludePaths        []string               `yaml:"exclude_paths"`
	CommentMode         string                 `yaml:"comment_mode"`
	FailOn              string                 `yaml:"fail_on"`
	Provider            string                 `yaml:"provider"`
	Model               string                 `yaml:"model"`
	AgentConfig         map[string]AgentConfig `yaml:"agent_config"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		EnabledAgents:       []string{"HardCodedCredsAgent"},
		ConfidenceThreshold: 0.8,
		GroupBy:             "category",
		MaxFindingsPerAgent: 10,
		ExcludePaths:        []string{"tests/", "docs/", "*.md"},
		CommentMode:         "update",
		FailOn:              "none",
	}
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist. Keys absent from the file keep their default values.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c Config) Validate() error {
	if c.ConfidenceThreshold < 0.0 || c.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("confidence_threshold must be between 0.0 and 1.0")
	}
	switch c.GroupBy {
	case "file", "category", "none":
	default:
		return fmt.Errorf("group_by must be 'file', 'category', or 'none'")
	}
	switch c.CommentMode {
	case "update", "append":
	default:
		return fmt.Errorf("comment_mode must be 'update' or 'append'")
	}
	if c.MaxFindingsPerAgent <= 0 {
		return fmt.Errorf("max_findings_per_agent must be positive")
	}
	switch c.FailOn {
	case "", "none", "low", "medium", "high", "critical":
	default:
		return fmt.Errorf("fail_on must be 'none', 'low', 'medium', 'high', or 'critical'")
	}
	for name, ac := range c.AgentConfig {
		if ac.ConfidenceThreshold != nil && (*ac.ConfidenceThreshold < 0.0 || *ac.ConfidenceThreshold > 1.0) {
			return fmt.Errorf("agent_config.%s.confidence_threshold must be between 0.0 and 1.0", name)
		}
		if ac.MaxFindings != nil && *ac.MaxFindings <= 0 {
			return fmt.Errorf("agent_config.%s.max_findings must be positive", name)
		}
	}
	return nil
}

// ThresholdFor returns the confidence threshold for an agent, honoring the
// per-agent override when present.
func (c Config) ThresholdFor(agent string) float64 {
	if ac, ok := c.AgentConfig[agent]; ok && ac.ConfidenceThreshold != nil {
		return *ac.ConfidenceThreshold
	}
	return c.ConfidenceThreshold
}

// MaxFindingsFor returns the findings cap for an agent, honoring the
// per-agent override when present.
func (c Config) MaxFindingsFor(agent string) int {
	if ac, ok := c.AgentConfig[agent]; ok && ac.MaxFindings != nil {
		return *ac.MaxFindings
	}
	return c.MaxFindingsPerAgent
}

const exampleConfig = `# MicroReview configuration
enabled_agents:
  - HardCodedCredsAgent
  # - PiiExposureAgent            # Uncomment to enable PII/PHI detection
  # - GitHubActionsSecurityAgent  # Uncomment to enable GitHub Actions security

confidence_threshold: 0.8
group_by: category          # file, category, or none
max_findings_per_agent: 10
exclude_paths:
  - tests/
  - docs/
  - "*.md"
comment_mode: update        # update or append
fail_on: none               # none, low, medium, high, or critical

agent_config:
  HardCodedCredsAgent:
    confidence_threshold: 0.8
    max_findings: 5
  PiiExposureAgent:
    confidence_threshold: 0.7
    max_findings: 8
  GitHubActionsSecurityAgent:
    confidence_threshold: 0.8
    max_findings: 10
`

// SaveExample writes a commented example configuration file.
func SaveExample(path string) error {
	if path == "" {
		path = DefaultPath
	}
	return os.WriteFile(path, []byte(exampleConfig), 0o644)
}

// Marshal returns the config serialized as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}
