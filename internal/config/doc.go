// Package config loads and validates .microreview.yml configuration files.
//
// A missing file is not an error: defaults apply, and keys absent from the
// file keep their default values. Per-agent overrides of the confidence
// threshold and findings cap live under agent_config.
package config
