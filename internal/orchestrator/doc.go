// Package orchestrator is the driver that feeds the aggregation pipeline.
//
// It splits a unified PR diff into per-file slices, filters out excluded
// paths, runs every enabled agent over each slice, and applies the
// per-agent confidence threshold and findings cap before the aggregator
// ever sees the findings. Agent names are stamped here, not by the agents
// themselves.
package orchestrator
