// Package agents contains the detector micro-agents and their registry.
//
// Each agent is a stateless analyzer mapping a file-scoped diff slice to raw
// findings; only added diff lines are examined. Agents are registered by
// name in a static registry at startup and resolved explicitly from
// configuration strings, with no reflection involved.
//
// An agent that implements [ProviderAware] receives the orchestrator's
// language-model provider handle and may use it to refine analysis, falling
// back to its regex patterns when no provider is configured or the provider
// fails.
package agents
