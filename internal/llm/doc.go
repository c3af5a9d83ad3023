// Package llm provides the language-model provider boundary.
//
// Providers are resolved by name with [New] and handed to the orchestrator
// as an explicit constructor parameter; there is no process-wide provider
// state. Agents that implement the agents.ProviderAware interface receive
// the handle and may use it to refine their analysis. A nil provider
// disables LLM assistance entirely and agents fall back to pure pattern
// matching.
package llm
