package agents

import (
	"fmt"
	"sort"

	"github.com/microreview/microreview/internal/llm"
	"github.com/microreview/microreview/internal/review"
)

// Agent analyzes a file-scoped diff slice and returns raw findings.
// Implementations are stateless with respect to the diff: every call is
// independent and agents hold no per-run state.
type Agent interface {
	Name() string
	Analyze(diff, filePath string) []review.Finding
}

// ProviderAware is implemented by agents that can use a language-model
// provider to refine their analysis. The orchestrator passes its provider
// handle to every registered agent that implements this interface.
type ProviderAware interface {
	SetProvider(p llm.Provider)
}

// Factory constructs a fresh agent instance.
type Factory func() Agent

// registry maps agent names to factories. Populated at startup by the
// Register calls in each agent file; names are resolved explicitly rather
// than through reflection.
var registry = map[string]Factory{}

// Register adds an agent factory under the given name. It panics on a
// duplicate name since that is always a programming error.
func Register(name string, factory Factory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("agent %q registered twice", name))
	}
	registry[name] = factory
}

// New constructs the agent registered under name.
func New(name string) (Agent, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown agent: %s", name)
	}
	return factory(), nil
}

// Names returns all registered agent names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
