package orchestrator

import (
	"fmt"
	"io"

	"github.com/microreview/microreview/internal/agents"
	"github.com/microreview/microreview/internal/config"
	"github.com/microreview/microreview/internal/llm"
	"github.com/microreview/microreview/internal/review"
)

// Orchestrator runs the enabled detector agents over a PR diff and collects
// their findings for aggregation. It applies the per-agent confidence
// threshold and findings cap, and stamps each finding with the producing
// agent's name and the file it applies to.
type Orchestrator struct {
	cfg    config.Config
	agents []agents.Agent

	// Log receives progress output. Defaults to io.Discard; the CLI points
	// it at stderr.
	Log io.Writer
}

// New builds an orchestrator from configuration. The provider handle is
// passed to every enabled agent that opts in via agents.ProviderAware; nil
// disables LLM assistance. Unknown agent names are skipped with a warning
// rather than failing the run.
func New(cfg config.Config, provider llm.Provider) *Orchestrator {
	o := &Orchestrator{cfg: cfg, Log: io.Discard}

	for _, name := range cfg.EnabledAgents {
		agent, err := agents.New(name)
		if err != nil {
			o.logf("Warning: could not load agent %s: %v\n", name, err)
			continue
		}
		if aware, ok := agent.(agents.ProviderAware); ok && provider != nil {
			aware.SetProvider(provider)
		}
		o.agents = append(o.agents, agent)
	}
	return o
}

// Agents returns the names of the successfully loaded agents, in enabled order.
func (o *Orchestrator) Agents() []string {
	names := make([]string, 0, len(o.agents))
	for _, a := range o.agents {
		names = append(names, a.Name())
	}
	return names
}

// Run analyzes a PR diff with every loaded agent and returns the combined
// findings in deterministic order: files in diff order, agents in enabled
// order, findings in agent emission order.
func (o *Orchestrator) Run(prDiff string) []review.Finding {
	var all []review.Finding

	for _, fd := range SplitDiffByFile(prDiff) {
		if o.shouldExclude(fd.Path) {
			o.logf("Skipping excluded file: %s\n", fd.Path)
			continue
		}
		o.logf("Analyzing file: %s\n", fd.Path)

		for _, agent := range o.agents {
			threshold := o.cfg.ThresholdFor(agent.Name())
			maxFindings := o.cfg.MaxFindingsFor(agent.Name())

			findings := agent.Analyze(fd.Diff, fd.Path)

			kept := make([]review.Finding, 0, len(findings))
			for _, f := range findings {
				if f.Confidence >= threshold {
					kept = append(kept, f)
				}
			}
			if len(kept) > maxFindings {
				kept = kept[:maxFindings]
				o.logf("Limited %s findings to %d\n", agent.Name(), maxFindings)
			}

			for i := range kept {
				kept[i].AgentName = agent.Name()
				kept[i].FilePath = fd.Path
			}
			all = append(all, kept...)

			o.logf("Agent %s found %d issues in %s\n", agent.Name(), len(kept), fd.Path)
		}
	}

	o.logf("Total findings collected: %d\n", len(all))
	return all
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.Log == nil {
		return
	}
	fmt.Fprintf(o.Log, format, args...)
}
