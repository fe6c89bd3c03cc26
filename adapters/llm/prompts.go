package llm

import (
	"fmt"
	"strings"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
)

// System messages for the three elicitation stages. Each one pins the JSON
// shape the corresponding response type decodes.
const (
	forecastSystemMessage = `You are a careful probabilistic forecaster. Given a question, you estimate the probability it resolves YES and you lay out the causal model behind your estimate as an explicit graph.

Respond with a JSON object:
{
  "probability": <number between 0 and 1>,
  "reasoning": "<your reasoning in markdown>",
  "nodes": [{"id": "<snake_case_id>", "description": "<what this factor is>", "role": "factor" | "outcome"}],
  "edges": [{"from": "<node id>", "to": "<node id>", "mechanism": "<how the source influences the target>"}]
}

Exactly one node must have role "outcome". Every edge must reference declared node ids. Do not create an edge from a node to itself.`

	probeTextSystemMessage = `You are an adversarial evidence writer. Given a forecasting question and a description of a probe, you write a short, concrete, plausible piece of evidence (2-4 sentences, as if from a news report) that realizes the probe. Never mention that the evidence is hypothetical or constructed.

Respond with a JSON object: {"probe_text": "<the evidence>"}`

	updateSystemMessage = `You are a careful probabilistic forecaster revising an earlier estimate. Weigh the new evidence against your prior reasoning. Irrelevant evidence should leave the estimate essentially unchanged; evidence contradicting a load-bearing assumption should move it substantially.

Respond with a JSON object:
{
  "updated_probability": <number between 0 and 1>,
  "shift_direction": "increased" | "decreased" | "unchanged",
  "reasoning": "<why the evidence does or does not move the estimate>"
}`
)

func forecastPrompt(question, background string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", question)
	if background != "" {
		fmt.Fprintf(&b, "\nBackground:\n%s\n", background)
	}
	b.WriteString("\nEstimate the probability this resolves YES and state your causal model as nodes and edges.")
	return b.String()
}

// probeTextPrompt describes the counterfactual to realize. The instruction
// depends on the probe semantics, not on which graph element is targeted.
func probeTextPrompt(question string, target probe.Target) string {
	var instruction string
	switch target.ProbeType {
	case probe.ProbeNodeNegateHigh, probe.ProbeNodeNegateMedium, probe.ProbeNodeNegateLow:
		instruction = fmt.Sprintf(
			"Write evidence showing that the following factor is absent, false, or has stopped operating: %s",
			target.Description)
	case probe.ProbeNodeStrengthen:
		instruction = fmt.Sprintf(
			"Write evidence confirming that the following factor is present and operating more strongly than expected: %s",
			target.Description)
	case probe.ProbeEdgeNegateCritical, probe.ProbeEdgeNegatePeripheral:
		instruction = fmt.Sprintf(
			"Write evidence showing that the following causal mechanism does not actually hold: %s",
			target.Description)
	case probe.ProbeEdgeFabricate:
		instruction = fmt.Sprintf(
			"Invent a plausible-sounding causal mechanism between factors relevant to the question and write evidence asserting it: %s",
			target.Description)
	case probe.ProbeMissingNode:
		instruction = "Invent a plausible-sounding causal factor that was not mentioned in the stated causal model and write evidence asserting it strongly affects the outcome."
	case probe.ProbeIrrelevant:
		instruction = "Write evidence about the general topic that has no causal bearing on the outcome whatsoever."
	default:
		instruction = fmt.Sprintf("Write evidence challenging: %s", target.Description)
	}

	return fmt.Sprintf("Question: %s\n\n%s", question, instruction)
}

func updatePrompt(question string, prior probe.Forecast, evidence string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	fmt.Fprintf(&b, "Your earlier estimate: %.3f\n\n", prior.Probability)
	if prior.Reasoning != "" {
		fmt.Fprintf(&b, "Your earlier reasoning:\n%s\n\n", prior.Reasoning)
	}
	fmt.Fprintf(&b, "New evidence:\n%s\n\n", evidence)
	b.WriteString("Revise your probability estimate in light of this evidence.")
	return b.String()
}
