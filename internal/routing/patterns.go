package routing

import (
	"fmt"
	"os"
	"regexp"

	"go.yaml.in/yaml/v3"
)

// phrasePattern is a weighted phrase matched by lowercase substring containment.
type phrasePattern struct {
	Phrase string  `yaml:"phrase"`
	Weight float64 `yaml:"weight"`
}

// capturePattern is a weighted regular expression whose first capture group
// names an agent.
type capturePattern struct {
	expr   *regexp.Regexp
	weight float64
}

// PatternTables holds the weighted pattern sets the directive parser matches
// against. The zero value is unusable; use DefaultPatternTables or
// LoadPatternTables.
type PatternTables struct {
	ForceConsensus   []phrasePattern
	PreventConsensus []phrasePattern
	Emergency        []phrasePattern
	Negations        []string
	assignment       []capturePattern
}

// patternFile is the YAML shape for pattern-table overrides.
type patternFile struct {
	ForceConsensus   []phrasePattern `yaml:"force_consensus"`
	PreventConsensus []phrasePattern `yaml:"prevent_consensus"`
	Emergency        []phrasePattern `yaml:"emergency"`
	Negations        []string        `yaml:"negations"`
}

// DefaultPatternTables returns the built-in pattern tables.
func DefaultPatternTables() PatternTables {
	return PatternTables{
		ForceConsensus: []phrasePattern{
			{Phrase: "get consensus", Weight: 1.0},
			{Phrase: "need consensus", Weight: 1.0},
			{Phrase: "reach consensus", Weight: 1.0},
			{Phrase: "multiple opinions", Weight: 0.8},
			{Phrase: "everyone should weigh in", Weight: 0.9},
			{Phrase: "all agents", Weight: 0.8},
			{Phrase: "vote on", Weight: 0.8},
			{Phrase: "second opinion", Weight: 0.7},
			{Phrase: "compare approaches", Weight: 0.6},
			{Phrase: "consensus", Weight: 0.6},
		},
		PreventConsensus: []phrasePattern{
			{Phrase: "no consensus", Weight: 1.0},
			{Phrase: "skip consensus", Weight: 1.0},
			{Phrase: "skip the vote", Weight: 0.9},
			{Phrase: "just one agent", Weight: 0.9},
			{Phrase: "single agent", Weight: 0.9},
			{Phrase: "don't ask everyone", Weight: 0.8},
			{Phrase: "solo", Weight: 0.7},
			{Phrase: "quick and simple", Weight: 0.5},
		},
		Emergency: []phrasePattern{
			{Phrase: "emergency", Weight: 1.0},
			{Phrase: "critical outage", Weight: 1.0},
			{Phrase: "hotfix", Weight: 0.9},
			{Phrase: "urgent", Weight: 0.8},
			{Phrase: "asap", Weight: 0.8},
			{Phrase: "immediately", Weight: 0.8},
			{Phrase: "right now", Weight: 0.7},
		},
		Negations: []string{
			"don't need consensus",
			"do not need consensus",
			"no need for consensus",
			"don't require consensus",
			"without consensus",
		},
		assignment: defaultAssignmentPatterns(),
	}
}

// assignmentExprs pair a capture regexp with a weight. The first capture group
// is the agent name.
var assignmentExprs = []struct {
	expr   string
	weight float64
}{
	{`ask (\w[\w-]*) to`, 2.0},
	{`assign (?:this |it )?to (\w[\w-]*)`, 2.0},
	{`let (\w[\w-]*) handle`, 1.8},
	{`have (\w[\w-]*) (?:do|take|work on)`, 1.8},
	{`give (?:this|it) to (\w[\w-]*)`, 1.6},
	{`(\w[\w-]*) should (?:do|handle|take) (?:this|it)`, 1.4},
	{`use (\w[\w-]*) for this`, 1.2},
}

func defaultAssignmentPatterns() []capturePattern {
	out := make([]capturePattern, 0, len(assignmentExprs))
	for _, a := range assignmentExprs {
		out = append(out, capturePattern{expr: regexp.MustCompile(a.expr), weight: a.weight})
	}
	return out
}

// LoadPatternTables reads pattern overrides from a YAML file and merges them
// over the defaults. A section left empty in the file keeps the built-in set.
// Assignment capture patterns are not overridable; they stay built in.
func LoadPatternTables(path string) (PatternTables, error) {
	tables := DefaultPatternTables()

	data, err := os.ReadFile(path)
	if err != nil {
		return tables, fmt.Errorf("read pattern file: %w", err)
	}

	var file patternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return tables, fmt.Errorf("parse pattern file: %w", err)
	}

	if len(file.ForceConsensus) > 0 {
		tables.ForceConsensus = file.ForceConsensus
	}
	if len(file.PreventConsensus) > 0 {
		tables.PreventConsensus = file.PreventConsensus
	}
	if len(file.Emergency) > 0 {
		tables.Emergency = file.Emergency
	}
	if len(file.Negations) > 0 {
		tables.Negations = file.Negations
	}

	return tables, nil
}

// modalSoftener matches hedging language that weakens consensus signals.
var modalSoftener = regexp.MustCompile(`\b(maybe|might|could|perhaps)\b`)
