package routing

import (
	"fmt"
	"math"
	"strings"
)

const (
	// directiveMinConfidence is the floor below which a consensus signal is
	// not honored.
	directiveMinConfidence = 0.3
	// conflictEpsilon is the margin one consensus signal must exceed the
	// other by to win a conflict. Closer than this, neither is honored.
	conflictEpsilon = 0.05
	// multiAgentConsensusBoost is added to the force-consensus score when the
	// user mentions two or more distinct agents.
	multiAgentConsensusBoost = 0.5
	// softenerScale shrinks consensus scores when hedging language is present.
	softenerScale = 0.9
	// maxParsingNotes bounds the parsing-note trail.
	maxParsingNotes = 25
)

// UserDirective is the structured routing intent extracted from free text.
type UserDirective struct {
	// ForceConsensus is true when the user asked for consensus and the signal
	// survived conflict resolution.
	ForceConsensus bool
	// PreventConsensus is true when the user asked to skip consensus and the
	// signal survived conflict resolution. Never true together with
	// ForceConsensus.
	PreventConsensus bool
	// IsEmergency is true when the text carries a strong urgency signal.
	IsEmergency bool
	// AssignToAgent is the ID of the single agent the user most strongly
	// assigned the task to, if any.
	AssignToAgent string
	// AssignedAgents lists all resolved agent IDs in first-mention order.
	AssignedAgents []string

	// ForceConfidence is the saturated force-consensus score (0-1).
	ForceConfidence float64
	// PreventConfidence is the saturated prevent-consensus score (0-1).
	PreventConfidence float64
	// EmergencyConfidence is the saturated emergency score (0-1).
	EmergencyConfidence float64
	// AssignmentConfidence is the saturated score of the strongest
	// assignment (0-1).
	AssignmentConfidence float64

	// ParsingNotes records what the parser matched and decided, bounded to
	// maxParsingNotes entries.
	ParsingNotes []string
}

// DirectiveParser extracts structured routing intent from user text.
// It is safe for concurrent use; parsing has no side effects beyond the
// returned directive.
type DirectiveParser struct {
	tables   PatternTables
	resolver agentResolver
}

// NewDirectiveParser creates a parser with the default pattern tables.
// The directory may be nil, in which case no agent names resolve.
func NewDirectiveParser(directory AgentDirectory) *DirectiveParser {
	return NewDirectiveParserWithTables(directory, DefaultPatternTables())
}

// NewDirectiveParserWithTables creates a parser with custom pattern tables,
// e.g. loaded from a YAML override file.
func NewDirectiveParserWithTables(directory AgentDirectory, tables PatternTables) *DirectiveParser {
	return &DirectiveParser{
		tables:   tables,
		resolver: agentResolver{directory: directory},
	}
}

// Parse extracts a UserDirective from free text. After conflict resolution at
// most one of ForceConsensus/PreventConsensus is true.
func (p *DirectiveParser) Parse(text string) UserDirective {
	d := UserDirective{}
	lower := strings.ToLower(text)

	var forceScore, preventScore, emergencyScore float64

	for _, pat := range p.tables.ForceConsensus {
		if strings.Contains(lower, pat.Phrase) {
			forceScore += pat.Weight
			p.note(&d, "force signal %q (+%.2f)", pat.Phrase, pat.Weight)
		}
	}
	for _, pat := range p.tables.PreventConsensus {
		if strings.Contains(lower, pat.Phrase) {
			preventScore += pat.Weight
			p.note(&d, "prevent signal %q (+%.2f)", pat.Phrase, pat.Weight)
		}
	}
	for _, pat := range p.tables.Emergency {
		if strings.Contains(lower, pat.Phrase) {
			emergencyScore += pat.Weight
			p.note(&d, "emergency signal %q (+%.2f)", pat.Phrase, pat.Weight)
		}
	}

	assignScores := p.collectAssignments(lower, &d)

	// A negation like "don't need consensus" still matched the embedded force
	// phrase above, so invert: the accumulated force weight was really a
	// prevent signal, and vice versa.
	for _, neg := range p.tables.Negations {
		if strings.Contains(lower, neg) {
			forceScore, preventScore = preventScore, forceScore
			p.note(&d, "negation %q inverted consensus signals", neg)
			break
		}
	}

	if modalSoftener.MatchString(lower) {
		forceScore *= softenerScale
		preventScore *= softenerScale
		p.note(&d, "hedging language softened consensus signals")
	}

	if len(d.AssignedAgents) >= 2 {
		forceScore += multiAgentConsensusBoost
		p.note(&d, "%d agents mentioned, boosting force signal (+%.2f)",
			len(d.AssignedAgents), multiAgentConsensusBoost)
	}

	d.ForceConfidence = saturate(forceScore)
	d.PreventConfidence = saturate(preventScore)
	d.EmergencyConfidence = saturate(emergencyScore)

	var bestScore float64
	for _, id := range d.AssignedAgents {
		if assignScores[id] > bestScore {
			bestScore = assignScores[id]
			d.AssignToAgent = id
		}
	}
	d.AssignmentConfidence = saturate(bestScore)

	d.IsEmergency = d.EmergencyConfidence >= directiveMinConfidence
	p.resolveConflict(&d)

	return d
}

// collectAssignments runs the assignment capture patterns, resolves captured
// names against the directory, and accumulates per-agent scores. Unknown
// names contribute zero weight and are recorded as skipped.
func (p *DirectiveParser) collectAssignments(lower string, d *UserDirective) map[string]float64 {
	scores := make(map[string]float64)
	seen := make(map[string]bool)

	for _, pat := range p.tables.assignment {
		for _, m := range pat.expr.FindAllStringSubmatch(lower, -1) {
			name := m[1]
			id, ok := p.resolver.Resolve(name)
			if !ok {
				p.note(d, "skipped unknown agent %q", name)
				continue
			}
			scores[id] += pat.weight
			if !seen[id] {
				seen[id] = true
				d.AssignedAgents = append(d.AssignedAgents, id)
				p.note(d, "assignment signal for agent %q (+%.2f)", id, pat.weight)
			}
		}
	}

	return scores
}

// resolveConflict applies the consensus-conflict rule: when both signals
// clear the floor, the higher one wins only with a clear margin; otherwise
// neither is honored. Guessing between two near-equal contradictory signals
// would silently override user intent half the time.
func (p *DirectiveParser) resolveConflict(d *UserDirective) {
	force := d.ForceConfidence >= directiveMinConfidence
	prevent := d.PreventConfidence >= directiveMinConfidence

	if force && prevent {
		switch {
		case d.ForceConfidence > d.PreventConfidence+conflictEpsilon:
			prevent = false
			p.note(d, "conflict: force wins (%.2f vs %.2f)", d.ForceConfidence, d.PreventConfidence)
		case d.PreventConfidence > d.ForceConfidence+conflictEpsilon:
			force = false
			p.note(d, "conflict: prevent wins (%.2f vs %.2f)", d.PreventConfidence, d.ForceConfidence)
		default:
			force, prevent = false, false
			p.note(d, "conflict: signals too close (%.2f vs %.2f), honoring neither",
				d.ForceConfidence, d.PreventConfidence)
		}
	}

	d.ForceConsensus = force
	d.PreventConsensus = prevent
}

// note appends a parsing note, dropping entries past the bound.
func (p *DirectiveParser) note(d *UserDirective, format string, args ...interface{}) {
	if len(d.ParsingNotes) >= maxParsingNotes {
		return
	}
	d.ParsingNotes = append(d.ParsingNotes, fmt.Sprintf(format, args...))
}

// saturate maps an unbounded non-negative score to a confidence in [0,1]
// with diminishing returns.
func saturate(score float64) float64 {
	if score <= 0 {
		return 0
	}
	return clamp01(1 - math.Exp(-score))
}
