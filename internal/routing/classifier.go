// Package routing turns task descriptions and user directives into routing
// strategies with calibrated confidence scores.
package routing

import (
	"math"
	"sort"
	"strings"
)

// ClassificationResult holds the heuristic signals derived from a task
// description. It is computed fresh per call and never cached.
type ClassificationResult struct {
	// Complexity is the estimated task complexity (1-10).
	Complexity int
	// Risk is the estimated task risk (1-10).
	Risk int
	// CriticalKeywords lists the distinct critical-domain keywords found,
	// sorted for deterministic output.
	CriticalKeywords []string
	// Confidence is how reliable the classification is (0.0-1.0).
	Confidence float64
}

// HasCriticalKeywords returns true if any critical-domain keyword matched.
func (r ClassificationResult) HasCriticalKeywords() bool {
	return len(r.CriticalKeywords) > 0
}

// complexityKeywords maps complexity-indicating keywords to their weights.
// Matching is by lowercase substring containment, same as tier selection.
var complexityKeywords = map[string]int{
	"refactor":     2,
	"redesign":     2,
	"architecture": 2,
	"migrate":      2,
	"distributed":  2,
	"rewrite":      2,
	"concurren":    1,
	"integrate":    1,
	"optimize":     1,
	"protocol":     1,
	"scalab":       1,
}

// criticalKeywords is the fixed lowercase set of critical-domain keywords.
// A description touching any of these domains raises risk regardless of the
// rest of the text.
var criticalKeywords = []string{
	"security",
	"auth",
	"payment",
	"pii",
	"rce",
	"credential",
	"secret",
	"encryption",
	"vulnerability",
	"injection",
	"exploit",
	"compliance",
	"gdpr",
	"production",
	"migration",
	"database",
}

// riskKeywords maps risk-indicating keywords to their weights.
var riskKeywords = map[string]int{
	"delete":       2,
	"drop":         2,
	"destroy":      2,
	"truncate":     2,
	"wipe":         2,
	"irreversible": 2,
	"outage":       2,
	"remove":       1,
	"urgent":       1,
	"rollback":     1,
	"force":        1,
}

// Classify scores a task description into complexity, risk, and critical-domain
// signals. It is pure and deterministic: no I/O, no side effects, safe to call
// concurrently without locking. Blank input yields a fixed low-confidence
// neutral result rather than an error.
func Classify(text string) ClassificationResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ClassificationResult{Complexity: 1, Risk: 1, Confidence: 0.25}
	}

	lower := strings.ToLower(trimmed)
	wordCount := len(strings.Fields(trimmed))

	complexity := 1 + lengthBucket(wordCount)
	for kw, weight := range complexityKeywords {
		if strings.Contains(lower, kw) {
			complexity += weight
		}
	}
	complexity = clampScore(complexity)

	var critical []string
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			critical = append(critical, kw)
		}
	}
	sort.Strings(critical)

	risk := 1 + criticalDomainBonus(len(critical)) + lengthRiskBonus(wordCount)
	for kw, weight := range riskKeywords {
		if strings.Contains(lower, kw) {
			risk += weight
		}
	}
	risk = clampScore(risk)

	confidence := 0.45*sigmoid((float64(complexity)-5.5)/2.0) +
		0.45*sigmoid((float64(risk)-5.5)/2.0) +
		0.10*sigmoid(float64(wordCount)/20.0)

	return ClassificationResult{
		Complexity:       complexity,
		Risk:             risk,
		CriticalKeywords: critical,
		Confidence:       clamp01(confidence),
	}
}

// lengthBucket maps a word count to a complexity contribution from 1 (very
// short) to 8 (very long). Bucket steps widen as descriptions grow, so added
// length contributes less and less.
func lengthBucket(words int) int {
	switch {
	case words <= 5:
		return 1
	case words <= 15:
		return 2
	case words <= 30:
		return 3
	case words <= 50:
		return 4
	case words <= 80:
		return 5
	case words <= 115:
		return 6
	case words <= 170:
		return 7
	default:
		return 8
	}
}

// criticalDomainBonus maps the distinct critical-keyword count to a risk
// contribution of 0-4.
func criticalDomainBonus(distinct int) int {
	switch {
	case distinct <= 0:
		return 0
	case distinct == 1:
		return 2
	case distinct == 2:
		return 3
	default:
		return 4
	}
}

// lengthRiskBonus adds 0-3 risk for long descriptions, which tend to describe
// multi-step work with more failure surface.
func lengthRiskBonus(words int) int {
	switch {
	case words <= 10:
		return 0
	case words <= 40:
		return 1
	case words <= 100:
		return 2
	default:
		return 3
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func clampScore(n int) int {
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
