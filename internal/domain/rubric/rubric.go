// Package rubric computes weighted aggregate scores for submissions
// and validates judge score sets against an event's rubric.
package rubric

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultMaxScore = 10
	displayDecimals = 100 // two decimal places
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMaxScore sets the upper bound for a single criterion score.
func WithMaxScore(maxScore float64) Option {
	return func(e *Engine) {
		if maxScore > 0 {
			e.maxScore = maxScore
		}
	}
}

// Engine validates score items and computes weighted aggregates.
// Scores are accepted in the closed interval [0, maxScore]; fractional
// values are allowed.
type Engine struct {
	maxScore float64
}

// NewEngine creates a new scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxScore: defaultMaxScore,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// MaxScore returns the configured per-criterion score bound.
func (e *Engine) MaxScore() float64 {
	return e.maxScore
}

// Validate checks a judge's submitted items against the rubric.
// Checks run in order: non-empty set, known criterion keys, score bounds.
// Unknown keys are named in the returned error.
func (e *Engine) Validate(items []model.ScoreItem, criteria []model.Criterion) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}

	known := make(map[string]struct{}, len(criteria))
	for _, c := range criteria {
		known[c.Key] = struct{}{}
	}

	var unknown []string
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := known[it.CriterionKey]; !ok {
			unknown = append(unknown, it.CriterionKey)
			continue
		}
		if _, dup := seen[it.CriterionKey]; dup {
			unknown = append(unknown, it.CriterionKey+" (duplicate)")
			continue
		}
		seen[it.CriterionKey] = struct{}{}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", ErrInvalidCriteria, strings.Join(unknown, ", "))
	}

	for _, it := range items {
		if math.IsNaN(it.Value) || it.Value < 0 || it.Value > e.maxScore {
			return fmt.Errorf("%w: %s=%v not in [0, %v]", ErrInvalidScore, it.CriterionKey, it.Value, e.maxScore)
		}
	}

	return nil
}

// Aggregate computes the weighted mean of the submitted items:
// sum(value_i * weight_i) / sum(weight_i) over criteria present in items.
// Zero-weight criteria contribute nothing to numerator or denominator;
// if the total weight is zero the aggregate is defined as 0.
func (e *Engine) Aggregate(items []model.ScoreItem, criteria []model.Criterion) float64 {
	weights := make(map[string]int, len(criteria))
	for _, c := range criteria {
		weights[c.Key] = c.Weight
	}

	var num float64
	var den int
	for _, it := range items {
		w := weights[it.CriterionKey]
		if w <= 0 {
			continue
		}
		num += it.Value * float64(w)
		den += w
	}
	if den == 0 {
		return 0
	}
	return num / float64(den)
}

// AggregateScores computes the weighted mean over stored score rows,
// using the same exclusion rules as Aggregate.
func (e *Engine) AggregateScores(scores []model.Score, criteria []model.Criterion) float64 {
	items := make([]model.ScoreItem, len(scores))
	for i, s := range scores {
		items[i] = model.ScoreItem{CriterionKey: s.CriterionKey, Value: s.Value}
	}
	return e.Aggregate(items, criteria)
}

// Round2 rounds a score to two decimal places for display.
func Round2(x float64) float64 {
	return math.Round(x*displayDecimals) / displayDecimals
}
