// Package integrity detects suspicious event reviews: statistically
// anomalous ratings and reviews from actors who are no longer verified.
//
// Outlier detection uses the median absolute deviation (MAD) rather than
// the standard deviation, so a single extreme rating cannot mask itself
// by inflating the spread estimate.
package integrity

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/okian/podium/internal/domain/model"
)

// Default analysis configuration constants.
const (
	defaultMinReviews = 3
	defaultZThreshold = 3.0

	// madConsistency makes MAD comparable to a normal-distribution
	// standard deviation.
	madConsistency = 1.4826
)

// Verifier answers whether a user is currently a verified actor for an event.
type Verifier interface {
	Verify(ctx context.Context, eventID, userID string) (model.Verification, error)
}

// Outlier is a review whose rating deviates anomalously from the event median.
type Outlier struct {
	Review model.Review
	Z      float64 // signed robust z-score
	Median float64 // event rating median at analysis time
	MAD    float64 // median absolute deviation at analysis time
}

// InvalidUser is a review whose author failed verification at analysis time.
type InvalidUser struct {
	Review model.Review
	Role   model.Role // role currently reported by the verifier
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithMinReviews sets the minimum review count for outlier analysis.
func WithMinReviews(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minReviews = n
		}
	}
}

// WithZThreshold sets the robust z-score at or above which a rating is flagged.
func WithZThreshold(z float64) Option {
	return func(a *Analyzer) {
		if z > 0 {
			a.zThreshold = z
		}
	}
}

// Analyzer runs the review integrity checks for one event's review set.
type Analyzer struct {
	minReviews int
	zThreshold float64
}

// NewAnalyzer creates a new analyzer with configuration options.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		minReviews: defaultMinReviews,
		zThreshold: defaultZThreshold,
	}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// DetectOutliers computes robust z-scores over the full review set and
// returns the reviews whose |z| meets the threshold.
//
// Below minReviews the check is skipped entirely: outlier detection is
// statistically meaningless on tiny samples. When MAD is zero (all or
// nearly all ratings identical) every z is defined as 0 and nothing is
// flagged.
func (a *Analyzer) DetectOutliers(reviews []model.Review) []Outlier {
	if len(reviews) < a.minReviews {
		return nil
	}

	ratings := make([]float64, len(reviews))
	for i, r := range reviews {
		ratings[i] = float64(r.Rating)
	}
	med := median(ratings)

	deviations := make([]float64, len(ratings))
	for i, v := range ratings {
		deviations[i] = math.Abs(v - med)
	}
	mad := median(deviations)
	if mad == 0 {
		return nil
	}

	scale := madConsistency * mad
	var out []Outlier
	for _, r := range reviews {
		z := (float64(r.Rating) - med) / scale
		if math.Abs(z) >= a.zThreshold {
			out = append(out, Outlier{Review: r, Z: z, Median: med, MAD: mad})
		}
	}
	return out
}

// DetectInvalidUsers re-checks every review's author against the verifier
// at analysis time. A user who lost eligibility after reviewing becomes
// flaggable here. Verifier failures abort the check; the caller decides
// whether other checks still run.
func (a *Analyzer) DetectInvalidUsers(ctx context.Context, eventID string, reviews []model.Review, verifier Verifier) ([]InvalidUser, error) {
	var out []InvalidUser
	for _, r := range reviews {
		v, err := verifier.Verify(ctx, eventID, r.UserID)
		if err != nil {
			return nil, fmt.Errorf("verify user %s: %w", r.UserID, err)
		}
		if !v.Verified {
			out = append(out, InvalidUser{Review: r, Role: v.Role})
		}
	}
	return out, nil
}

// MinReviews returns the configured minimum review count.
func (a *Analyzer) MinReviews() int {
	return a.minReviews
}

// median returns the middle value of xs (mean of the two middle values
// for even-sized input). The input slice is not modified.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
