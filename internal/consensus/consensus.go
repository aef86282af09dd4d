// Package consensus collapses per-expert probability estimates into a Beta
// distribution fitted by method of moments, plus a betting recommendation.
// The package is pure: no I/O, deterministic for a given input.
package consensus

import (
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/parlaylab/sports-mcp/internal/models"
)

const (
	// singleExpertVariance is the fixed prior applied when only one
	// opinion is available and a sample variance cannot be formed.
	singleExpertVariance = 0.01

	minVariance = 1e-6

	// varianceCeilingRatio keeps variance strictly below mean*(1-mean) so
	// both Beta parameters stay positive.
	varianceCeilingRatio = 0.999

	leanThreshold = 0.03
	betThreshold  = 0.06
)

// FromOpinions fits a BetaConsensus over one or more expert opinions.
// marketProb, when present, is the market-implied probability the edge and
// recommendation are computed against.
func FromOpinions(opinions []models.ExpertOpinion, marketProb *float64) (*models.BetaConsensus, error) {
	if len(opinions) == 0 {
		return nil, &models.ConsensusError{Reason: "no expert opinions to aggregate"}
	}

	probs := make([]float64, len(opinions))
	for i, op := range opinions {
		probs[i] = op.Probability
	}

	mean := stat.Mean(probs, nil)
	variance := singleExpertVariance
	if len(probs) >= 2 {
		variance = stat.Variance(probs, nil)
	}

	ceiling := mean * (1 - mean) * varianceCeilingRatio
	if variance < minVariance {
		variance = minVariance
	}
	if variance > ceiling {
		variance = ceiling
	}

	factor := mean*(1-mean)/variance - 1
	alpha := mean * factor
	beta := (1 - mean) * factor

	dist := distuv.Beta{Alpha: alpha, Beta: beta}

	c := &models.BetaConsensus{
		Mean:         mean,
		Variance:     variance,
		Alpha:        alpha,
		Beta:         beta,
		CredibleLow:  dist.Quantile(0.10),
		CredibleHigh: dist.Quantile(0.90),
		ExpertCount:  len(opinions),
	}

	if marketProb == nil {
		c.Recommendation = "INFO ONLY"
		return c, nil
	}

	edge := mean - *marketProb
	c.Edge = &edge
	c.Recommendation = recommend(edge)
	return c, nil
}

func recommend(edge float64) string {
	abs := edge
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < leanThreshold:
		return "PASS"
	case abs < betThreshold:
		if edge > 0 {
			return "LEAN HOME"
		}
		return "LEAN AWAY"
	default:
		if edge > 0 {
			return "BET HOME"
		}
		return "BET AWAY"
	}
}
