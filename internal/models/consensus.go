package models

// ExpertOpinion is one persona's probability estimate with its reasoning.
type ExpertOpinion struct {
	ExpertID    string  `json:"expert_id"`
	Persona     string  `json:"persona"`
	Probability float64 `json:"probability"`
	Reasoning   string  `json:"reasoning"`
}

// BetaConsensus summarizes a set of expert probabilities as a Beta
// distribution fitted by method of moments, plus a betting recommendation.
type BetaConsensus struct {
	Mean           float64  `json:"mean"`
	Variance       float64  `json:"variance"`
	Alpha          float64  `json:"alpha"`
	Beta           float64  `json:"beta"`
	Edge           *float64 `json:"edge,omitempty"`
	Recommendation string   `json:"recommendation"`
	CredibleLow    float64  `json:"credible_low"`
	CredibleHigh   float64  `json:"credible_high"`
	ExpertCount    int      `json:"expert_count"`
}
