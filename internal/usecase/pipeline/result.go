package pipeline

import "github.com/podscout/podscout/pkg/config"

// Failure records one item that a stage could not process. The item
// stays eligible and is naturally retried on the next run.
type Failure struct {
	VideoID string
	Reason  string
}

// Usage accumulates token counts and derived cost across a stage.
type Usage struct {
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// Add accumulates one call's token usage and reprices the total.
func (u *Usage) Add(inputTokens, outputTokens int, pricing config.PricingConfig) {
	u.InputTokens += inputTokens
	u.OutputTokens += outputTokens
	u.Cost = CostOf(u.InputTokens, u.OutputTokens, pricing)
}

// CostOf converts token counts into a monetary cost using per-million
// token prices.
func CostOf(inputTokens, outputTokens int, pricing config.PricingConfig) float64 {
	return float64(inputTokens)*pricing.InputPerMTok/1e6 +
		float64(outputTokens)*pricing.OutputPerMTok/1e6
}

// StageResult is the tally of one pipeline stage run.
type StageResult struct {
	Succeeded []string
	Failed    []Failure
	Usage     Usage
}
