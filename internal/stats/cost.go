package stats

import (
	"math"
	"strings"
)

// Usage holds token counts, either read from events or estimated.
type Usage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	CacheReadTokens     int `json:"cache_read_tokens"`
	CacheCreationTokens int `json:"cache_creation_tokens"`
}

// Add accumulates another usage record.
func (u *Usage) Add(o Usage) {
	u.InputTokens += o.InputTokens
	u.OutputTokens += o.OutputTokens
	u.CacheReadTokens += o.CacheReadTokens
	u.CacheCreationTokens += o.CacheCreationTokens
}

// CostEstimate is the priced-out usage for a session.
type CostEstimate struct {
	Model       string  `json:"model"`
	Usage       Usage   `json:"usage"`
	USD         float64 `json:"usd"`
	IsEstimated bool    `json:"is_estimated"`
}

// modelPrice is USD per million tokens.
type modelPrice struct {
	input     float64
	output    float64
	cacheRead float64
}

// Pricing is matched by prefix, not exact name, so dated model suffixes
// don't need table updates.
var pricing = []struct {
	prefix string
	price  modelPrice
}{
	{"claude-opus-4", modelPrice{15.0, 75.0, 1.5}},
	{"claude-sonnet-4", modelPrice{3.0, 15.0, 0.3}},
	{"claude-haiku-4", modelPrice{1.0, 5.0, 0.1}},
	{"claude-3-7-sonnet", modelPrice{3.0, 15.0, 0.3}},
	{"claude-3-5-sonnet", modelPrice{3.0, 15.0, 0.3}},
	{"claude-3-5-haiku", modelPrice{0.8, 4.0, 0.08}},
	{"claude-3-opus", modelPrice{15.0, 75.0, 1.5}},
}

// Fallback constants when no real usage data exists on any event.
const (
	estInputPerToolCall  = 400
	estOutputPerToolCall = 150
	estInputPerEvent     = 50
)

// estimateCost prices real usage when any event carried it, otherwise
// synthesizes usage from call and event counts and tags the result
// estimated. Unknown models yield no estimate at all.
func estimateCost(model string, real Usage, sawUsage bool, toolCalls, eventCount int) *CostEstimate {
	price, ok := lookupPrice(model)
	if !ok {
		return nil
	}

	u := real
	estimated := !sawUsage
	if estimated {
		u = Usage{
			InputTokens:  toolCalls*estInputPerToolCall + eventCount*estInputPerEvent,
			OutputTokens: toolCalls * estOutputPerToolCall,
		}
	}

	usd := float64(u.InputTokens)/1e6*price.input +
		float64(u.OutputTokens)/1e6*price.output +
		float64(u.CacheReadTokens)/1e6*price.cacheRead +
		float64(u.CacheCreationTokens)/1e6*price.input

	return &CostEstimate{
		Model:       model,
		Usage:       u,
		USD:         RoundUSD(usd),
		IsEstimated: estimated,
	}
}

func lookupPrice(model string) (modelPrice, bool) {
	for _, p := range pricing {
		if strings.HasPrefix(model, p.prefix) {
			return p.price, true
		}
	}
	return modelPrice{}, false
}

// RoundUSD rounds a dollar amount to 4 decimal places. Aggregators round
// once after summation, not per term.
func RoundUSD(usd float64) float64 {
	return math.Round(usd*10000) / 10000
}
