package narrative

import "math"

// Pricing model: a flat base plus per-thousand-character rates.
const (
	baseCost          = 0.005
	promptRatePer1K   = 0.001
	responseRatePer1K = 0.002
)

// CalculateCost estimates the price of a generation from the prompt and
// response lengths, rounded to four decimal places.
func CalculateCost(prompt, response string) float64 {
	cost := baseCost +
		float64(len(prompt))/1000*promptRatePer1K +
		float64(len(response))/1000*responseRatePer1K
	return math.Round(cost*10000) / 10000
}

// ProbeCost is the cost of an empty exchange, the least any turn can cost.
func ProbeCost() float64 {
	return CalculateCost("", "")
}
