package matching

import "math"

// MatchType classifies the direction of interest between the two sides.
type MatchType string

const (
	TwoWay     MatchType = "two_way"
	OneWayBuy  MatchType = "one_way_buy"
	OneWaySell MatchType = "one_way_sell"
)

// ScoreInput aggregates the signals a candidate trade is ranked on.
type ScoreInput struct {
	Type         MatchType
	CardsAWants  int
	CardsBWants  int
	ValueAWants  float64
	ValueBWants  float64
	// DistanceKm is nil when either side lacks coordinates.
	DistanceKm *float64
	// PriceEfficiency in [0,1]: how close asking prices sit to their
	// maximum allowed price. 1 means at max; cheaper is better.
	PriceEfficiency  float64
	HasPriceWarnings bool
}

// Scoring weights. Contributions are capped per signal so no single factor
// dominates: two-way trades lead the ranking, proximity and pricing
// fairness break ties.
const (
	scoreTwoWay     = 30.0
	scoreOneWayBuy  = 15.0
	scoreOneWaySell = 10.0

	cardCountWeight = 2.5
	cardCountCap    = 25.0

	valueDivisor = 10.0
	valueCap     = 20.0

	distanceMax     = 15.0
	distancePerKm   = 3.33
	efficiencyScale = 10.0

	priceWarningPenalty = 5.0
)

// Score ranks a candidate trade. The result is rounded to two decimals and
// deliberately not clamped: the warning penalty may push a near-zero base
// slightly negative.
func Score(in ScoreInput) float64 {
	var score float64

	switch in.Type {
	case TwoWay:
		score += scoreTwoWay
	case OneWayBuy:
		score += scoreOneWayBuy
	case OneWaySell:
		score += scoreOneWaySell
	}

	totalCards := float64(in.CardsAWants + in.CardsBWants)
	score += math.Min(totalCards*cardCountWeight, cardCountCap)

	totalValue := in.ValueAWants + in.ValueBWants
	score += math.Min(totalValue/valueDivisor, valueCap)

	if in.DistanceKm != nil {
		score += math.Max(0, distanceMax-*in.DistanceKm/distancePerKm)
	}

	score += (1 - in.PriceEfficiency) * efficiencyScale

	if in.HasPriceWarnings {
		score -= priceWarningPenalty
	}

	return round2(score)
}
