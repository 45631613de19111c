package matching

// PriceMode selects how a collection item is priced: as a percentage of the
// live market price, or pinned to a fixed amount.
type PriceMode string

const (
	PricePercentage PriceMode = "percentage"
	PriceFixed      PriceMode = "fixed"
)

// AskingPrice derives the price a collection item is offered at. A fixed
// price wins regardless of market data. Without market data for the relevant
// finish the item cannot be priced and nil is returned; callers surface that
// as a price warning rather than an error.
func AskingPrice(mode PriceMode, pct float64, fixed *float64, basePrice, foilPrice *float64, isFoil bool) *float64 {
	if mode == PriceFixed && fixed != nil {
		v := *fixed
		return &v
	}

	market := basePrice
	if isFoil {
		market = foilPrice
	}
	if market == nil {
		return nil
	}

	v := round2(*market * pct / 100)
	return &v
}
