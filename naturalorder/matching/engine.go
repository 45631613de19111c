package matching

// Offer is the matching view of one collection item.
type Offer struct {
	ItemID     int64
	OracleID   string
	PrintingID string
	Name       string
	Condition  Condition
	Foil       bool
	Paused     bool

	Mode         PriceMode
	PricePercent float64
	PriceFixed   *float64
	BasePrice    *float64
	FoilPrice    *float64
}

// MarketPrice returns the catalog price for the offer's finish, nil when the
// catalog has none.
func (o Offer) MarketPrice() *float64 {
	if o.Foil {
		return o.FoilPrice
	}
	return o.BasePrice
}

// Want is the matching view of one wishlist item.
type Want struct {
	ItemID       int64
	OracleID     string
	MinCondition Condition
	FoilPref     FoilPreference
	EditionPref  EditionPreference
	Printings    map[string]struct{}
}

// Side is one user's complete matching input.
type Side struct {
	UserID    string
	Latitude  *float64
	Longitude *float64
	Offers    []Offer
	Wants     []Want
}

// CardPick is one matched card: an offer that satisfies a want.
type CardPick struct {
	OfferItemID int64
	WantItemID  int64
	OracleID    string
	PrintingID  string
	Name        string
	OwnerID     string
	WantedBy    string
	Foil        bool

	AskingPrice  *float64
	MarketPrice  *float64
	PriceWarning bool
}

// Candidate is a scored trade draft between two users.
type Candidate struct {
	Type       MatchType
	Cards      []CardPick
	DistanceKm *float64
	Score      float64
}

// Qualifies reports whether an offered card satisfies a wishlist entry.
// All three preference predicates must hold, and paused items never match.
func Qualifies(o Offer, w Want) bool {
	if o.Paused || o.OracleID != w.OracleID {
		return false
	}
	return ConditionMeetsMinimum(o.Condition, w.MinCondition) &&
		FoilMatches(o.Foil, w.FoilPref) &&
		EditionMatches(o.PrintingID, w.EditionPref, w.Printings)
}

// Build assembles a candidate trade between two users, or reports that no
// viable trade exists. Side a maps to user_a of the persisted match; the
// one-way types are classified from a's perspective.
func Build(a, b Side) (*Candidate, bool) {
	aPicks := pickCards(a, b)
	bPicks := pickCards(b, a)

	if len(aPicks) == 0 && len(bPicks) == 0 {
		return nil, false
	}

	var matchType MatchType
	switch {
	case len(aPicks) > 0 && len(bPicks) > 0:
		matchType = TwoWay
	case len(aPicks) > 0:
		matchType = OneWayBuy
	default:
		matchType = OneWaySell
	}

	var distance *float64
	if a.Latitude != nil && a.Longitude != nil && b.Latitude != nil && b.Longitude != nil {
		d := Distance(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
		distance = &d
	}

	c := &Candidate{
		Type:       matchType,
		Cards:      append(append([]CardPick{}, aPicks...), bPicks...),
		DistanceKm: distance,
	}
	c.Score = Score(Signals(matchType, aPicks, bPicks, distance))
	return c, true
}

// Signals derives scorer inputs from the picked cards of both sides.
// Value accrues to the side that wants the card. Price efficiency compares
// asking prices against the full market price of each priced card; cards
// without market data contribute a warning instead.
func Signals(typ MatchType, aPicks, bPicks []CardPick, distance *float64) ScoreInput {
	in := ScoreInput{
		Type:        typ,
		CardsAWants: len(aPicks),
		CardsBWants: len(bPicks),
		DistanceKm:  distance,
	}

	var asking, maxAllowed float64
	tally := func(picks []CardPick, value *float64) {
		for _, p := range picks {
			if p.PriceWarning {
				in.HasPriceWarnings = true
			}
			if p.AskingPrice == nil {
				continue
			}
			*value += *p.AskingPrice
			if p.MarketPrice != nil {
				asking += *p.AskingPrice
				maxAllowed += *p.MarketPrice
			}
		}
	}
	tally(aPicks, &in.ValueAWants)
	tally(bPicks, &in.ValueBWants)

	in.PriceEfficiency = 1
	if maxAllowed > 0 {
		ratio := asking / maxAllowed
		if ratio > 1 {
			ratio = 1
		}
		in.PriceEfficiency = ratio
	}
	return in
}

// pickCards selects, for each of wanter's wishlist entries, the best
// qualifying copy from owner's collection: the cheapest priced one, with
// priced copies preferred over unpriced.
func pickCards(wanter, owner Side) []CardPick {
	var picks []CardPick
	for _, w := range wanter.Wants {
		var best *Offer
		var bestPrice *float64
		for i := range owner.Offers {
			o := owner.Offers[i]
			if !Qualifies(o, w) {
				continue
			}
			price := AskingPrice(o.Mode, o.PricePercent, o.PriceFixed, o.BasePrice, o.FoilPrice, o.Foil)
			if best == nil || betterPrice(price, bestPrice) {
				best = &owner.Offers[i]
				bestPrice = price
			}
		}
		if best == nil {
			continue
		}
		picks = append(picks, CardPick{
			OfferItemID:  best.ItemID,
			WantItemID:   w.ItemID,
			OracleID:     best.OracleID,
			PrintingID:   best.PrintingID,
			Name:         best.Name,
			OwnerID:      owner.UserID,
			WantedBy:     wanter.UserID,
			Foil:         best.Foil,
			AskingPrice:  bestPrice,
			MarketPrice:  best.MarketPrice(),
			PriceWarning: bestPrice == nil || best.MarketPrice() == nil,
		})
	}
	return picks
}

func betterPrice(candidate, current *float64) bool {
	if candidate == nil {
		return false
	}
	if current == nil {
		return true
	}
	return *candidate < *current
}
