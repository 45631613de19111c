package matching

import "testing"

func offer(id int64, oracle, printing string, cond Condition, foil bool, base *float64) Offer {
	return Offer{
		ItemID:       id,
		OracleID:     oracle,
		PrintingID:   printing,
		Name:         oracle,
		Condition:    cond,
		Foil:         foil,
		Mode:         PricePercentage,
		PricePercent: 100,
		BasePrice:    base,
	}
}

func want(id int64, oracle string) Want {
	return Want{
		ItemID:       id,
		OracleID:     oracle,
		MinCondition: ConditionDMG,
		FoilPref:     FoilAny,
		EditionPref:  EditionAny,
	}
}

func Test_Build_classifiesMatchType(t *testing.T) {
	alice := Side{
		UserID: "alice",
		Offers: []Offer{offer(1, "lightning-bolt", "lea-161", ConditionNM, false, fptr(120))},
		Wants:  []Want{want(10, "counterspell")},
	}
	bob := Side{
		UserID: "bob",
		Offers: []Offer{offer(2, "counterspell", "lea-54", ConditionLP, false, fptr(60))},
		Wants:  []Want{want(11, "lightning-bolt")},
	}

	c, ok := Build(alice, bob)
	if !ok {
		t.Fatal("Build() found no match, want two-way")
	}
	if c.Type != TwoWay {
		t.Errorf("Build() type = %s, want %s", c.Type, TwoWay)
	}
	if len(c.Cards) != 2 {
		t.Fatalf("Build() cards = %d, want 2", len(c.Cards))
	}

	// Remove bob's want: only alice still wants something.
	bob.Wants = nil
	c, ok = Build(alice, bob)
	if !ok || c.Type != OneWayBuy {
		t.Errorf("Build() type = %v (ok=%v), want %s", c, ok, OneWayBuy)
	}

	// Flip sides: same pair classified from bob's perspective.
	c, ok = Build(bob, alice)
	if !ok || c.Type != OneWaySell {
		t.Errorf("Build() type = %v (ok=%v), want %s", c, ok, OneWaySell)
	}
}

func Test_Build_noViableTrade(t *testing.T) {
	alice := Side{
		UserID: "alice",
		Offers: []Offer{offer(1, "lightning-bolt", "lea-161", ConditionNM, false, fptr(120))},
		Wants:  []Want{want(10, "black-lotus")},
	}
	bob := Side{
		UserID: "bob",
		Offers: []Offer{offer(2, "counterspell", "lea-54", ConditionLP, false, fptr(60))},
		Wants:  []Want{want(11, "mox-pearl")},
	}

	if _, ok := Build(alice, bob); ok {
		t.Error("Build() found a match, want none")
	}
}

func Test_Build_respectsPredicates(t *testing.T) {
	bolt := want(10, "lightning-bolt")
	bolt.MinCondition = ConditionLP
	alice := Side{UserID: "alice", Wants: []Want{bolt}}
	bob := Side{
		UserID: "bob",
		Offers: []Offer{offer(1, "lightning-bolt", "m10-146", ConditionHP, false, fptr(3))},
	}

	if _, ok := Build(alice, bob); ok {
		t.Error("Build() matched an HP copy against an LP minimum")
	}

	bob.Offers[0].Condition = ConditionLP
	if _, ok := Build(alice, bob); !ok {
		t.Error("Build() rejected an LP copy meeting an LP minimum")
	}

	bob.Offers[0].Paused = true
	if _, ok := Build(alice, bob); ok {
		t.Error("Build() matched a paused collection item")
	}
}

func Test_Build_prefersCheapestQualifyingCopy(t *testing.T) {
	alice := Side{UserID: "alice", Wants: []Want{want(10, "counterspell")}}
	bob := Side{
		UserID: "bob",
		Offers: []Offer{
			offer(1, "counterspell", "lea-54", ConditionNM, false, fptr(200)),
			offer(2, "counterspell", "3ed-54", ConditionLP, false, fptr(40)),
			offer(3, "counterspell", "4ed-64", ConditionMP, false, nil),
		},
	}

	c, ok := Build(alice, bob)
	if !ok {
		t.Fatal("Build() found no match")
	}
	if len(c.Cards) != 1 {
		t.Fatalf("Build() cards = %d, want 1 (one per wishlist entry)", len(c.Cards))
	}
	if c.Cards[0].OfferItemID != 2 {
		t.Errorf("Build() picked item %d, want 2 (cheapest priced copy)", c.Cards[0].OfferItemID)
	}
	if c.Cards[0].PriceWarning {
		t.Error("Build() flagged a priced copy with a price warning")
	}
}

func Test_Build_unpricedCardCarriesWarning(t *testing.T) {
	alice := Side{UserID: "alice", Wants: []Want{want(10, "counterspell")}}
	bob := Side{
		UserID: "bob",
		Offers: []Offer{offer(1, "counterspell", "lea-54", ConditionNM, false, nil)},
	}

	c, ok := Build(alice, bob)
	if !ok {
		t.Fatal("Build() found no match")
	}
	if c.Cards[0].AskingPrice != nil {
		t.Errorf("Build() asking price = %v, want nil without market data", *c.Cards[0].AskingPrice)
	}
	if !c.Cards[0].PriceWarning {
		t.Error("Build() did not flag an unpriced card")
	}

	in := Signals(c.Type, c.Cards, nil, nil)
	if !in.HasPriceWarnings {
		t.Error("Signals() did not propagate the price warning")
	}
}

func Test_Build_distance(t *testing.T) {
	alice := Side{
		UserID:    "alice",
		Latitude:  fptr(52.52),
		Longitude: fptr(13.405),
		Wants:     []Want{want(10, "counterspell")},
	}
	bob := Side{
		UserID: "bob",
		Offers: []Offer{offer(1, "counterspell", "lea-54", ConditionNM, false, fptr(10))},
	}

	c, _ := Build(alice, bob)
	if c.DistanceKm != nil {
		t.Errorf("Build() distance = %v, want unknown when a side lacks coordinates", *c.DistanceKm)
	}

	bob.Latitude = fptr(52.52)
	bob.Longitude = fptr(13.405)
	c, _ = Build(alice, bob)
	if c.DistanceKm == nil || *c.DistanceKm != 0 {
		t.Errorf("Build() distance = %v, want 0 for co-located users", c.DistanceKm)
	}
}
