package matching

import "testing"

var allConditions = []Condition{ConditionNM, ConditionLP, ConditionMP, ConditionHP, ConditionDMG}

func Test_ConditionMeetsMinimum(t *testing.T) {
	tests := []struct {
		name     string
		offered  Condition
		required Condition
		want     bool
	}{
		{name: "NM meets NM", offered: ConditionNM, required: ConditionNM, want: true},
		{name: "NM meets DMG", offered: ConditionNM, required: ConditionDMG, want: true},
		{name: "LP meets MP", offered: ConditionLP, required: ConditionMP, want: true},
		{name: "MP fails LP", offered: ConditionMP, required: ConditionLP, want: false},
		{name: "DMG fails NM", offered: ConditionDMG, required: ConditionNM, want: false},
		{name: "HP meets HP", offered: ConditionHP, required: ConditionHP, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConditionMeetsMinimum(tt.offered, tt.required); got != tt.want {
				t.Errorf("ConditionMeetsMinimum(%s, %s) = %v, want %v", tt.offered, tt.required, got, tt.want)
			}
		})
	}

	// NM satisfies every minimum; nothing below NM satisfies an NM minimum.
	for _, required := range allConditions {
		if !ConditionMeetsMinimum(ConditionNM, required) {
			t.Errorf("ConditionMeetsMinimum(NM, %s) = false, want true", required)
		}
	}
	for _, offered := range allConditions[1:] {
		if ConditionMeetsMinimum(offered, ConditionNM) {
			t.Errorf("ConditionMeetsMinimum(%s, NM) = true, want false", offered)
		}
	}
}

func Test_ConditionOrdering(t *testing.T) {
	for i, c := range allConditions {
		if c.Rank() != i {
			t.Errorf("%s.Rank() = %d, want %d", c, c.Rank(), i)
		}
	}
}

func Test_FoilMatches(t *testing.T) {
	tests := []struct {
		name  string
		foil  bool
		pref  FoilPreference
		want  bool
	}{
		{name: "any accepts foil", foil: true, pref: FoilAny, want: true},
		{name: "any accepts non-foil", foil: false, pref: FoilAny, want: true},
		{name: "foil_only accepts foil", foil: true, pref: FoilOnly, want: true},
		{name: "foil_only rejects non-foil", foil: false, pref: FoilOnly, want: false},
		{name: "non_foil rejects foil", foil: true, pref: NonFoil, want: false},
		{name: "non_foil accepts non-foil", foil: false, pref: NonFoil, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FoilMatches(tt.foil, tt.pref); got != tt.want {
				t.Errorf("FoilMatches(%v, %s) = %v, want %v", tt.foil, tt.pref, got, tt.want)
			}
		})
	}
}

func Test_EditionMatches(t *testing.T) {
	printings := map[string]struct{}{"lea-233": {}, "2ed-233": {}}

	tests := []struct {
		name       string
		printingID string
		pref       EditionPreference
		want       bool
	}{
		{name: "any matches listed printing", printingID: "lea-233", pref: EditionAny, want: true},
		{name: "any matches unlisted printing", printingID: "m10-146", pref: EditionAny, want: true},
		{name: "specific matches listed printing", printingID: "2ed-233", pref: EditionSpecific, want: true},
		{name: "specific rejects unlisted printing", printingID: "m10-146", pref: EditionSpecific, want: false},
		{name: "specific rejects empty id", printingID: "", pref: EditionSpecific, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EditionMatches(tt.printingID, tt.pref, printings); got != tt.want {
				t.Errorf("EditionMatches(%q, %s) = %v, want %v", tt.printingID, tt.pref, got, tt.want)
			}
		})
	}
}
