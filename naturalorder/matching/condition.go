package matching

// Condition is the physical card condition scale. Ordering is fixed, best
// first: rank 0 is NM, rank 4 is DMG. A lower rank is a better card.
type Condition string

const (
	ConditionNM  Condition = "NM"
	ConditionLP  Condition = "LP"
	ConditionMP  Condition = "MP"
	ConditionHP  Condition = "HP"
	ConditionDMG Condition = "DMG"
)

var conditionRanks = map[Condition]int{
	ConditionNM:  0,
	ConditionLP:  1,
	ConditionMP:  2,
	ConditionHP:  3,
	ConditionDMG: 4,
}

// Rank returns the ordinal position of the condition, 0 being best.
func (c Condition) Rank() int {
	return conditionRanks[c]
}

// Valid reports whether the value is one of the five known conditions.
func (c Condition) Valid() bool {
	_, ok := conditionRanks[c]
	return ok
}

type FoilPreference string

const (
	FoilAny  FoilPreference = "any"
	FoilOnly FoilPreference = "foil_only"
	NonFoil  FoilPreference = "non_foil"
)

type EditionPreference string

const (
	EditionAny      EditionPreference = "any"
	EditionSpecific EditionPreference = "specific"
)

// ConditionMeetsMinimum reports whether an offered card is in at least as
// good a shape as the wishlist's minimum. Equal condition qualifies.
func ConditionMeetsMinimum(offered, required Condition) bool {
	return offered.Rank() <= required.Rank()
}

// FoilMatches evaluates the wishlist's foil preference against the offered
// card's finish.
func FoilMatches(offeredIsFoil bool, pref FoilPreference) bool {
	switch pref {
	case FoilOnly:
		return offeredIsFoil
	case NonFoil:
		return !offeredIsFoil
	}
	return true
}

// EditionMatches evaluates the wishlist's edition preference. With
// EditionAny every printing qualifies; with EditionSpecific the offered
// printing must be one of the accepted printings.
func EditionMatches(offeredPrintingID string, pref EditionPreference, printings map[string]struct{}) bool {
	if pref != EditionSpecific {
		return true
	}
	_, ok := printings[offeredPrintingID]
	return ok
}
