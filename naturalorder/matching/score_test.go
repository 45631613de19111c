package matching

import "testing"

func Test_Score(t *testing.T) {
	tests := []struct {
		name string
		in   ScoreInput
		want float64
	}{
		{
			name: "empty two-way at zero distance",
			in: ScoreInput{
				Type:            TwoWay,
				DistanceKm:      fptr(0),
				PriceEfficiency: 1,
			},
			want: 45, // 30 type + 15 distance
		},
		{
			name: "unknown distance contributes nothing",
			in: ScoreInput{
				Type:            TwoWay,
				PriceEfficiency: 1,
			},
			want: 30,
		},
		{
			name: "one-way buy",
			in: ScoreInput{
				Type:            OneWayBuy,
				PriceEfficiency: 1,
			},
			want: 15,
		},
		{
			name: "one-way sell",
			in: ScoreInput{
				Type:            OneWaySell,
				PriceEfficiency: 1,
			},
			want: 10,
		},
		{
			name: "card count saturates at 25",
			in: ScoreInput{
				Type:            TwoWay,
				CardsAWants:     50,
				CardsBWants:     50,
				PriceEfficiency: 1,
			},
			want: 55,
		},
		{
			name: "value saturates at 200 currency units",
			in: ScoreInput{
				Type:            TwoWay,
				ValueAWants:     150,
				ValueBWants:     150,
				PriceEfficiency: 1,
			},
			want: 50,
		},
		{
			name: "cheap asking prices earn the full efficiency bonus",
			in: ScoreInput{
				Type:            TwoWay,
				PriceEfficiency: 0,
			},
			want: 40,
		},
		{
			name: "price warning applies a flat penalty",
			in: ScoreInput{
				Type:             TwoWay,
				PriceEfficiency:  1,
				HasPriceWarnings: true,
			},
			want: 25,
		},
		{
			name: "distance decays toward zero",
			in: ScoreInput{
				Type:            TwoWay,
				DistanceKm:      fptr(100),
				PriceEfficiency: 1,
			},
			want: 30, // 15 - 100/3.33 floors at 0
		},
		{
			name: "full house",
			in: ScoreInput{
				Type:            TwoWay,
				CardsAWants:     4,
				CardsBWants:     4,
				ValueAWants:     60,
				ValueBWants:     40,
				DistanceKm:      fptr(0),
				PriceEfficiency: 0.5,
			},
			want: 90, // 30 + 20 + 10 + 15 + 5
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.in); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

// The formula deliberately has no floor: the warning penalty can take the
// total below zero when nothing else contributes. Observed behavior is
// preserved rather than clamped.
func Test_Score_noFloorClamp(t *testing.T) {
	in := ScoreInput{
		PriceEfficiency:  1,
		HasPriceWarnings: true,
	}
	if got := Score(in); got != -5 {
		t.Errorf("Score() = %v, want -5 (no clamp at zero)", got)
	}
}

func Test_Score_monotonicInCardsAndValue(t *testing.T) {
	base := ScoreInput{Type: TwoWay, PriceEfficiency: 1}

	prev := Score(base)
	for n := 1; n <= 15; n++ {
		in := base
		in.CardsAWants = n
		got := Score(in)
		if got < prev {
			t.Errorf("Score decreased from %v to %v at %d cards", prev, got, n)
		}
		prev = got
	}

	prev = Score(base)
	for v := 10.0; v <= 300; v += 10 {
		in := base
		in.ValueAWants = v
		got := Score(in)
		if got < prev {
			t.Errorf("Score decreased from %v to %v at value %v", prev, got, v)
		}
		prev = got
	}
}
