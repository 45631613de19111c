package matching

import "testing"

func fptr(v float64) *float64 { return &v }

func Test_AskingPrice(t *testing.T) {
	tests := []struct {
		name    string
		mode    PriceMode
		pct     float64
		fixed   *float64
		base    *float64
		foil    *float64
		isFoil  bool
		want    *float64
	}{
		{
			name: "fixed overrides even without market price",
			mode: PriceFixed, pct: 100, fixed: fptr(50),
			want: fptr(50),
		},
		{
			name: "fixed overrides an existing market price",
			mode: PriceFixed, pct: 100, fixed: fptr(12.5), base: fptr(99),
			want: fptr(12.5),
		},
		{
			name: "fixed mode without a fixed price falls back to market",
			mode: PriceFixed, pct: 80, base: fptr(10),
			want: fptr(8),
		},
		{
			name: "percentage of base price",
			mode: PricePercentage, pct: 80, base: fptr(10),
			want: fptr(8),
		},
		{
			name: "percentage rounds to two decimals",
			mode: PricePercentage, pct: 33, base: fptr(9.99),
			want: fptr(3.3),
		},
		{
			name: "foil finish uses foil price",
			mode: PricePercentage, pct: 100, base: fptr(10), foil: fptr(25), isFoil: true,
			want: fptr(25),
		},
		{
			name: "missing base price yields no price",
			mode: PricePercentage, pct: 100,
			want: nil,
		},
		{
			name: "missing foil price yields no price even with base present",
			mode: PricePercentage, pct: 100, base: fptr(10), isFoil: true,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AskingPrice(tt.mode, tt.pct, tt.fixed, tt.base, tt.foil, tt.isFoil)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("AskingPrice() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("AskingPrice() = %v, want %v", *got, *tt.want)
			}
		})
	}
}
