package curve

import (
	"math/big"
	"testing"
)

func TestNewRejectsMalformedAmounts(t *testing.T) {
	if _, err := New("abc", "0.01"); err == nil {
		t.Error("expected an error for a malformed base price")
	}
	if _, err := New("1.25", ""); err == nil {
		t.Error("expected an error for an empty slope")
	}
}

func TestPriceAt(t *testing.T) {
	c, err := New("1.25", "0.01")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		supply int64
		want   int64
	}{
		{0, 12500000},
		{1, 12600000},
		{100, 22500000},
	}
	for _, tt := range tests {
		got := c.PriceAt(big.NewInt(tt.supply))
		if got.Int64() != tt.want {
			t.Errorf("PriceAt(%d) = %s, want %d", tt.supply, got, tt.want)
		}
	}
}

func TestCostToBuy(t *testing.T) {
	c, err := New("1.25", "0.01")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Buying 3 units at supply 0: 3 * 1.25 + 0.01 * (0+1+2) = 3.78.
	got := c.CostToBuy(big.NewInt(0), big.NewInt(3))
	if got.Int64() != 37800000 {
		t.Errorf("CostToBuy(0, 3) = %s, want 37800000", got)
	}

	// Buying 2 units at supply 10: 2 * 1.25 + 0.01 * (10+11) = 2.71.
	got = c.CostToBuy(big.NewInt(10), big.NewInt(2))
	if got.Int64() != 27100000 {
		t.Errorf("CostToBuy(10, 2) = %s, want 27100000", got)
	}

	if got := c.CostToBuy(big.NewInt(10), big.NewInt(0)); got.Sign() != 0 {
		t.Errorf("CostToBuy(10, 0) = %s, want 0", got)
	}
}

func TestPreview(t *testing.T) {
	c, err := New("1.0", "0.5")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	points := c.Preview(big.NewInt(0), 1, 3)
	want := []string{"1.0000000", "1.5000000", "2.0000000"}
	if len(points) != len(want) {
		t.Fatalf("points = %d, want %d", len(points), len(want))
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point[%d] = %q, want %q", i, points[i], want[i])
		}
	}

	if got := c.Preview(big.NewInt(0), 1, 0); got != nil {
		t.Errorf("Preview with zero points = %v, want nil", got)
	}
}
