package search

import (
	"math"
	"testing"
)

func TestExpectedMinimum(t *testing.T) {
	t.Run("DegenerateVariancesTakeMin", func(t *testing.T) {
		got := expectedMinimum(belief{mean: 3}, belief{mean: 5})
		if got != 3 {
			t.Errorf("expected min of means, got %v", got)
		}
	})

	t.Run("SymmetricBeliefsDropBelowMean", func(t *testing.T) {
		d := belief{mean: 10, variance: 4}
		got := expectedMinimum(d, d)
		// E[min] = mu - theta*phi(0) with theta = sqrt(8)
		want := 10 - math.Sqrt(8)*stdNormalPDF(0)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("E[min] = %v, want %v", got, want)
		}
	})

	t.Run("DominantMeanWins", func(t *testing.T) {
		got := expectedMinimum(belief{mean: 0, variance: 1}, belief{mean: 100, variance: 1})
		if math.Abs(got-0) > 1e-6 {
			t.Errorf("far-apart means should return the smaller, got %v", got)
		}
	})

	t.Run("InfiniteMeanIgnored", func(t *testing.T) {
		got := expectedMinimum(belief{mean: math.Inf(1)}, belief{mean: 7, variance: 1})
		if got != 7 {
			t.Errorf("deadend belief should not contribute, got %v", got)
		}
	})
}

func TestProbFirstLower(t *testing.T) {
	t.Run("ZeroVarianceIndicator", func(t *testing.T) {
		if p := probFirstLower(belief{mean: 1}, belief{mean: 2}); p != 1 {
			t.Errorf("lower mean should win with certainty, got %v", p)
		}
		if p := probFirstLower(belief{mean: 2}, belief{mean: 1}); p != 0 {
			t.Errorf("higher mean should lose with certainty, got %v", p)
		}
	})

	t.Run("SymmetricIsHalf", func(t *testing.T) {
		p := probFirstLower(belief{mean: 5, variance: 2}, belief{mean: 5, variance: 2})
		if math.Abs(p-0.5) > 1e-9 {
			t.Errorf("identical beliefs should tie at 0.5, got %v", p)
		}
	})

	t.Run("LowerMeanMoreLikely", func(t *testing.T) {
		p := probFirstLower(belief{mean: 3, variance: 1}, belief{mean: 5, variance: 1})
		if p <= 0.5 || p >= 1 {
			t.Errorf("lower mean should be likely but not certain, got %v", p)
		}
	})
}
