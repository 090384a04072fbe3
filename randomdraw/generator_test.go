package randomdraw

import (
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"racemaster-go/utils"
)

func newTestGenerator() (*Generator, *time.Time) {
	g := NewGenerator(utils.DrawWindow)
	clock := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return clock }
	return g, &clock
}

func TestDrawDrainsSmallRange(t *testing.T) {
	g, _ := newTestGenerator()

	// 5.00..5.02 has exactly 3 representable values.
	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		result, err := g.Draw("chan", 5.00, 5.02, 2)
		if err != nil {
			t.Fatalf("draw %d failed: %v", i, err)
		}
		if seen[result.Value] {
			t.Fatalf("draw %d repeated value %s", i, result.Value)
		}
		seen[result.Value] = true
		if result.Total != 3 {
			t.Errorf("expected 3 possible values, got %d", result.Total)
		}
	}

	for v := range map[string]bool{"5.00": true, "5.01": true, "5.02": true} {
		if !seen[v] {
			t.Errorf("value %s never drawn", v)
		}
	}

	_, err := g.Draw("chan", 5.00, 5.02, 2)
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("fourth draw must fail exhausted, got %v", err)
	}
	if exhausted.Total != 3 {
		t.Errorf("exhaustion must report 3 possibilities, got %d", exhausted.Total)
	}
}

func TestDrawWindowExpiryReadmits(t *testing.T) {
	g, clock := newTestGenerator()

	if _, err := g.Draw("chan", 7.77, 7.77, 2); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if _, err := g.Draw("chan", 7.77, 7.77, 2); err == nil {
		t.Fatal("single-value range must exhaust on the second draw")
	}

	*clock = clock.Add(utils.DrawWindow + time.Minute)
	result, err := g.Draw("chan", 7.77, 7.77, 2)
	if err != nil {
		t.Fatalf("draw after window expiry failed: %v", err)
	}
	if result.Value != "7.77" {
		t.Errorf("expected 7.77, got %s", result.Value)
	}
}

func TestDrawScopesAreIndependent(t *testing.T) {
	g, _ := newTestGenerator()

	if _, err := g.Draw("chan-a", 7.77, 7.77, 2); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	// The same value stays available to a different scope.
	if _, err := g.Draw("chan-b", 7.77, 7.77, 2); err != nil {
		t.Errorf("scopes must not share history: %v", err)
	}
	// A different range in the same scope is a separate bucket too.
	if _, err := g.Draw("chan-a", 7.70, 7.90, 2); err != nil {
		t.Errorf("ranges must not share history: %v", err)
	}
}

func TestDrawOrderIndependentBounds(t *testing.T) {
	g, _ := newTestGenerator()

	result, err := g.Draw("chan", 10.50, 9.50, 2)
	if err != nil {
		t.Fatalf("reversed bounds must be accepted: %v", err)
	}
	if result.Low != 9.5 || result.High != 10.5 {
		t.Errorf("bounds not normalized: low=%.2f high=%.2f", result.Low, result.High)
	}
	if result.Total != 101 {
		t.Errorf("expected 101 possible values, got %d", result.Total)
	}

	v, err := strconv.ParseFloat(result.Value, 64)
	if err != nil {
		t.Fatalf("value %q not numeric: %v", result.Value, err)
	}
	if v < 9.5 || v > 10.5 {
		t.Errorf("value %s outside range", result.Value)
	}
}

func TestDrawRejectsNonFiniteBounds(t *testing.T) {
	g, _ := newTestGenerator()

	for _, bounds := range [][2]float64{
		{math.NaN(), 5},
		{5, math.NaN()},
		{math.Inf(1), 5},
		{5, math.Inf(-1)},
	} {
		if _, err := g.Draw("chan", bounds[0], bounds[1], 2); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("bounds %v: expected ErrInvalidRange, got %v", bounds, err)
		}
	}
}

func TestDrawRetryBudgetExceeded(t *testing.T) {
	g, _ := newTestGenerator()

	// Rig the sampler to always return the low bound; once it is used the
	// budget runs out even though the range is not mathematically full.
	g.randInt = func(lo, hi int64) (int64, error) { return lo, nil }

	if _, err := g.Draw("chan", 5.00, 5.02, 2); err != nil {
		t.Fatalf("first draw failed: %v", err)
	}
	_, err := g.Draw("chan", 5.00, 5.02, 2)
	if !errors.Is(err, ErrRetryBudget) {
		t.Fatalf("expected ErrRetryBudget, got %v", err)
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		t.Error("retry exhaustion must stay distinct from range exhaustion")
	}
}

func TestStaleBucketsAreDropped(t *testing.T) {
	g, clock := newTestGenerator()

	if _, err := g.Draw("chan-a", 9.0, 9.5, 2); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if _, err := g.Draw("chan-b", 10.0, 10.5, 2); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if len(g.buckets) != 2 {
		t.Fatalf("expected 2 live buckets, got %d", len(g.buckets))
	}

	// Once the window passes, drawing anywhere sweeps out the dead buckets,
	// including ones for ranges never drawn again.
	*clock = clock.Add(utils.DrawWindow + time.Minute)
	if _, err := g.Draw("chan-c", 11.0, 11.5, 2); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if len(g.buckets) != 1 {
		t.Errorf("expected expired buckets dropped, got %d buckets", len(g.buckets))
	}
}

func TestDrawValueFormatting(t *testing.T) {
	g, _ := newTestGenerator()

	result, err := g.Draw("chan", 5, 5, 2)
	if err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if result.Value != "5.00" {
		t.Errorf("expected two-decimal formatting, got %s", result.Value)
	}
}
